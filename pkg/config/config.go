package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	Port        = "5000"
	FrontendURL = "http://localhost:5173"
	Environment = "production"

	// Largest JSON request body the API accepts, in bytes.
	MaxBodyBytes int64 = 100 << 10

	// Content settings
	SeedFile = ""

	// Client settings
	APIURL   = "http://localhost:5000"
	CacheDir = ""

	// Media host settings
	CloudinaryCloudName    = ""
	CloudinaryUploadPreset = ""
	CloudinaryFolder       = "dashboard-uploads"
	CloudinaryEndpoint     = ""

	// Logging
	LogJSON = false
	LogFile = ""
)

func Init() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found or error loading it.")
	}
	Load()
}

// Load reads settings from the current environment without touching .env.
func Load() {
	// Helper to get env with default
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	Port = getEnv("PORT", "5000")
	FrontendURL = getEnv("FRONTEND_URL", "http://localhost:5173")
	Environment = getEnv("APP_ENV", getEnv("NODE_ENV", "production"))

	MaxBodyBytes = 100 << 10
	if n, err := strconv.ParseInt(os.Getenv("MAX_BODY_BYTES"), 10, 64); err == nil && n > 0 {
		MaxBodyBytes = n
	}

	SeedFile = getEnv("CONTENT_SEED_FILE", "")

	APIURL = strings.TrimRight(getEnv("DASHBOARD_API_URL", "http://localhost:5000"), "/")
	CacheDir = getEnv("DASHBOARD_CACHE_DIR", defaultCacheDir())

	CloudinaryCloudName = getEnv("CLOUDINARY_CLOUD_NAME", "")
	CloudinaryUploadPreset = getEnv("CLOUDINARY_UPLOAD_PRESET", "")
	CloudinaryFolder = getEnv("CLOUDINARY_FOLDER", "dashboard-uploads")
	CloudinaryEndpoint = getEnv("CLOUDINARY_API_URL", "")

	LogFile = getEnv("LOG_FILE", "")
	LogJSON = false
	if v := os.Getenv("LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			LogJSON = b
		}
	}
}

func IsDevelopment() bool {
	return strings.EqualFold(Environment, "development")
}

// MediaConfigured reports whether both media host identifiers are set.
func MediaConfigured() bool {
	return CloudinaryCloudName != "" && CloudinaryUploadPreset != ""
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "dashboard-cms")
	}
	return ".dashboard-cache"
}
