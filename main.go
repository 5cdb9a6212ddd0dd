package main

import (
	"fmt"
	"os"

	"dashboard-cms/pkg/config"
	"dashboard-cms/pkg/handlers"
	"dashboard-cms/pkg/logging"
	"dashboard-cms/pkg/media"
	"dashboard-cms/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Initialize config
	config.Init()

	logger, err := logging.New(logging.Options{
		Development: config.IsDevelopment(),
		JSON:        config.LogJSON,
		File:        config.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	defaults, err := services.LoadDefaults(config.SeedFile)
	if err != nil {
		logger.Fatal("failed to load seed file", zap.String("path", config.SeedFile), zap.Error(err))
	}
	store := services.NewContentStore(defaults)

	uploader := media.NewUploader(media.Config{
		CloudName:    config.CloudinaryCloudName,
		UploadPreset: config.CloudinaryUploadPreset,
		Folder:       config.CloudinaryFolder,
		Endpoint:     config.CloudinaryEndpoint,
	}, logger)
	if !config.MediaConfigured() {
		logger.Warn("media host not configured, uploads are disabled",
			zap.Bool("cloudName", config.CloudinaryCloudName != ""),
			zap.Bool("uploadPreset", config.CloudinaryUploadPreset != ""))
	}

	h := handlers.New(store, uploader, logger, config.IsDevelopment())
	h.SetMaxBodyBytes(config.MaxBodyBytes)
	r := handlers.NewRouter(h, logger, config.FrontendURL)

	logger.Info("server starting",
		zap.String("port", config.Port),
		zap.String("environment", config.Environment),
		zap.String("frontend", config.FrontendURL))
	if err := r.Run(":" + config.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
