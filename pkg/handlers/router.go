package handlers

import (
	"net/http"
	"time"

	"dashboard-cms/pkg/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires every route onto a fresh engine. frontendURL is the only
// origin allowed by CORS.
func NewRouter(h *Handler, logger *zap.Logger, frontendURL string) *gin.Engine {
	r := gin.New()
	r.Use(logging.RequestLogger(logger))
	r.Use(logging.Recovery(logger, h.development))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("", h.Info)

		api.GET("/components", h.GetComponents)
		api.POST("/components", h.SaveComponents)
		api.PUT("/components/header", h.UpdateHeader)
		api.PUT("/components/navbar", h.UpdateNavbar)
		api.PUT("/components/footer", h.UpdateFooter)
		api.DELETE("/components/reset", h.ResetComponents)

		api.GET("/media", h.MediaStatus)
		api.POST("/media", h.UploadMedia)
	}

	r.NoRoute(h.NotFound)
	return r
}
