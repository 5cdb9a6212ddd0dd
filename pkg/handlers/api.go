package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"dashboard-cms/pkg/media"
	"dashboard-cms/pkg/models"
	"dashboard-cms/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps JSON request bodies unless SetMaxBodyBytes
// says otherwise.
const DefaultMaxBodyBytes = 100 << 10

// Handler binds the content store and media uploader to HTTP.
type Handler struct {
	store       *services.ContentStore
	uploader    *media.Uploader
	logger      *zap.Logger
	development bool
	maxBody     int64
	started     time.Time
	now         func() time.Time
}

func New(store *services.ContentStore, uploader *media.Uploader, logger *zap.Logger, development bool) *Handler {
	return &Handler{
		store:       store,
		uploader:    uploader,
		logger:      logger,
		development: development,
		maxBody:     DefaultMaxBodyBytes,
		started:     time.Now(),
		now:         time.Now,
	}
}

// SetMaxBodyBytes changes the JSON body cap. Non-positive values are ignored.
func (h *Handler) SetMaxBodyBytes(n int64) {
	if n > 0 {
		h.maxBody = n
	}
}

func (h *Handler) GetComponents(c *gin.Context) {
	ts := h.now()
	c.JSON(http.StatusOK, models.Response[models.ContentRecord]{
		Success:   true,
		Data:      h.store.Get(),
		Timestamp: &ts,
	})
}

func (h *Handler) SaveComponents(c *gin.Context) {
	body, ok := h.readBody(c, "Failed to save component data")
	if !ok {
		return
	}
	patch, err := services.DecodeContentPatch(body)
	if err != nil {
		h.fail(c, err, "Failed to save component data")
		return
	}
	rec := h.store.ReplaceAll(patch)
	h.logger.Info("components updated",
		zap.Bool("header", patch.Header != nil),
		zap.Bool("navbar", patch.Navbar != nil),
		zap.Bool("footer", patch.Footer != nil))
	c.JSON(http.StatusOK, models.Response[models.ContentRecord]{
		Success: true,
		Message: "Component data updated successfully",
		Data:    rec,
	})
}

func (h *Handler) UpdateHeader(c *gin.Context) {
	body, ok := h.readBody(c, "Failed to update header")
	if !ok {
		return
	}
	patch, err := services.DecodeHeaderPatch(body)
	if err != nil {
		h.fail(c, err, "Failed to update header")
		return
	}
	c.JSON(http.StatusOK, models.Response[models.Header]{
		Success: true,
		Message: "Header updated successfully",
		Data:    h.store.UpdateHeader(patch),
	})
}

func (h *Handler) UpdateNavbar(c *gin.Context) {
	body, ok := h.readBody(c, "Failed to update navbar")
	if !ok {
		return
	}
	links, err := services.DecodeNavbarLinks(body)
	if err != nil {
		h.fail(c, err, "Failed to update navbar")
		return
	}
	c.JSON(http.StatusOK, models.Response[[]models.NavLink]{
		Success: true,
		Message: "Navbar updated successfully",
		Data:    h.store.UpdateNavbar(links),
	})
}

func (h *Handler) UpdateFooter(c *gin.Context) {
	body, ok := h.readBody(c, "Failed to update footer")
	if !ok {
		return
	}
	patch, err := services.DecodeFooterPatch(body)
	if err != nil {
		h.fail(c, err, "Failed to update footer")
		return
	}
	c.JSON(http.StatusOK, models.Response[models.Footer]{
		Success: true,
		Message: "Footer updated successfully",
		Data:    h.store.UpdateFooter(patch),
	})
}

func (h *Handler) ResetComponents(c *gin.Context) {
	rec := h.store.Reset()
	h.logger.Info("components reset to defaults")
	c.JSON(http.StatusOK, models.Response[models.ContentRecord]{
		Success: true,
		Message: "Component data reset to defaults",
		Data:    rec,
	})
}

func (h *Handler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, models.Health{
		Status:    "OK",
		Message:   "Server is running",
		Timestamp: now,
		Uptime:    now.Sub(h.started).Seconds(),
	})
}

func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Dashboard Content API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"GET /api/components":          "Fetch all component data",
			"POST /api/components":         "Save all component data",
			"PUT /api/components/header":   "Update header only",
			"PUT /api/components/navbar":   "Update navbar only",
			"PUT /api/components/footer":   "Update footer only",
			"DELETE /api/components/reset": "Reset to defaults",
			"POST /api/media":              "Upload an image to the media host",
			"GET /health":                  "Health check",
		},
	})
}

func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Message: "Route not found",
		Path:    c.Request.URL.Path,
	})
}

func (h *Handler) readBody(c *gin.Context, failure string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		h.fail(c, err, failure)
		return nil, false
	}
	return body, true
}

// fail writes the error envelope. Validation messages go to the caller
// verbatim; anything else becomes the route's generic failure message.
func (h *Handler) fail(c *gin.Context, err error, failure string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		h.logger.Debug("request rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: verr.Message})
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.Warn("request body too large",
			zap.String("path", c.Request.URL.Path), zap.Int64("limit", tooLarge.Limit))
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Success: false, Message: "Request body too large"})
		return
	}

	h.logger.Error(failure, zap.String("path", c.Request.URL.Path), zap.Error(err))
	resp := models.ErrorResponse{Success: false, Message: failure}
	if h.development {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}
