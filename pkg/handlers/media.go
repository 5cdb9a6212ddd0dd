package handlers

import (
	"errors"
	"net/http"

	"dashboard-cms/pkg/media"
	"dashboard-cms/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaStatus reports which media host identifiers are configured.
func (h *Handler) MediaStatus(c *gin.Context) {
	c.JSON(http.StatusOK, models.Response[media.Status]{
		Success: true,
		Data:    h.uploader.Status(),
	})
}

// UploadMedia forwards the multipart field "file" to the media host and
// returns the hosted URL.
func (h *Handler) UploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "No file uploaded"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	// Browsers fall back to octet-stream for unknown extensions; sniff those.
	contentType := fh.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		contentType = ""
	}

	url, err := h.uploader.Upload(c.Request.Context(), media.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}, nil)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, models.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, models.ErrConfiguration):
			status = http.StatusServiceUnavailable
		}
		if status == http.StatusBadRequest {
			h.logger.Debug("upload rejected", zap.String("file", fh.Filename), zap.Error(err))
		} else {
			h.logger.Warn("upload failed", zap.String("file", fh.Filename), zap.Error(err))
		}
		c.JSON(status, models.ErrorResponse{Success: false, Message: uploadMessage(err)})
		return
	}

	c.JSON(http.StatusOK, models.Response[models.UploadResult]{
		Success: true,
		Message: "Upload complete",
		Data:    models.UploadResult{URL: url},
	})
}

func uploadMessage(err error) string {
	var terr *models.TransportError
	if errors.As(err, &terr) && terr.Message != "" {
		return terr.Message
	}
	return err.Error()
}
