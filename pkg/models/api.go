package models

import "time"

// Response is the envelope every content route answers with.
type Response[T any] struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Data      T          `json:"data"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

// UploadResult is returned by the media upload route.
type UploadResult struct {
	URL string `json:"url"`
}
