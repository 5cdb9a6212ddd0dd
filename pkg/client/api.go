// Package client talks to the content API and keeps a local working copy of
// the content record in step with it.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dashboard-cms/pkg/models"

	"github.com/goccy/go-json"
)

// ContentAPI is the remote side of synchronization.
type ContentAPI interface {
	Fetch(ctx context.Context) (RecordPayload, error)
	Save(ctx context.Context, rec models.ContentRecord) (RecordPayload, error)
	Reset(ctx context.Context) (RecordPayload, error)
}

// RecordPayload is a record as received over the wire. A section the
// server left out stays nil.
type RecordPayload struct {
	Header *models.Header   `json:"header"`
	Navbar []models.NavLink `json:"navbar"`
	Footer *models.Footer   `json:"footer"`
}

// HTTPClient implements ContentAPI against the REST routes under /api.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient targets baseURL (e.g. "http://localhost:5000").
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *HTTPClient) Fetch(ctx context.Context) (RecordPayload, error) {
	var resp models.Response[RecordPayload]
	if err := c.doJSON(ctx, http.MethodGet, "/api/components", nil, &resp, "Failed to fetch component data"); err != nil {
		return RecordPayload{}, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) Save(ctx context.Context, rec models.ContentRecord) (RecordPayload, error) {
	var resp models.Response[RecordPayload]
	if err := c.doJSON(ctx, http.MethodPost, "/api/components", rec, &resp, "Failed to save component data"); err != nil {
		return RecordPayload{}, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) Reset(ctx context.Context) (RecordPayload, error) {
	var resp models.Response[RecordPayload]
	if err := c.doJSON(ctx, http.MethodDelete, "/api/components/reset", nil, &resp, "Failed to reset component data"); err != nil {
		return RecordPayload{}, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) UpdateHeader(ctx context.Context, p models.HeaderPatch) (models.Header, error) {
	var resp models.Response[models.Header]
	err := c.doJSON(ctx, http.MethodPut, "/api/components/header", p, &resp, "Failed to update header")
	return resp.Data, err
}

func (c *HTTPClient) UpdateNavbar(ctx context.Context, links []models.NavLink) ([]models.NavLink, error) {
	body := struct {
		Links []models.NavLink `json:"links"`
	}{Links: links}
	var resp models.Response[[]models.NavLink]
	err := c.doJSON(ctx, http.MethodPut, "/api/components/navbar", body, &resp, "Failed to update navbar")
	return resp.Data, err
}

func (c *HTTPClient) UpdateFooter(ctx context.Context, p models.FooterPatch) (models.Footer, error) {
	var resp models.Response[models.Footer]
	err := c.doJSON(ctx, http.MethodPut, "/api/components/footer", p, &resp, "Failed to update footer")
	return resp.Data, err
}

func (c *HTTPClient) Health(ctx context.Context) (models.Health, error) {
	var h models.Health
	err := c.doJSON(ctx, http.MethodGet, "/health", nil, &h, "API health check failed")
	return h, err
}

// doJSON performs a request with an optional JSON body and decodes the
// response into result. Failures come back as *models.TransportError whose
// message is the server's, or fallback when the server gave none.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, result any, fallback string) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.TransportError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.TransportError{StatusCode: resp.StatusCode, Message: fallback, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp models.ErrorResponse
		msg := fallback
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			msg = errResp.Message
		}
		return &models.TransportError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &models.TransportError{StatusCode: resp.StatusCode, Message: "Invalid response from server", Err: err}
		}
	}
	return nil
}
