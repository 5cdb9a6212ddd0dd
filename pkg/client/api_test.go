package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dashboard-cms/pkg/handlers"
	"dashboard-cms/pkg/media"
	"dashboard-cms/pkg/models"
	"dashboard-cms/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newContentServer runs the real API over a fresh store.
func newContentServer(t *testing.T) (*httptest.Server, *services.ContentStore) {
	t.Helper()
	store := services.NewContentStore(models.DefaultRecord())
	h := handlers.New(store, media.NewUploader(media.Config{}, zap.NewNop()), zap.NewNop(), false)
	srv := httptest.NewServer(handlers.NewRouter(h, zap.NewNop(), "http://localhost:5173"))
	t.Cleanup(srv.Close)
	return srv, store
}

func TestHTTPClient_FetchSaveReset(t *testing.T) {
	srv, store := newContentServer(t)
	c := NewHTTPClient(srv.URL+"/", nil)
	ctx := context.Background()

	got, err := c.Fetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.Header)
	assert.Equal(t, models.DefaultRecord().Navbar, got.Navbar)

	rec := models.DefaultRecord()
	rec.Header.Title = "Saved"
	rec.Navbar = []models.NavLink{{Label: "Blog", URL: "/blog"}}
	saved, err := c.Save(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "Saved", saved.Header.Title)
	assert.Equal(t, rec, store.Get())

	reset, err := c.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRecord().Header, *reset.Header)
	assert.Equal(t, models.DefaultRecord(), store.Get())
}

func TestHTTPClient_SectionUpdates(t *testing.T) {
	srv, store := newContentServer(t)
	c := NewHTTPClient(srv.URL, nil)
	ctx := context.Background()

	title := "Section"
	h, err := c.UpdateHeader(ctx, models.HeaderPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Section", h.Title)

	links, err := c.UpdateNavbar(ctx, []models.NavLink{{Label: "One", URL: "/1"}})
	require.NoError(t, err)
	assert.Len(t, links, 1)

	email := "s@example.com"
	f, err := c.UpdateFooter(ctx, models.FooterPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, f.Email)

	rec := store.Get()
	assert.Equal(t, "Section", rec.Header.Title)
	assert.Equal(t, []models.NavLink{{Label: "One", URL: "/1"}}, rec.Navbar)
	assert.Equal(t, email, rec.Footer.Email)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", health.Status)
}

func TestHTTPClient_ServerMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to save component data"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, nil).Save(context.Background(), models.DefaultRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTransport)

	var terr *models.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, "Failed to save component data", terr.Message)
}

func TestHTTPClient_FallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, nil).Fetch(context.Background())
	var terr *models.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "Failed to fetch component data", terr.Message)
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrTransport)
}
