package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dashboard-cms/pkg/config"
	"dashboard-cms/pkg/handlers"
	"dashboard-cms/pkg/media"
	"dashboard-cms/pkg/models"
	"dashboard-cms/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t     *testing.T
	fs    afero.Fs
	url   string
	store *services.ContentStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := services.NewContentStore(models.DefaultRecord())
	h := handlers.New(store, media.NewUploader(media.Config{}, zap.NewNop()), zap.NewNop(), false)
	srv := httptest.NewServer(handlers.NewRouter(h, zap.NewNop(), "http://localhost:5173"))
	t.Cleanup(srv.Close)
	return &harness{t: t, fs: afero.NewMemMapFs(), url: srv.URL, store: store}
}

// run executes one dashctl invocation. The cache filesystem is shared across
// runs, the way the real cache directory is.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd(h.fs)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--api-url", h.url, "--cache-dir", "/cache"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEditsSurviveBetweenInvocations(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("header", "set", "--title", "From the CLI")
	require.NoError(t, err)
	_, err = h.run("nav", "set", "Home=/", "Blog=/blog")
	require.NoError(t, err)
	_, err = h.run("footer", "set", "--email", "cli@example.com")
	require.NoError(t, err)

	out, err := h.run("show", "--format", "yaml")
	require.NoError(t, err)

	var rec models.ContentRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "From the CLI", rec.Header.Title)
	assert.Equal(t, models.DefaultRecord().Header.ImageURL, rec.Header.ImageURL)
	assert.Equal(t, []models.NavLink{{Label: "Home", URL: "/"}, {Label: "Blog", URL: "/blog"}}, rec.Navbar)
	assert.Equal(t, "cli@example.com", rec.Footer.Email)

	// Nothing reached the server yet.
	assert.Equal(t, models.DefaultRecord(), h.store.Get())
}

func TestPushPullReset(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("header", "set", "--title", "Pushed")
	require.NoError(t, err)

	out, err := h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Unsaved changes")

	out, err = h.run("push")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved to")
	assert.Equal(t, "Pushed", h.store.Get().Header.Title)

	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Working copy matches the server")

	_, err = h.run("reset", "--local")
	require.NoError(t, err)
	assert.Equal(t, "Pushed", h.store.Get().Header.Title)

	_, err = h.run("pull")
	require.NoError(t, err)
	out, err = h.run("show")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Pushed"`)

	_, err = h.run("reset")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRecord(), h.store.Get())
	out, err = h.run("show", "-f", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to My Dashboard")
}

func TestNavSetRejectsMalformedLink(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("nav", "set", "Home")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LABEL=URL")
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("health")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: Server is running")
}

func TestPushUnreachableServer(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	h.url = srv.URL
	srv.Close()

	_, err := h.run("push")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to save component data")
	assert.ErrorIs(t, err, models.ErrTransport)
}

func TestRemoteCommandsWrapServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"Store is read-only"}`))
	}))
	defer srv.Close()

	h := newHarness(t)
	h.url = srv.URL

	for _, args := range [][]string{{"pull"}, {"push"}, {"reset"}} {
		t.Run(args[0], func(t *testing.T) {
			_, err := h.run(args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrTransport)

			var terr *models.TransportError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
			assert.Equal(t, args[0]+": HTTP 503: Store is read-only", err.Error())
		})
	}
}

func TestUploadSetsHeader(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(32 << 20)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/logo.png"}`))
	}))
	defer host.Close()

	name, preset, endpoint := config.CloudinaryCloudName, config.CloudinaryUploadPreset, config.CloudinaryEndpoint
	t.Cleanup(func() {
		config.CloudinaryCloudName, config.CloudinaryUploadPreset, config.CloudinaryEndpoint = name, preset, endpoint
	})
	config.CloudinaryCloudName = "demo"
	config.CloudinaryUploadPreset = "unsigned"
	config.CloudinaryEndpoint = host.URL

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, png, 0644))

	h := newHarness(t)
	out, err := h.run("upload", "--quiet", "--set-header", path)
	require.NoError(t, err)
	assert.Contains(t, out, "https://res.cloudinary.com/demo/image/upload/v1/logo.png")

	out, err = h.run("show")
	require.NoError(t, err)
	assert.Contains(t, out, `"imageUrl": "https://res.cloudinary.com/demo/image/upload/v1/logo.png"`)
}

func TestUploadNotConfigured(t *testing.T) {
	name := config.CloudinaryCloudName
	t.Cleanup(func() { config.CloudinaryCloudName = name })
	config.CloudinaryCloudName = ""

	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0644))

	h := newHarness(t)
	_, err := h.run("upload", "-q", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
