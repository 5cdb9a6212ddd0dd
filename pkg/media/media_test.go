package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"dashboard-cms/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type uploadRecorder struct {
	hits     atomic.Int64
	preset   string
	folder   string
	fileType string
	fileName string
	fileSize int
	status   int
	response string
}

func (r *uploadRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hits.Add(1)
	if err := req.ParseMultipartForm(32 << 20); err == nil {
		r.preset = req.FormValue("upload_preset")
		r.folder = req.FormValue("folder")
		if file, header, err := req.FormFile("file"); err == nil {
			data, _ := io.ReadAll(file)
			r.fileSize = len(data)
			r.fileType = header.Header.Get("Content-Type")
			r.fileName = header.Filename
			file.Close()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if r.status != 0 {
		w.WriteHeader(r.status)
	}
	_, _ = w.Write([]byte(r.response))
}

func newTestUploader(t *testing.T, h http.Handler) (*Uploader, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	u := NewUploader(Config{
		CloudName:    "demo",
		UploadPreset: "unsigned",
		Folder:       "dashboard-uploads",
		Endpoint:     srv.URL,
		HTTPClient:   &http.Client{Transport: &http.Transport{DisableKeepAlives: true}},
	}, zap.NewNop())
	return u, srv
}

type recordingSink struct {
	values []int
}

func (s *recordingSink) Progress(p int) { s.values = append(s.values, p) }

func TestUpload_OversizedFileNeverHitsNetwork(t *testing.T) {
	rec := &uploadRecorder{response: `{"secure_url":"https://res.cloudinary.com/demo/image/upload/x.png"}`}
	u, srv := newTestUploader(t, rec)
	defer srv.Close()

	big := make([]byte, 15*1024*1024)
	copy(big, pngHeader)

	t.Run("declared size", func(t *testing.T) {
		sink := &recordingSink{}
		_, err := u.Upload(context.Background(), File{
			Name: "big.png", ContentType: "image/png", Size: int64(len(big)), Body: bytes.NewReader(big),
		}, sink)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "exceeds the 10MB limit")
		assert.Empty(t, sink.values)
	})

	t.Run("unknown size", func(t *testing.T) {
		_, err := u.Upload(context.Background(), File{Name: "big.png", Body: bytes.NewReader(big)}, nil)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	assert.Zero(t, rec.hits.Load())
}

func TestUpload_RejectsWrongType(t *testing.T) {
	rec := &uploadRecorder{}
	u, srv := newTestUploader(t, rec)
	defer srv.Close()

	for _, f := range []File{
		{Name: "doc.pdf", ContentType: "application/pdf", Size: 4, Body: bytes.NewReader([]byte("%PDF"))},
		{Name: "notes.txt", Body: bytes.NewReader([]byte("just some text"))},
		{Name: "bad", ContentType: ";;;", Size: 1, Body: bytes.NewReader([]byte("x"))},
	} {
		_, err := u.Upload(context.Background(), f, nil)
		assert.ErrorIs(t, err, models.ErrValidation, f.Name)
	}

	_, err := u.Upload(context.Background(), File{Name: "nil"}, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Zero(t, rec.hits.Load())
}

func TestUpload_NotConfigured(t *testing.T) {
	u := NewUploader(Config{CloudName: "demo"}, zap.NewNop())
	_, err := u.Upload(context.Background(), File{
		Name: "a.png", ContentType: "image/png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader),
	}, nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	assert.Equal(t, Status{Configured: false, CloudName: true, UploadPreset: false}, u.Status())
}

func TestUpload_Success(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreCurrent(),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)

	rec := &uploadRecorder{response: `{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/header.png"}`}
	u, srv := newTestUploader(t, rec)
	defer srv.Close()

	payload := bytes.Repeat([]byte{0xAB}, 256*1024)
	body := append(append([]byte{}, pngHeader...), payload...)

	sink := &recordingSink{}
	got, err := u.Upload(context.Background(), File{Name: "header.png", Body: bytes.NewReader(body)}, sink)
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/header.png", got)

	assert.EqualValues(t, 1, rec.hits.Load())
	assert.Equal(t, "unsigned", rec.preset)
	assert.Equal(t, "dashboard-uploads", rec.folder)
	assert.Equal(t, "image/png", rec.fileType)
	assert.Equal(t, "header.png", rec.fileName)
	assert.Equal(t, len(body), rec.fileSize)

	require.NotEmpty(t, sink.values)
	assert.Equal(t, 100, sink.values[len(sink.values)-1])
	for i := 1; i < len(sink.values); i++ {
		assert.Greater(t, sink.values[i], sink.values[i-1])
	}
	for _, v := range sink.values[:len(sink.values)-1] {
		assert.Less(t, v, 100)
		assert.GreaterOrEqual(t, v, 0)
	}
}

func TestUpload_HostError(t *testing.T) {
	rec := &uploadRecorder{status: http.StatusBadRequest, response: `{"error":{"message":"Upload preset not found"}}`}
	u, srv := newTestUploader(t, rec)
	defer srv.Close()

	sink := &recordingSink{}
	_, err := u.Upload(context.Background(), File{
		Name: "a.png", ContentType: "image/png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader),
	}, sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTransport)

	var terr *models.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
	assert.Equal(t, "Upload preset not found", terr.Message)
	assert.NotContains(t, sink.values, 100)
}

func TestUpload_MissingURLInResponse(t *testing.T) {
	rec := &uploadRecorder{response: `{"public_id":"x"}`}
	u, srv := newTestUploader(t, rec)
	defer srv.Close()

	_, err := u.Upload(context.Background(), File{
		Name: "a.png", ContentType: "image/png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader),
	}, nil)
	assert.ErrorIs(t, err, models.ErrTransport)
}

func TestUpload_NetworkError(t *testing.T) {
	rec := &uploadRecorder{}
	u, srv := newTestUploader(t, rec)
	srv.Close()

	_, err := u.Upload(context.Background(), File{
		Name: "a.png", ContentType: "image/png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader),
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTransport)
	assert.Contains(t, err.Error(), "Network error")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0644))

	f, closer, err := OpenFile(path)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "logo.png", f.Name)
	assert.Equal(t, "image/png", f.ContentType)
	assert.EqualValues(t, len(pngHeader), f.Size)

	prepared, err := Prepare(f)
	require.NoError(t, err)
	assert.Equal(t, "image/png", prepared.ContentType)
}

func TestOptimizedURL(t *testing.T) {
	in := "https://res.cloudinary.com/demo/image/upload/v1/header.png"
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/w_800,h_400,c_fill,q_auto,f_auto/v1/header.png",
		OptimizedURL(in, TransformOptions{}))
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/w_1200,h_300,c_fit,q_80,f_webp/v1/header.png",
		OptimizedURL(in, TransformOptions{Width: 1200, Height: 300, Crop: "fit", Quality: "80", Format: "webp"}))

	other := "https://via.placeholder.com/800x200?text=Header+Image"
	assert.Equal(t, other, OptimizedURL(other, TransformOptions{}))
	assert.Equal(t, "", OptimizedURL("", TransformOptions{}))
}
