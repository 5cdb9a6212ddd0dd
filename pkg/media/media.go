package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"dashboard-cms/pkg/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxFileSize is the largest image the uploader accepts.
const MaxFileSize = 10 * 1024 * 1024

const DefaultEndpoint = "https://api.cloudinary.com/v1_1"

// sniffLen is how much of an undeclared body is read to detect its type.
const sniffLen = 3072

var AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"}

// File is an image waiting to be uploaded. ContentType may be left empty,
// in which case it is detected from the leading bytes. A Size of zero or
// less means unknown; the body is then buffered to measure it.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// OpenFile prepares a file from disk. The returned closer releases the
// underlying handle.
func OpenFile(path string) (File, io.Closer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, nil, err
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return File{}, nil, err
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: mtype.String(),
		Size:        info.Size(),
		Body:        fh,
	}, fh, nil
}

type Config struct {
	CloudName    string
	UploadPreset string
	Folder       string
	Endpoint     string
	HTTPClient   *http.Client
}

// Uploader sends images to Cloudinary with an unsigned upload preset.
type Uploader struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

func NewUploader(cfg Config, logger *zap.Logger) *Uploader {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Uploader{cfg: cfg, client: client, logger: logger}
}

func (u *Uploader) Configured() bool {
	return u.cfg.CloudName != "" && u.cfg.UploadPreset != ""
}

// Status reports which media host settings are present.
type Status struct {
	Configured   bool `json:"configured"`
	CloudName    bool `json:"cloudName"`
	UploadPreset bool `json:"uploadPreset"`
}

func (u *Uploader) Status() Status {
	return Status{
		Configured:   u.Configured(),
		CloudName:    u.cfg.CloudName != "",
		UploadPreset: u.cfg.UploadPreset != "",
	}
}

// Prepare resolves the size and media type of f and checks both against
// the limits. It never touches the network.
func Prepare(f File) (File, error) {
	if f.Body == nil {
		return File{}, &models.ValidationError{Message: "No file provided"}
	}

	if f.Size > MaxFileSize {
		return File{}, sizeError(f.Size)
	}
	if f.Size <= 0 {
		data, err := io.ReadAll(io.LimitReader(f.Body, MaxFileSize+1))
		if err != nil {
			return File{}, fmt.Errorf("read file: %w", err)
		}
		if int64(len(data)) > MaxFileSize {
			return File{}, sizeError(int64(len(data)))
		}
		f.Size = int64(len(data))
		f.Body = bytes.NewReader(data)
	}

	if f.ContentType != "" {
		mt, _, err := mime.ParseMediaType(f.ContentType)
		if err != nil || !slices.Contains(AllowedTypes, strings.ToLower(mt)) {
			return File{}, typeError()
		}
		f.ContentType = strings.ToLower(mt)
		return f, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return File{}, fmt.Errorf("read file: %w", err)
	}
	head = head[:n]
	f.Body = io.MultiReader(bytes.NewReader(head), f.Body)

	detected := mimetype.Detect(head)
	for _, t := range AllowedTypes {
		if detected.Is(t) {
			f.ContentType = t
			return f, nil
		}
	}
	return File{}, typeError()
}

func sizeError(size int64) error {
	return models.NewValidationError("File size (%.2fMB) exceeds the 10MB limit.", float64(size)/1024/1024)
}

func typeError() error {
	return &models.ValidationError{Message: "Invalid file type. Please upload a JPEG, PNG, GIF, WebP, or SVG image."}
}

// Upload validates f, streams it to the media host and returns the public
// URL. Configuration and validation failures happen before any request is
// made. sink may be nil.
func (u *Uploader) Upload(ctx context.Context, f File, sink ProgressSink) (string, error) {
	if !u.Configured() {
		return "", &models.ConfigurationError{
			Message: "Cloudinary configuration is missing. Set CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET.",
		}
	}
	f, err := Prepare(f)
	if err != nil {
		return "", err
	}

	tracker := newTracker(sink, f.Size)
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	var g errgroup.Group
	g.Go(func() error {
		err := u.writeForm(form, f, tracker)
		pw.CloseWithError(err)
		return err
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL(), pr)
	if err != nil {
		pr.CloseWithError(err)
		_ = g.Wait()
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		_ = g.Wait()
		u.logger.Warn("media upload failed", zap.String("file", f.Name), zap.Error(err))
		return "", &models.TransportError{
			Message: "Network error. Please check your connection and try again.",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	pr.Close()
	writeErr := g.Wait()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "Upload failed. Please try again."
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		u.logger.Warn("media host rejected upload",
			zap.String("file", f.Name), zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return "", &models.TransportError{StatusCode: resp.StatusCode, Message: msg}
	}
	if readErr != nil {
		return "", &models.TransportError{StatusCode: resp.StatusCode, Message: "Failed to read upload response", Err: readErr}
	}
	if writeErr != nil {
		return "", &models.TransportError{Message: "Upload failed. Please try again.", Err: writeErr}
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.SecureURL == "" {
		return "", &models.TransportError{StatusCode: resp.StatusCode, Message: "Upload response did not include a URL", Err: err}
	}

	tracker.finish()
	u.logger.Info("media uploaded", zap.String("file", f.Name), zap.Int64("size", f.Size), zap.String("url", result.SecureURL))
	return result.SecureURL, nil
}

func (u *Uploader) uploadURL() string {
	return u.cfg.Endpoint + "/" + url.PathEscape(u.cfg.CloudName) + "/image/upload"
}

func (u *Uploader) writeForm(form *multipart.Writer, f File, tracker *tracker) error {
	name := f.Name
	if name == "" {
		name = "upload"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", f.ContentType)
	part, err := form.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, tracker.wrap(f.Body)); err != nil {
		return err
	}
	if err := form.WriteField("upload_preset", u.cfg.UploadPreset); err != nil {
		return err
	}
	if u.cfg.Folder != "" {
		if err := form.WriteField("folder", u.cfg.Folder); err != nil {
			return err
		}
	}
	return form.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// TransformOptions are the delivery transformations OptimizedURL inserts.
type TransformOptions struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
}

// OptimizedURL inserts resize and format transformations into a Cloudinary
// delivery URL. Other URLs are returned unchanged.
func OptimizedURL(raw string, opts TransformOptions) string {
	if raw == "" || !strings.Contains(raw, "cloudinary.com") {
		return raw
	}
	if opts.Width == 0 {
		opts.Width = 800
	}
	if opts.Height == 0 {
		opts.Height = 400
	}
	if opts.Crop == "" {
		opts.Crop = "fill"
	}
	if opts.Quality == "" {
		opts.Quality = "auto"
	}
	if opts.Format == "" {
		opts.Format = "auto"
	}
	t := fmt.Sprintf("w_%d,h_%d,c_%s,q_%s,f_%s", opts.Width, opts.Height, opts.Crop, opts.Quality, opts.Format)
	return strings.Replace(raw, "/upload/", "/upload/"+t+"/", 1)
}
