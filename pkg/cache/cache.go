// Package cache mirrors the client's working copy into durable storage so a
// restart does not lose unsaved edits. Each section lives under its own key
// and loads independently of the others.
package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"dashboard-cms/pkg/models"
	"dashboard-cms/pkg/services"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	KeyHeader = "dashboardHeader"
	KeyNavbar = "dashboardNavbar"
	KeyFooter = "dashboardFooter"
)

// Storage is a flat key/value store for serialized sections.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// FileStorage keeps one JSON file per key inside dir.
type FileStorage struct {
	fs  afero.Fs
	dir string
}

func NewFileStorage(fs afero.Fs, dir string) *FileStorage {
	return &FileStorage{fs: fs, dir: dir}
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStorage) Get(key string) ([]byte, error) {
	return afero.ReadFile(s.fs, s.path(key))
}

// Set writes through a temp file and renames it into place so a crash
// mid-write leaves the previous value readable.
func (s *FileStorage) Set(key string, value []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, value, 0644); err != nil {
		return err
	}
	return s.fs.Rename(tmp, s.path(key))
}

// Cache is the persistence side of the working copy. Writes are best
// effort: failures are logged and never returned to the caller.
type Cache struct {
	store    Storage
	defaults models.ContentRecord
	logger   *zap.Logger
}

func New(store Storage, defaults models.ContentRecord, logger *zap.Logger) *Cache {
	return &Cache{store: store, defaults: defaults.Clone(), logger: logger}
}

// Load seeds a working copy. A missing or corrupt section falls back to its
// default without affecting the other two. Entries go through the same
// checks as API request bodies; a null entry counts as corrupt.
func (c *Cache) Load() models.ContentRecord {
	rec := c.defaults.Clone()

	if data, ok := c.read(KeyHeader); ok {
		if p, err := services.DecodeHeaderPatch(data); err != nil {
			c.discard(KeyHeader, err)
		} else {
			rec.Header = p.Apply(rec.Header)
		}
	}
	if data, ok := c.read(KeyNavbar); ok {
		if links, err := services.DecodeLinks(data); err != nil {
			c.discard(KeyNavbar, err)
		} else {
			rec.Navbar = links
		}
	}
	if data, ok := c.read(KeyFooter); ok {
		if p, err := services.DecodeFooterPatch(data); err != nil {
			c.discard(KeyFooter, err)
		} else {
			rec.Footer = p.Apply(rec.Footer)
		}
	}
	return rec
}

func (c *Cache) read(key string) ([]byte, bool) {
	data, err := c.store.Get(key)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.discard(key, errors.New("empty entry"))
		return nil, false
	}
	return data, true
}

func (c *Cache) discard(key string, err error) {
	c.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
}

func (c *Cache) SaveHeader(h models.Header) { c.write(KeyHeader, h) }

func (c *Cache) SaveNavbar(links []models.NavLink) {
	if links == nil {
		links = []models.NavLink{}
	}
	c.write(KeyNavbar, links)
}

func (c *Cache) SaveFooter(f models.Footer) { c.write(KeyFooter, f) }

// SaveAll writes every section.
func (c *Cache) SaveAll(rec models.ContentRecord) {
	c.SaveHeader(rec.Header)
	c.SaveNavbar(rec.Navbar)
	c.SaveFooter(rec.Footer)
}

func (c *Cache) write(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(key, data); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
