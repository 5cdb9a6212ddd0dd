package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dashboard-cms/pkg/models"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// seedFile mirrors ContentRecord with every field optional so a seed can
// override only part of the built-in content.
type seedFile struct {
	Header *models.HeaderPatch `json:"header" yaml:"header" toml:"header"`
	Navbar []navLinkInput      `json:"navbar" yaml:"navbar" toml:"navbar"`
	Footer *models.FooterPatch `json:"footer" yaml:"footer" toml:"footer"`
}

// FormatFromPath maps a file extension to "yaml", "toml" or "json".
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	case ".json":
		return "json", nil
	}
	return "", fmt.Errorf("unsupported seed format: %q", filepath.Ext(path))
}

// LoadDefaults returns the built-in record, overridden by the seed file at
// path when one is given. Header and footer merge field by field; a navbar
// in the seed replaces the built-in list and must pass the same shape check
// as API input.
func LoadDefaults(path string) (models.ContentRecord, error) {
	defaults := models.DefaultRecord()
	if path == "" {
		return defaults, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return models.ContentRecord{}, fmt.Errorf("read seed file: %w", err)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return models.ContentRecord{}, err
	}
	patch, err := ParseSeed(content, format)
	if err != nil {
		return models.ContentRecord{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return patch.Apply(defaults), nil
}

// ParseSeed decodes seed content in the given format into a patch.
func ParseSeed(content []byte, format string) (models.ContentPatch, error) {
	var seed seedFile
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(content, &seed)
	case "toml":
		err = toml.Unmarshal(content, &seed)
	case "json":
		err = json.Unmarshal(content, &seed)
	default:
		return models.ContentPatch{}, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return models.ContentPatch{}, fmt.Errorf("parse %s: %w", format, err)
	}

	patch := models.ContentPatch{Header: seed.Header, Footer: seed.Footer}
	if seed.Navbar != nil {
		links, err := validateLinks(seed.Navbar)
		if err != nil {
			return models.ContentPatch{}, err
		}
		patch.Navbar = links
	}
	return patch, nil
}

// MarshalRecord encodes rec as yaml, toml or indented json.
func MarshalRecord(rec models.ContentRecord, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case "toml":
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return buf.Bytes(), nil
}
