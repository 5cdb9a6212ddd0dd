package services

import (
	"bytes"
	"fmt"

	"dashboard-cms/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	msgInvalidBody   = "Invalid JSON body. Expected an object."
	msgInvalidHeader = "Invalid header format. Title and imageUrl must be strings."
	msgInvalidFooter = "Invalid footer format. Email, phone and address must be strings."
	msgInvalidNavbar = "Invalid navbar format. Each link must have label and url strings."
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// navLinkInput keeps presence visible: a missing key stays nil and fails
// "required", while an empty string is accepted.
type navLinkInput struct {
	Label *string `json:"label" yaml:"label" toml:"label" validate:"required"`
	URL   *string `json:"url" yaml:"url" toml:"url" validate:"required"`
}

type navbarInput struct {
	Links []navLinkInput `validate:"dive"`
}

// DecodeContentPatch turns a combined update body into a typed patch. Every
// section is checked before anything is returned, so a bad navbar also drops
// the header and footer parts of the same request. Keys match exactly:
// "Navbar" is an unknown key and is ignored like any other.
func DecodeContentPatch(body []byte) (models.ContentPatch, error) {
	sections, err := objectFields(body)
	if err != nil {
		return models.ContentPatch{}, err
	}

	var patch models.ContentPatch
	if raw := sections["header"]; jsonKind(raw) == '{' {
		h, err := DecodeHeaderPatch(raw)
		if err != nil {
			return models.ContentPatch{}, err
		}
		patch.Header = &h
	}
	if raw := sections["navbar"]; jsonKind(raw) == '[' {
		links, err := DecodeLinks(raw)
		if err != nil {
			return models.ContentPatch{}, err
		}
		patch.Navbar = links
	}
	if raw := sections["footer"]; jsonKind(raw) == '{' {
		f, err := DecodeFooterPatch(raw)
		if err != nil {
			return models.ContentPatch{}, err
		}
		patch.Footer = &f
	}
	return patch, nil
}

func DecodeHeaderPatch(body []byte) (models.HeaderPatch, error) {
	m, err := objectFields(body)
	if err != nil {
		return models.HeaderPatch{}, err
	}
	var h models.HeaderPatch
	if h.Title, err = stringField(m, "title"); err != nil {
		return models.HeaderPatch{}, &models.ValidationError{Message: msgInvalidHeader}
	}
	if h.ImageURL, err = stringField(m, "imageUrl"); err != nil {
		return models.HeaderPatch{}, &models.ValidationError{Message: msgInvalidHeader}
	}
	return h, nil
}

func DecodeFooterPatch(body []byte) (models.FooterPatch, error) {
	m, err := objectFields(body)
	if err != nil {
		return models.FooterPatch{}, err
	}
	var f models.FooterPatch
	for key, dst := range map[string]**string{
		"email":   &f.Email,
		"phone":   &f.Phone,
		"address": &f.Address,
	} {
		if *dst, err = stringField(m, key); err != nil {
			return models.FooterPatch{}, &models.ValidationError{Message: msgInvalidFooter}
		}
	}
	return f, nil
}

// DecodeNavbarLinks reads {"links": [...]}. A missing or non-array links
// value yields nil, which leaves the stored list as it is.
func DecodeNavbarLinks(body []byte) ([]models.NavLink, error) {
	m, err := objectFields(body)
	if err != nil {
		return nil, err
	}
	if jsonKind(m["links"]) != '[' {
		return nil, nil
	}
	return DecodeLinks(m["links"])
}

// DecodeLinks reads a JSON array of navigation links. Each element must be
// an object with string "label" and "url" keys; anything else, including a
// non-array value, is a ValidationError.
func DecodeLinks(raw []byte) ([]models.NavLink, error) {
	if jsonKind(raw) != '[' {
		return nil, &models.ValidationError{Message: msgInvalidNavbar}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &models.ValidationError{Message: msgInvalidNavbar}
	}
	in := make([]navLinkInput, len(items))
	for i, item := range items {
		if jsonKind(item) != '{' {
			return nil, &models.ValidationError{Message: msgInvalidNavbar}
		}
		m, err := objectFields(item)
		if err != nil {
			return nil, &models.ValidationError{Message: msgInvalidNavbar}
		}
		label, lerr := stringField(m, "label")
		url, uerr := stringField(m, "url")
		if lerr != nil || uerr != nil {
			return nil, &models.ValidationError{Message: msgInvalidNavbar}
		}
		in[i] = navLinkInput{Label: label, URL: url}
	}
	return validateLinks(in)
}

// validateLinks applies the navbar shape rule to already-typed links, either
// from DecodeLinks or from a seed file.
func validateLinks(links []navLinkInput) ([]models.NavLink, error) {
	if err := validate.Struct(navbarInput{Links: links}); err != nil {
		return nil, &models.ValidationError{Message: msgInvalidNavbar}
	}
	out := make([]models.NavLink, len(links))
	for i, l := range links {
		out[i] = models.NavLink{Label: *l.Label, URL: *l.URL}
	}
	return out, nil
}

// objectFields decodes a JSON object into its raw members keyed exactly as
// sent. Struct decoding folds key case, so request bodies go through here.
// An empty body counts as {}.
func objectFields(body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if jsonKind(body) != '{' {
		return nil, &models.ValidationError{Message: msgInvalidBody}
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, &models.ValidationError{Message: msgInvalidBody}
	}
	return m, nil
}

// stringField returns nil for a missing or null member and an error for a
// member that is not a string.
func stringField(m map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := m[key]
	if !ok || jsonKind(raw) == 'n' {
		return nil, nil
	}
	if jsonKind(raw) != '"' {
		return nil, fmt.Errorf("%s: not a string", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &s, nil
}

func jsonKind(raw []byte) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
