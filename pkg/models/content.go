package models

// Header is the page banner: a title over an image.
type Header struct {
	Title    string `json:"title" yaml:"title" toml:"title"`
	ImageURL string `json:"imageUrl" yaml:"imageUrl" toml:"imageUrl"`
}

// NavLink is one entry of the navigation bar. Order is significant.
type NavLink struct {
	Label string `json:"label" yaml:"label" toml:"label"`
	URL   string `json:"url" yaml:"url" toml:"url"`
}

// Footer holds the contact fields rendered at the bottom of the page.
type Footer struct {
	Email   string `json:"email" yaml:"email" toml:"email"`
	Phone   string `json:"phone" yaml:"phone" toml:"phone"`
	Address string `json:"address" yaml:"address" toml:"address"`
}

// ContentRecord is the single document the dashboard edits.
type ContentRecord struct {
	Header Header    `json:"header" yaml:"header" toml:"header"`
	Navbar []NavLink `json:"navbar" yaml:"navbar" toml:"navbar"`
	Footer Footer    `json:"footer" yaml:"footer" toml:"footer"`
}

// Clone returns a copy that shares no slice storage with r.
func (r ContentRecord) Clone() ContentRecord {
	r.Navbar = CloneLinks(r.Navbar)
	return r
}

// CloneLinks copies links, keeping nil and empty distinct.
func CloneLinks(links []NavLink) []NavLink {
	if links == nil {
		return nil
	}
	out := make([]NavLink, len(links))
	copy(out, links)
	return out
}

// HeaderPatch is a field-level update. Nil fields keep their current value.
type HeaderPatch struct {
	Title    *string `json:"title,omitempty" yaml:"title" toml:"title"`
	ImageURL *string `json:"imageUrl,omitempty" yaml:"imageUrl" toml:"imageUrl"`
}

// Apply merges p into h.
func (p HeaderPatch) Apply(h Header) Header {
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.ImageURL != nil {
		h.ImageURL = *p.ImageURL
	}
	return h
}

// FooterPatch is a field-level update. Nil fields keep their current value.
type FooterPatch struct {
	Email   *string `json:"email,omitempty" yaml:"email" toml:"email"`
	Phone   *string `json:"phone,omitempty" yaml:"phone" toml:"phone"`
	Address *string `json:"address,omitempty" yaml:"address" toml:"address"`
}

// Apply merges p into f.
func (p FooterPatch) Apply(f Footer) Footer {
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.Address != nil {
		f.Address = *p.Address
	}
	return f
}

// ContentPatch is a validated combined update. A nil Navbar leaves the list
// untouched; a non-nil one (even empty) replaces it wholesale.
type ContentPatch struct {
	Header *HeaderPatch
	Navbar []NavLink
	Footer *FooterPatch
}

// Apply returns r with every supplied section merged in.
func (p ContentPatch) Apply(r ContentRecord) ContentRecord {
	out := r.Clone()
	if p.Header != nil {
		out.Header = p.Header.Apply(out.Header)
	}
	if p.Navbar != nil {
		out.Navbar = CloneLinks(p.Navbar)
	}
	if p.Footer != nil {
		out.Footer = p.Footer.Apply(out.Footer)
	}
	return out
}

// DefaultRecord returns the built-in content shipped with the dashboard.
func DefaultRecord() ContentRecord {
	return ContentRecord{
		Header: Header{
			Title:    "Welcome to My Dashboard",
			ImageURL: "https://via.placeholder.com/800x200?text=Header+Image",
		},
		Navbar: []NavLink{
			{Label: "Home", URL: "/"},
			{Label: "About", URL: "/about"},
			{Label: "Contact", URL: "/contact"},
		},
		Footer: Footer{
			Email:   "contact@example.com",
			Phone:   "+1 (555) 123-4567",
			Address: "123 Main Street, City, Country",
		},
	}
}
