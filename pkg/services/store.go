package services

import (
	"sync"

	"dashboard-cms/pkg/models"
)

// ContentStore owns the one ContentRecord. All writes go through the merge
// operations below; callers only ever see copies.
//
// Concurrent writers are serialized by the lock but there is no version
// check, so the last completed write wins.
type ContentStore struct {
	mu       sync.RWMutex
	record   models.ContentRecord
	defaults models.ContentRecord
}

// NewContentStore starts with defaults as both the current record and the
// reset target.
func NewContentStore(defaults models.ContentRecord) *ContentStore {
	return &ContentStore{
		record:   defaults.Clone(),
		defaults: defaults.Clone(),
	}
}

func (s *ContentStore) Get() models.ContentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// ReplaceAll applies a combined update. The patch must already be validated,
// which is what makes a rejected update leave every section untouched.
func (s *ContentStore) ReplaceAll(p models.ContentPatch) models.ContentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = p.Apply(s.record)
	return s.record.Clone()
}

func (s *ContentStore) UpdateHeader(p models.HeaderPatch) models.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Header = p.Apply(s.record.Header)
	return s.record.Header
}

// UpdateNavbar replaces the whole list. A nil slice is a no-op.
func (s *ContentStore) UpdateNavbar(links []models.NavLink) []models.NavLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	if links != nil {
		s.record.Navbar = models.CloneLinks(links)
	}
	return models.CloneLinks(s.record.Navbar)
}

func (s *ContentStore) UpdateFooter(p models.FooterPatch) models.Footer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Footer = p.Apply(s.record.Footer)
	return s.record.Footer
}

// Reset restores the defaults the store was created with.
func (s *ContentStore) Reset() models.ContentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = s.defaults.Clone()
	return s.record.Clone()
}
