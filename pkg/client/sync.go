package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"dashboard-cms/pkg/models"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

// Mirror persists the working copy section by section. *cache.Cache is the
// production implementation.
type Mirror interface {
	Load() models.ContentRecord
	SaveHeader(models.Header)
	SaveNavbar([]models.NavLink)
	SaveFooter(models.Footer)
}

// Status describes the outcome of the most recent remote operation.
type Status struct {
	Loading     bool       `json:"loading"`
	LastError   string     `json:"lastError,omitempty"`
	LastSavedAt *time.Time `json:"lastSavedAt,omitempty"`
}

// SyncClient holds the editable working copy and reconciles it with the
// content API. Load is remote-wins, save is local-wins. Nothing is retried
// and concurrent calls are not serialized: two saves both reach the server
// and whichever lands last is what the store keeps.
type SyncClient struct {
	api    ContentAPI
	mirror Mirror
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	working   models.ContentRecord
	inflight  int
	lastErr   string
	lastSaved *time.Time
}

// New seeds the working copy from mirror.
func New(api ContentAPI, mirror Mirror, logger *zap.Logger) *SyncClient {
	return &SyncClient{
		api:     api,
		mirror:  mirror,
		logger:  logger,
		now:     time.Now,
		working: mirror.Load(),
	}
}

func (s *SyncClient) WorkingCopy() models.ContentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

func (s *SyncClient) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Loading: s.inflight > 0, LastError: s.lastErr}
	if s.lastSaved != nil {
		t := *s.lastSaved
		st.LastSavedAt = &t
	}
	return st
}

// ClearError drops the recorded error without touching anything else.
func (s *SyncClient) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *SyncClient) EditHeader(p models.HeaderPatch) models.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working.Header = p.Apply(s.working.Header)
	s.mirror.SaveHeader(s.working.Header)
	return s.working.Header
}

// SetNavbar replaces the whole navigation list.
func (s *SyncClient) SetNavbar(links []models.NavLink) []models.NavLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	if links == nil {
		links = []models.NavLink{}
	}
	s.working.Navbar = models.CloneLinks(links)
	s.mirror.SaveNavbar(s.working.Navbar)
	return models.CloneLinks(s.working.Navbar)
}

func (s *SyncClient) EditFooter(p models.FooterPatch) models.Footer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working.Footer = p.Apply(s.working.Footer)
	s.mirror.SaveFooter(s.working.Footer)
	return s.working.Footer
}

// ResetLocal restores the built-in defaults in the working copy only.
func (s *SyncClient) ResetLocal() models.ContentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(models.DefaultRecord())
	return s.working.Clone()
}

// LoadFromRemote overwrites the working copy with whatever sections the
// server returns, discarding unsaved local edits. On failure the working
// copy is left alone and the error is recorded.
func (s *SyncClient) LoadFromRemote(ctx context.Context) (models.ContentRecord, error) {
	s.begin()
	payload, err := s.api.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.failLocked("load", err, "Failed to fetch data from server")
		return models.ContentRecord{}, err
	}
	s.lastErr = ""
	s.applyPayloadLocked(payload)
	s.logger.Debug("working copy loaded from remote")
	return s.working.Clone(), nil
}

// SaveToRemote pushes a snapshot of the working copy taken at call time.
// The working copy itself is never modified by a save.
func (s *SyncClient) SaveToRemote(ctx context.Context) (models.ContentRecord, error) {
	s.mu.Lock()
	snapshot := s.working.Clone()
	s.inflight++
	s.mu.Unlock()

	payload, err := s.api.Save(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.failLocked("save", err, "Failed to save data to server")
		return models.ContentRecord{}, err
	}
	now := s.now()
	s.lastSaved = &now
	s.lastErr = ""
	s.logger.Debug("working copy saved to remote")
	return payload.merge(snapshot), nil
}

// ResetLocalAndRemote resets the server record and adopts the defaults it
// returns. On failure the working copy is untouched.
func (s *SyncClient) ResetLocalAndRemote(ctx context.Context) (models.ContentRecord, error) {
	s.begin()
	payload, err := s.api.Reset(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.failLocked("reset", err, "Failed to reset data on server")
		return models.ContentRecord{}, err
	}
	s.lastErr = ""
	s.applyPayloadLocked(payload)
	return s.working.Clone(), nil
}

// Pending compares the working copy against the server record without
// changing either. It returns "" when there is nothing to save, otherwise a
// diff where "-" lines are remote and "+" lines are local.
func (s *SyncClient) Pending(ctx context.Context) (string, error) {
	s.begin()
	payload, err := s.api.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		return "", err
	}
	return cmp.Diff(payload.merge(s.working), s.working), nil
}

func (s *SyncClient) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *SyncClient) failLocked(op string, err error, fallback string) {
	msg := fallback
	var terr *models.TransportError
	if errors.As(err, &terr) && terr.Message != "" {
		msg = terr.Message
	}
	s.lastErr = msg
	s.logger.Warn("remote operation failed", zap.String("op", op), zap.Error(err))
}

func (s *SyncClient) applyPayloadLocked(p RecordPayload) {
	if p.Header != nil {
		s.working.Header = *p.Header
		s.mirror.SaveHeader(s.working.Header)
	}
	if p.Navbar != nil {
		s.working.Navbar = models.CloneLinks(p.Navbar)
		s.mirror.SaveNavbar(s.working.Navbar)
	}
	if p.Footer != nil {
		s.working.Footer = *p.Footer
		s.mirror.SaveFooter(s.working.Footer)
	}
}

func (s *SyncClient) replaceLocked(rec models.ContentRecord) {
	s.working = rec.Clone()
	s.mirror.SaveHeader(s.working.Header)
	s.mirror.SaveNavbar(s.working.Navbar)
	s.mirror.SaveFooter(s.working.Footer)
}

// merge fills sections missing from p with base.
func (p RecordPayload) merge(base models.ContentRecord) models.ContentRecord {
	out := base.Clone()
	if p.Header != nil {
		out.Header = *p.Header
	}
	if p.Navbar != nil {
		out.Navbar = models.CloneLinks(p.Navbar)
	}
	if p.Footer != nil {
		out.Footer = *p.Footer
	}
	return out
}
