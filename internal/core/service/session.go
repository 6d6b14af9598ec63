package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/core/ports"
)

// SessionStore owns the single persisted Identity. It has one writer at a
// time (login, logout, or refresh) and many readers, and it is total:
// repository failures are logged and presented to callers as an absent
// identity, never as an error.
type SessionStore struct {
	mu   sync.RWMutex
	repo ports.SessionRepository
	log  zerolog.Logger
}

// NewSessionStore returns a SessionStore backed by the given repository.
func NewSessionStore(repo ports.SessionRepository, log zerolog.Logger) *SessionStore {
	return &SessionStore{repo: repo, log: log}
}

// Save stores all five identity fields atomically as a unit. Incomplete
// identities are rejected outright so that no partial record ever reaches
// the repository.
func (s *SessionStore) Save(ctx context.Context, id domain.Identity) {
	if !id.Complete() {
		s.log.Warn().Str("user_id", id.UserID).Msg("refusing to persist incomplete identity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := ports.SessionRecord{
		Token:       id.Token,
		Role:        string(id.Role),
		Email:       id.Email,
		UserID:      id.UserID,
		DisplayName: id.DisplayName,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		s.log.Warn().Err(err).Msg("session save failed")
	}
}

// Load returns the stored Identity only if every required field is present
// and non-empty; a corrupted or partially written record reads as absent.
func (s *SessionStore) Load(ctx context.Context) (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session load failed")
		return domain.Identity{}, false
	}
	if !ok {
		return domain.Identity{}, false
	}

	id := domain.Identity{
		UserID:      rec.UserID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Role:        domain.Role(rec.Role),
		Token:       rec.Token,
	}
	if !id.Complete() {
		return domain.Identity{}, false
	}
	return id, true
}

// Clear removes the stored identity. Safe to call when nothing is stored.
func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("session clear failed")
	}
}
