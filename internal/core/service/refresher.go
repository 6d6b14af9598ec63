package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/core/ports"
	"github.com/snapmatch/client-engine/internal/metrics"
)

// Refresher reconciles the cached Identity against the backend's canonical
// "who am I" view. The policy is fail-closed: a session that cannot be
// verified — for any reason, including a network failure — is cleared
// rather than optimistically trusted.
type Refresher struct {
	mu       sync.Mutex
	api      ports.IdentityAPI
	sessions *SessionStore
	log      zerolog.Logger
}

// NewRefresher returns a Refresher over the given identity API and store.
func NewRefresher(api ports.IdentityAPI, sessions *SessionStore, log zerolog.Logger) *Refresher {
	return &Refresher{api: api, sessions: sessions, log: log}
}

// Refresh verifies the cached session and returns the refreshed Identity.
// With no cached identity it reports unauthenticated immediately, without a
// network call. At most one refresh is in flight per Refresher; callers
// racing on the same instance serialize here. A refresh whose context was
// canceled mid-flight never applies its result.
func (r *Refresher) Refresh(ctx context.Context) (domain.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cached, ok := r.sessions.Load(ctx)
	if !ok {
		metrics.RefreshesTotal.WithLabelValues("no_session").Inc()
		return domain.Identity{}, false
	}

	fresh, err := r.api.Me(ctx, cached.Token)
	if ctx.Err() != nil {
		// The owning view went away while the request was in flight; the
		// result must not be applied to the store.
		return domain.Identity{}, false
	}
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", cached.UserID).Msg("session verification failed, clearing session")
		r.sessions.Clear(ctx)
		metrics.RefreshesTotal.WithLabelValues("failed").Inc()
		return domain.Identity{}, false
	}

	// Refresh does not mint a new token; the cached one is retained as-is.
	fresh.Token = cached.Token
	r.sessions.Save(ctx, fresh)
	metrics.RefreshesTotal.WithLabelValues("ok").Inc()
	return fresh, true
}
