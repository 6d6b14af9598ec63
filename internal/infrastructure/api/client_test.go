package api

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/core/service"
	"github.com/snapmatch/client-engine/internal/infrastructure/store"
)

func floatPtr(f float64) *float64 { return &f }

func completedResponse(photos ...photoResult) matchStatusResponse {
	return matchStatusResponse{
		Status:     "completed",
		Message:    "match finished",
		Confidence: floatPtr(0.87),
		Photos:     photos,
	}
}

func TestClient_LoginReturnsCompleteIdentity(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())

	id, err := client.Login(context.Background(), "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !id.Complete() {
		t.Fatalf("login must yield a complete identity: %+v", id)
	}
	if id.Role != domain.RoleGuest || id.DisplayName != "Ana" || id.UserID != "u_1" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestClient_LoginRejectsBadCredentials(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())

	_, err := client.Login(context.Background(), "ana@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if errors.Is(err, domain.ErrAuthExpired) {
		t.Fatalf("a rejected login is not an expired session: %v", err)
	}
}

func TestClient_MeAttachesBearerToken(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "leo@example.com")

	id, err := client.Me(context.Background(), token)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if id.Role != domain.RolePhotographer || id.UserID != "u_7" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.Token != "" {
		t.Fatalf("Me must not mint a token")
	}
	if backend.lastAuthHeader != "Bearer "+token {
		t.Fatalf("authorization header = %q", backend.lastAuthHeader)
	}
}

func TestClient_MeRejectsRevokedToken(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "ana@example.com")
	backend.revoke(token)

	_, err := client.Me(context.Background(), token)
	if !errors.Is(err, domain.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
}

func TestClient_LegacyMessageHeuristic(t *testing.T) {
	backend := newFakeBackend(t)
	backend.legacyErrors = true
	client := NewClient(backend.url(), zerolog.Nop())

	// No structured code, just "Please sign in to continue" message text.
	_, err := client.Me(context.Background(), "garbage")
	if !errors.Is(err, domain.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired via message heuristic, got %v", err)
	}
}

func TestClient_MatchStatusDecodesSnapshot(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "ana@example.com")

	backend.script("q_1", completedResponse(
		photoResult{ID: "p1", Score: 0.95, URL: "https://photos.test/p1.jpg", ThumbnailURL: "https://photos.test/p1_t.jpg"},
		photoResult{ID: "p2", Score: 0.81, URL: "https://photos.test/p2.jpg"},
	))

	snap, err := client.MatchStatus(context.Background(), token, "q_1")
	if err != nil {
		t.Fatalf("match status: %v", err)
	}
	if snap.JobID != "q_1" || snap.Status != domain.StatusCompleted {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Confidence == nil || *snap.Confidence != 0.87 {
		t.Fatalf("confidence not decoded: %+v", snap.Confidence)
	}
	if len(snap.Results) != 2 || snap.Results[0].PhotoID != "p1" || snap.Results[0].ThumbnailURL != "https://photos.test/p1_t.jpg" {
		t.Fatalf("results not mapped: %+v", snap.Results)
	}
}

func TestClient_MatchStatusUnknownQuery(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "ana@example.com")

	_, err := client.MatchStatus(context.Background(), token, "q_missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_SubmitMatchValidation(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "ana@example.com")

	queryID, err := client.SubmitMatch(context.Background(), token, "ev_1", "https://uploads.test/selfie.jpg")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if queryID != "q_new" {
		t.Fatalf("unexpected query id %q", queryID)
	}

	_, err = client.SubmitMatch(context.Background(), token, "ev_1", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClient_MyPhotosCarriesQueryID(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "ana@example.com")

	backend.script("event:ev_1", matchStatusResponse{
		Status:  "running",
		Message: "matching in progress",
		QueryID: "q_77",
	})

	snap, err := client.MyPhotos(context.Background(), token, "ev_1")
	if err != nil {
		t.Fatalf("my photos: %v", err)
	}
	if snap.JobID != "q_77" || snap.Status != domain.StatusRunning {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

// fastOpts for end-to-end polling against the fake backend.
var e2eOpts = service.PollerOptions{
	PollInterval:  5 * time.Millisecond,
	RetryInterval: 5 * time.Millisecond,
	MaxRetries:    3,
}

func drain(t *testing.T, events <-chan service.PollEvent) []service.PollEvent {
	t.Helper()
	var got []service.PollEvent
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("poll did not finish; %d events so far", len(got))
		}
	}
}

// Submit → queued → completed with two result items, end to end.
func TestEndToEnd_MatchJobToCompletion(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "ana@example.com")

	queryID, err := client.SubmitMatch(context.Background(), token, "ev_1", "https://uploads.test/selfie.jpg")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	backend.script(queryID,
		matchStatusResponse{Status: "queued", Message: "waiting for a worker"},
		completedResponse(
			photoResult{ID: "p1", Score: 0.95, URL: "https://photos.test/p1.jpg"},
			photoResult{ID: "p2", Score: 0.90, URL: "https://photos.test/p2.jpg"},
		),
	)

	p := service.NewPoller(queryID, client.MatchFetcher(token, queryID), "/match/"+queryID, e2eOpts, zerolog.Nop())
	events := drain(t, p.Start(context.Background()))

	if len(events) != 2 {
		t.Fatalf("expected queued + completed, got %d events", len(events))
	}
	final := events[len(events)-1].Snapshot
	if !final.HasResults() || len(final.Results) != 2 {
		t.Fatalf("expected two matched photos, got %+v", final)
	}
}

// Completed with zero items is a no-match outcome, not "processing".
func TestEndToEnd_NoConfidentMatch(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())
	token := backend.mintToken(t, "ana@example.com")

	backend.script("q_empty", matchStatusResponse{Status: "completed", Message: "no confident match"})

	p := service.NewPoller("q_empty", client.MatchFetcher(token, "q_empty"), "", e2eOpts, zerolog.Nop())
	events := drain(t, p.Start(context.Background()))

	final := events[len(events)-1].Snapshot
	if !final.IsNoMatch() || final.HasResults() {
		t.Fatalf("expected no-match outcome: %+v", final)
	}
}

// Token revoked mid-poll: the poller clears the session, halts, and
// instructs a login redirect carrying the return path.
func TestEndToEnd_AuthExpiryDuringPoll(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())

	id, err := client.Login(context.Background(), "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	token := id.Token
	sessions := service.NewSessionStore(store.NewMemory(), zerolog.Nop())
	sessions.Save(context.Background(), id)

	backend.script("q_1",
		matchStatusResponse{Status: "queued"},
		matchStatusResponse{Status: "running"},
	)

	opts := e2eOpts
	opts.Sessions = sessions
	p := service.NewPoller("q_1", client.MatchFetcher(token, "q_1"), "/match/q_1", opts, zerolog.Nop())
	events := p.Start(context.Background())

	first := <-events
	if first.Snapshot.Status != domain.StatusQueued {
		t.Fatalf("unexpected first event: %+v", first)
	}
	backend.revoke(token)

	var authEvent *service.PollEvent
	for ev := range events {
		if ev.Kind == service.PollAuthExpired {
			authEvent = &ev
		}
	}
	if authEvent == nil {
		t.Fatalf("expected an auth-expired event")
	}
	if !strings.Contains(authEvent.Redirect, "next=") || !strings.Contains(authEvent.Redirect, "q_1") {
		t.Fatalf("redirect must carry the return path, got %q", authEvent.Redirect)
	}
	if _, ok := sessions.Load(context.Background()); ok {
		t.Fatalf("the revoked credential must not survive in the session store")
	}
}

// Refresher against the real client: a revoked token clears the session
// and the guard resolves unauthenticated.
func TestEndToEnd_RevokedTokenFailsClosed(t *testing.T) {
	backend := newFakeBackend(t)
	client := NewClient(backend.url(), zerolog.Nop())

	id, err := client.Login(context.Background(), "leo@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	sessions := service.NewSessionStore(store.NewMemory(), zerolog.Nop())
	sessions.Save(context.Background(), id)
	refresher := service.NewRefresher(client, sessions, zerolog.Nop())
	guard := service.NewGuard(refresher, zerolog.Nop())

	// Verified session resolves allowed for a photographer view.
	res := guard.Resolve(context.Background(), domain.RolePhotographer, domain.RoleAdmin, domain.RoleSuperAdmin)
	if res.Decision != service.DecisionAllowed {
		t.Fatalf("expected allowed, got %s", res.Decision)
	}

	backend.revoke(id.Token)
	res = guard.Resolve(context.Background(), domain.RolePhotographer)
	if res.Decision != service.DecisionUnauthenticated {
		t.Fatalf("expected unauthenticated after revocation, got %s", res.Decision)
	}
	if _, ok := sessions.Load(context.Background()); ok {
		t.Fatalf("session must be cleared after failed verification")
	}
}
