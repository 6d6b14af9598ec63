package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/core/ports"
	"github.com/snapmatch/client-engine/internal/metrics"
)

const (
	defaultPollInterval  = 2 * time.Second
	defaultRetryInterval = 3 * time.Second
	defaultMaxRetries    = 20
)

// PollerOptions tunes one poller instance. The zero value selects the
// defaults: 2s cadence while the job is pending, 3s between retries after a
// transient fetch failure, and at most 20 consecutive retries before the
// poller gives up with an unreachable outcome.
type PollerOptions struct {
	PollInterval  time.Duration
	RetryInterval time.Duration
	// MaxRetries bounds consecutive transient failures. 0 retries forever.
	MaxRetries int
	// Sessions, when set, is cleared as soon as the backend rejects the
	// credential: a token the server has declared invalid must not survive
	// locally.
	Sessions *SessionStore
}

func (o PollerOptions) withDefaults() PollerOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = defaultRetryInterval
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = defaultMaxRetries
	}
	return o
}

// PollEventKind discriminates poller emissions.
type PollEventKind int

const (
	// PollUpdate carries a fresh job snapshot. Polling continues while the
	// snapshot's status is still pending and stops after a terminal one.
	PollUpdate PollEventKind = iota
	// PollAuthExpired means the caller's credential is no longer valid.
	// The session has been cleared and polling has stopped; Redirect
	// carries the login target with the return path attached.
	PollAuthExpired
	// PollFailed means the fetch failed terminally (bad or unknown job
	// identifier). Polling has stopped; Err carries the cause.
	PollFailed
	// PollUnreachable means consecutive transient failures exhausted the
	// retry budget. Polling has stopped.
	PollUnreachable
)

// PollEvent is one emission from a Poller.
type PollEvent struct {
	Kind     PollEventKind
	Snapshot domain.JobSnapshot
	Err      error
	Redirect string
}

// Poller drives one asynchronous match job from submission to a terminal
// observation. Fetches are strictly sequential within an instance — never
// pipelined — so results arrive in issuance order; independent pollers for
// different jobs run concurrently without coordination. The Poller itself is
// the cancellable repeating-task handle: Stop (or cancelling the Start
// context) guarantees no further fetch is issued and no in-flight result is
// applied.
type Poller struct {
	jobID    string
	fetch    ports.JobStatusFetcher
	returnTo string
	opts     PollerOptions
	log      zerolog.Logger

	events  chan PollEvent
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewPoller builds a poller for the given job. returnTo is the caller's
// current location, propagated on an auth-expired redirect so navigation can
// come back after re-authentication.
func NewPoller(jobID string, fetch ports.JobStatusFetcher, returnTo string, opts PollerOptions, log zerolog.Logger) *Poller {
	return &Poller{
		jobID:    jobID,
		fetch:    fetch,
		returnTo: returnTo,
		opts:     opts.withDefaults(),
		log:      log.With().Str("job_id", jobID).Logger(),
		events:   make(chan PollEvent, 1),
	}
}

// Start launches the polling loop and returns its event channel. The channel
// closes once polling stops, whether by terminal status, terminal error, or
// cancellation. Start must be called at most once per Poller.
func (p *Poller) Start(ctx context.Context) <-chan PollEvent {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		// Stopped before it ever started.
		cancel()
	}
	go p.run(ctx)
	return p.events
}

// Stop cancels the poller. Idempotent, safe to call from any goroutine, and
// safe to call before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.events)

	retries := 0
	timer := time.NewTimer(0) // first fetch is immediate
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		snap, err := p.fetch(ctx)
		metrics.PollFetchDuration.Observe(time.Since(start).Seconds())

		if ctx.Err() != nil {
			// Cancelled while the fetch was in flight; discard the result.
			return
		}

		if err != nil {
			switch {
			case errors.Is(err, domain.ErrAuthExpired):
				metrics.PollFetchesTotal.WithLabelValues("auth_expired").Inc()
				p.log.Warn().Err(err).Msg("credential rejected, halting poll")
				if p.opts.Sessions != nil {
					p.opts.Sessions.Clear(ctx)
				}
				p.emit(ctx, PollEvent{Kind: PollAuthExpired, Err: err, Redirect: LoginRedirect(p.returnTo)})
				return
			case errors.Is(err, domain.ErrForbidden):
				metrics.PollFetchesTotal.WithLabelValues("terminal_error").Inc()
				p.emit(ctx, PollEvent{Kind: PollFailed, Err: err, Redirect: ForbiddenPath})
				return
			case errors.Is(err, domain.ErrNotFound),
				errors.Is(err, domain.ErrValidation):
				metrics.PollFetchesTotal.WithLabelValues("terminal_error").Inc()
				p.emit(ctx, PollEvent{Kind: PollFailed, Err: err})
				return
			default:
				// Transient infrastructure failure, as opposed to a
				// terminal job outcome: keep polling on the slower cadence.
				retries++
				metrics.PollFetchesTotal.WithLabelValues("retry").Inc()
				if p.opts.MaxRetries > 0 && retries >= p.opts.MaxRetries {
					metrics.PollFetchesTotal.WithLabelValues("unreachable").Inc()
					p.log.Error().Err(err).Int("retries", retries).Msg("retry budget exhausted")
					p.emit(ctx, PollEvent{Kind: PollUnreachable, Err: fmt.Errorf("%w: %v", domain.ErrUnreachable, err)})
					return
				}
				p.log.Debug().Err(err).Int("attempt", retries).Msg("status fetch failed, retrying")
				timer.Reset(p.opts.RetryInterval)
				continue
			}
		}

		retries = 0
		if snap.JobID == "" {
			snap.JobID = p.jobID
		}
		metrics.PollFetchesTotal.WithLabelValues(string(snap.Status)).Inc()
		p.emit(ctx, PollEvent{Kind: PollUpdate, Snapshot: snap})

		if !snap.Status.StillPolling() {
			return
		}
		timer.Reset(p.opts.PollInterval)
	}
}

// emit delivers ev unless the poller has been cancelled; a late result must
// never mutate a torn-down consumer's state.
func (p *Poller) emit(ctx context.Context, ev PollEvent) {
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}
