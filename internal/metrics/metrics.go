// Package metrics defines and registers all custom Prometheus metrics for
// the SnapMatch client engine. It is the single source of truth for metric
// names, labels, and help strings; registration happens with the default
// registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "snapmatch"

// ── Session metrics ───────────────────────────────────────────────────────────

// RefreshesTotal counts identity refresh attempts.
// Label:
//   - result: "ok", "failed" (fail-closed clear), or "no_session"
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refreshes_total",
		Help:      "Total number of identity refresh attempts, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts role-guard resolutions.
// Label:
//   - decision: "allowed", "forbidden", or "unauthenticated"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of role guard resolutions, by decision.",
	},
	[]string{"decision"},
)

// ── Polling metrics ───────────────────────────────────────────────────────────

// PollFetchesTotal counts individual status fetches issued by pollers.
// Label:
//   - outcome: the normalized job status on success, or "retry",
//     "auth_expired", "terminal_error", "unreachable" on failure
var PollFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_fetches_total",
		Help:      "Total number of job status fetches, by outcome.",
	},
	[]string{"outcome"},
)

// PollFetchDuration measures the latency of a single status fetch.
var PollFetchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_fetch_duration_seconds",
		Help:      "Duration of a single job status fetch.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
