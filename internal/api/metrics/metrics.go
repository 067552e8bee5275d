// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics use promauto and register with the default registry at package
// initialisation, before the HTTP server starts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Job metrics ───────────────────────────────────────────────────────────────

// JobsCreatedTotal counts newly posted jobs.
// Label:
//   - mode: "urgent" or "scheduled"
var JobsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs posted, by scheduling mode.",
	},
	[]string{"mode"},
)

// ProposalsSubmittedTotal counts proposals submitted by professionals.
var ProposalsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposals_submitted_total",
		Help:      "Total number of proposals submitted on open jobs.",
	},
)

// ProposalsAcceptedTotal counts accepted proposals (one per assigned job).
var ProposalsAcceptedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposals_accepted_total",
		Help:      "Total number of proposals accepted by clients.",
	},
)

// JobsClosedTotal counts jobs reaching a terminal status.
// Label:
//   - status: "completed" or "cancelled"
var JobsClosedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_closed_total",
		Help:      "Total number of jobs reaching a terminal status.",
	},
	[]string{"status"},
)

// ── Escrow metrics ────────────────────────────────────────────────────────────

// EscrowFundedTotal counts successfully funded escrow payments.
var EscrowFundedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "escrow_funded_total",
		Help:      "Total number of escrow payments funded.",
	},
)

// EscrowSettledTotal counts settled escrow payments.
// Label:
//   - outcome: "released" or "refunded"
var EscrowSettledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "escrow_settled_total",
		Help:      "Total number of escrow payments settled, by outcome.",
	},
	[]string{"outcome"},
)

// EscrowHeldDuration measures the time funds stayed in escrow from funding to
// settlement.
var EscrowHeldDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "escrow_held_duration_seconds",
		Help:      "Time between funding and settlement of an escrow payment.",
		Buckets:   prometheus.ExponentialBuckets(60, 4, 10), // 1m .. ~1y
	},
)

// ── Dispute metrics ───────────────────────────────────────────────────────────

// DisputesOpenedTotal counts disputes filed against paid payments.
var DisputesOpenedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disputes_opened_total",
		Help:      "Total number of disputes opened.",
	},
)

// DisputesResolvedTotal counts administrative resolutions.
// Label:
//   - favor: "client" or "professional"
var DisputesResolvedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disputes_resolved_total",
		Help:      "Total number of disputes resolved, by favored party.",
	},
	[]string{"favor"},
)
