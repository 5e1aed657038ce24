// Package metrics defines and registers all custom Prometheus metrics for
// the accreditation API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accreditation"

// ── Session metrics ───────────────────────────────────────────────────────────

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "ok", "rejected" (bad credentials), "unprovisioned" (session
//     issued but no profile resolved)
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts, labelled by result.",
	},
	[]string{"result"},
)

// SessionResolutionsTotal counts identity resolutions.
// Label:
//   - outcome: "resolved", "profile_missing", "store_error"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of identity resolutions, labelled by outcome.",
	},
	[]string{"outcome"},
)

// SessionEventsTotal counts notifications observed on the session change
// stream.
// Label:
//   - kind: "sign_in" or "sign_out"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session change notifications consumed.",
	},
	[]string{"kind"},
)

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts route authorization verdicts.
// Label:
//   - decision: "admit", "redirect_signin", "redirect_unauthorized"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of route authorization decisions.",
	},
	[]string{"decision"},
)

// ── Phase metrics ─────────────────────────────────────────────────────────────

// PhaseMutationsTotal counts successful phase mutations.
// Label:
//   - action: "create", "set_status", "set_link"
var PhaseMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "phase_mutations_total",
		Help:      "Total number of successful phase mutations, labelled by action.",
	},
	[]string{"action"},
)
