// Package metrics defines and registers all custom Prometheus metrics for the
// clinic API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// through promauto and exposed on /metrics next to the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

// ── Scheduling metrics ────────────────────────────────────────────────────────

// AppointmentsWrittenTotal counts successful appointment writes.
// Label:
//   - operation: "create", "update" or "delete"
var AppointmentsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointments_written_total",
		Help:      "Total number of appointment writes, by operation.",
	},
	[]string{"operation"},
)

// SchedulingConflictsTotal counts requests rejected because the clinician's slot was taken.
var SchedulingConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduling_conflicts_total",
		Help:      "Total number of appointment writes rejected by the conflict check.",
	},
)

// EventsDroppedTotal counts appointment events discarded because the dispatcher was full.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of appointment events dropped by the dispatcher.",
	},
)

// ── Patient metrics ───────────────────────────────────────────────────────────

// PatientsWrittenTotal counts successful patient writes.
// Label:
//   - operation: "create", "update" or "delete"
var PatientsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "patients_written_total",
		Help:      "Total number of patient writes, by operation.",
	},
	[]string{"operation"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - provider: "github" or "local"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by provider and result.",
	},
	[]string{"provider", "result"},
)

// ── Error metrics ─────────────────────────────────────────────────────────────

// ErrorsTotal counts error responses rendered by the HTTP error handler.
// Label:
//   - kind: the envelope error kind (e.g. "ValidationError", "InternalError")
var ErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of error responses, by error kind.",
	},
	[]string{"kind"},
)
