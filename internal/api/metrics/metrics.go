// Package metrics defines and registers all custom Prometheus metrics for the
// transport fleet API. It is the single source of truth for metric names,
// labels, and help strings. Metrics self-register with the default registry
// through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fleet"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthEventsTotal counts terminal outcomes of the three session flows.
// Labels:
//   - event: LOGIN, REFRESH, or REGISTER
//   - success: "true" or "false"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of login/refresh/register attempts by outcome.",
	},
	[]string{"event", "success"},
)

// AuditWriteFailuresTotal counts audit records that could not be persisted.
// The owning flow still completes; this counter is the signal that the
// forensic trail has gaps.
var AuditWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of security audit records that failed to persist.",
	},
)

// SecurityEventsDroppedTotal counts audit events dropped by the fan-out
// dispatcher because all worker channels were full.
var SecurityEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_events_dropped_total",
		Help:      "Total number of security events dropped by the dispatcher.",
	},
)

// ── Vehicle metrics ───────────────────────────────────────────────────────────

// VehicleCacheTotal counts vehicle cache lookups.
// Label:
//   - result: "hit" or "miss"
var VehicleCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vehicle_cache_total",
		Help:      "Total number of vehicle cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// VehiclesCreatedTotal counts newly registered fleet assets.
// Label:
//   - brand: the vehicle brand
var VehiclesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vehicles_created_total",
		Help:      "Total number of vehicles registered, by brand.",
	},
	[]string{"brand"},
)
