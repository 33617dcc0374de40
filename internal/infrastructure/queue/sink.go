package queue

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fleetops/transport-fleet/internal/api/metrics"
	"github.com/fleetops/transport-fleet/internal/core/domain"
)

// MetricsSink is the default Consumer: it feeds the auth event counters and
// raises a warn-level log line for every failed attempt so operators can spot
// credential probing without querying the audit store.
type MetricsSink struct {
	log zerolog.Logger
}

func NewMetricsSink(log zerolog.Logger) *MetricsSink {
	return &MetricsSink{log: log}
}

func (s *MetricsSink) Consume(_ context.Context, event domain.SecurityAuditLog) {
	metrics.AuthEventsTotal.WithLabelValues(event.EventType, strconv.FormatBool(event.Success)).Inc()

	if !event.Success {
		s.log.Warn().
			Str("event", event.EventType).
			Str("email", event.Email).
			Str("ip", event.IPAddress).
			Str("user_agent", event.UserAgent).
			Msg("security event: failed attempt")
	}
}
