package ports

import (
	"context"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

// SecurityAuditRepository is the append-only store of security events.
type SecurityAuditRepository interface {
	Record(ctx context.Context, entry *domain.SecurityAuditLog) error
}

// SecurityEventSink receives committed audit events for secondary processing
// (metrics, alerting). Implementations must not block the caller.
type SecurityEventSink interface {
	Notify(event domain.SecurityAuditLog)
}
