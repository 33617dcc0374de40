package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

const auditCollection = "security_audit_logs"

// SecurityAuditRepository implements ports.SecurityAuditRepository using
// MongoDB. The collection is append-only: no update or delete path exists.
type SecurityAuditRepository struct {
	coll *mongo.Collection
}

func NewSecurityAuditRepository(db *mongo.Database) *SecurityAuditRepository {
	return &SecurityAuditRepository{coll: db.Collection(auditCollection)}
}

func (r *SecurityAuditRepository) Record(ctx context.Context, entry *domain.SecurityAuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}
