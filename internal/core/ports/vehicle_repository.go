package ports

import (
	"context"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

// VehicleRepository defines the interface for fleet asset persistence.
type VehicleRepository interface {
	FindAll(ctx context.Context) ([]domain.Vehicle, error)
	// FindByID returns domain.ErrVehicleNotFound when no vehicle matches.
	FindByID(ctx context.Context, id string) (*domain.Vehicle, error)
	// Exists reports whether a vehicle with the same name, brand, and year is
	// already present. A non-empty excludeID is ignored by the check, which
	// lets updates tolerate their own row.
	Exists(ctx context.Context, name, brand string, year int, excludeID string) (bool, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id string) error
}
