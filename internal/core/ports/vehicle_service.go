package ports

import (
	"context"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

// CreateVehicleInput carries the fields required to register a fleet asset.
type CreateVehicleInput struct {
	Name  string
	Brand string
	Year  int
	Price float64
}

// VehiclePatch is a partial update; nil fields are left untouched.
type VehiclePatch struct {
	Name  *string
	Brand *string
	Year  *int
	Price *float64
}

type VehicleService interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
	Get(ctx context.Context, id string) (*domain.Vehicle, error)
	Create(ctx context.Context, input CreateVehicleInput) (*domain.Vehicle, error)
	Update(ctx context.Context, id string, patch VehiclePatch) (*domain.Vehicle, error)
	Delete(ctx context.Context, id string) error
}
