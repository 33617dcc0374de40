package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fleetops/transport-fleet/internal/api/metrics"
	"github.com/fleetops/transport-fleet/internal/core/domain"
	"github.com/fleetops/transport-fleet/internal/core/ports"
)

// VehicleCache abstracts the read-through cache (Redis) in front of the
// vehicle store. Cache failures are never fatal to a request.
type VehicleCache interface {
	Get(ctx context.Context, id string) (*domain.Vehicle, error)
	Set(ctx context.Context, vehicle *domain.Vehicle) error
	Invalidate(ctx context.Context, id string) error
}

type vehicleService struct {
	repo  ports.VehicleRepository
	cache VehicleCache
	log   zerolog.Logger
}

// NewVehicleService returns a VehicleService implementation. cache may be nil.
func NewVehicleService(repo ports.VehicleRepository, cache VehicleCache, log zerolog.Logger) ports.VehicleService {
	return &vehicleService{repo: repo, cache: cache, log: log}
}

func (s *vehicleService) List(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *vehicleService) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("vehicle_id", id).Msg("vehicle cache read failed")
		} else if cached != nil {
			metrics.VehicleCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.VehicleCacheTotal.WithLabelValues("miss").Inc()
	}

	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, vehicle); err != nil {
			s.log.Warn().Err(err).Str("vehicle_id", id).Msg("vehicle cache write failed")
		}
	}
	return vehicle, nil
}

func (s *vehicleService) Create(ctx context.Context, input ports.CreateVehicleInput) (*domain.Vehicle, error) {
	if input.Name == "" || input.Brand == "" || input.Year <= 0 {
		return nil, domain.ErrValidation
	}

	exists, err := s.repo.Exists(ctx, input.Name, input.Brand, input.Year, "")
	if err != nil {
		return nil, fmt.Errorf("create vehicle: duplicate check: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateVehicle
	}

	vehicle := &domain.Vehicle{
		ID:    uuid.NewString(),
		Name:  input.Name,
		Brand: input.Brand,
		Year:  input.Year,
		Price: input.Price,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	metrics.VehiclesCreatedTotal.WithLabelValues(vehicle.Brand).Inc()
	s.log.Info().Str("vehicle_id", vehicle.ID).Str("brand", vehicle.Brand).Msg("vehicle created")
	return vehicle, nil
}

func (s *vehicleService) Update(ctx context.Context, id string, patch ports.VehiclePatch) (*domain.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		vehicle.Name = *patch.Name
	}
	if patch.Brand != nil {
		vehicle.Brand = *patch.Brand
	}
	if patch.Year != nil {
		vehicle.Year = *patch.Year
	}
	if patch.Price != nil {
		vehicle.Price = *patch.Price
	}

	exists, err := s.repo.Exists(ctx, vehicle.Name, vehicle.Brand, vehicle.Year, id)
	if err != nil {
		return nil, fmt.Errorf("update vehicle: duplicate check: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateVehicle
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	vehicle.UpdatedAt = time.Now().UTC()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("vehicle_id", id).Msg("vehicle cache invalidation failed")
		}
	}
	return vehicle, nil
}

func (s *vehicleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("vehicle_id", id).Msg("vehicle cache invalidation failed")
		}
	}
	s.log.Info().Str("vehicle_id", id).Msg("vehicle deleted")
	return nil
}
