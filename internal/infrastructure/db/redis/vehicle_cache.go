package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

const cacheTTL = time.Hour

// VehicleCache is a read-through cache for vehicle lookups backed by Redis.
// Key format: vehicle:<id>
type VehicleCache struct {
	client *redis.Client
}

// NewVehicleCache creates a VehicleCache wrapping the given Redis client.
func NewVehicleCache(client *redis.Client) *VehicleCache {
	return &VehicleCache{client: client}
}

// Get returns the cached vehicle, or (nil, nil) on a cache miss.
func (c *VehicleCache) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vehicle cache get: %w", err)
	}

	var v domain.Vehicle
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("vehicle cache decode: %w", err)
	}
	return &v, nil
}

// Set stores the vehicle (expires after cacheTTL).
func (c *VehicleCache) Set(ctx context.Context, vehicle *domain.Vehicle) error {
	raw, err := json.Marshal(vehicle)
	if err != nil {
		return fmt.Errorf("vehicle cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(vehicle.ID), raw, cacheTTL).Err()
}

// Invalidate drops the cached entry after an update or delete.
func (c *VehicleCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *VehicleCache) key(id string) string {
	return fmt.Sprintf("vehicle:%s", id)
}
