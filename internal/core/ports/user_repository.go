package ports

import (
	"context"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

// UserRepository defines the interface for user credential persistence.
type UserRepository interface {
	// FindByEmail looks up a user by normalized email. Returns
	// domain.ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists a new user. Returns domain.ErrEmailTaken when the email
	// is already registered (enforced by a unique index at the store).
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
