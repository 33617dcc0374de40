package ports

import (
	"context"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

// RefreshTokenRepository persists refresh tokens and owns the atomic rotation
// step. Tokens are never deleted, only marked revoked or left to expire.
type RefreshTokenRepository interface {
	// FindByToken looks up a token by its opaque value. Returns
	// domain.ErrRefreshTokenInvalid when no token matches.
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Insert(ctx context.Context, token *domain.RefreshToken) error
	// Rotate marks the token identified by oldID as revoked and inserts next
	// as one atomic unit. The revocation is conditional on the token still
	// being unrevoked: when another caller already consumed it, Rotate
	// performs no writes and returns domain.ErrRefreshTokenExpired.
	Rotate(ctx context.Context, oldID string, next *domain.RefreshToken) error
}
