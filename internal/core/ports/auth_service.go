package ports

import (
	"context"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

// ClientInfo carries the request metadata recorded with every audit entry.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string, client ClientInfo) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error)
	Register(ctx context.Context, email, password, role string, client ClientInfo) (*domain.User, error)
}
