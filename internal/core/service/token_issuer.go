package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

const (
	defaultAccessTTL  = 10 * time.Minute
	defaultRefreshTTL = 2 * time.Hour

	// refreshTokenBytes is the entropy of the opaque refresh token value.
	refreshTokenBytes = 64
)

// TokenIssuer produces signed access tokens and random refresh tokens. It is
// stateless and safe for concurrent use; the signing key is loaded once at
// construction and never read from ambient state per call.
type TokenIssuer struct {
	key        []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds a TokenIssuer. An empty signing key is a
// configuration error: callers must treat it as fatal at startup.
func NewTokenIssuer(key, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if key == "" {
		return nil, errors.New("token issuer: signing key is empty")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{
		key:        []byte(key),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessToken builds a compact HS256 token carrying the user's identity and
// role. Access tokens are short-lived and never persisted.
func (i *TokenIssuer) AccessToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iss":   i.issuer,
		"aud":   i.audience,
		"iat":   now.Unix(),
		"exp":   now.Add(i.accessTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// RefreshToken generates a new unpersisted refresh token for userID.
// Persistence is the caller's responsibility so that the token can be written
// together with other mutations as one atomic unit.
func (i *TokenIssuer) RefreshToken(userID string) (*domain.RefreshToken, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("refresh token entropy: %w", err)
	}

	return &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     base64.RawURLEncoding.EncodeToString(b),
		ExpiresAt: time.Now().UTC().Add(i.refreshTTL),
		Revoked:   false,
	}, nil
}

// AccessTokenTTL exposes the configured access token lifetime.
func (i *TokenIssuer) AccessTokenTTL() time.Duration { return i.accessTTL }
