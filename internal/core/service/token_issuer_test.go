package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-signing-key", "fleet-test", "fleet-clients", 10*time.Minute, 2*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return issuer
}

func TestNewTokenIssuer_EmptyKey(t *testing.T) {
	if _, err := NewTokenIssuer("", "iss", "aud", 0, 0); err == nil {
		t.Fatalf("expected error for empty signing key")
	}
}

func TestTokenIssuer_AccessTokenClaims(t *testing.T) {
	issuer := testIssuer(t)
	user := &domain.User{ID: "user-42", Email: "alice@example.com", Role: domain.RoleAdmin, Active: true}

	before := time.Now()
	signed, err := issuer.AccessToken(user)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-signing-key"), nil
	}, jwt.WithIssuer("fleet-test"), jwt.WithAudience("fleet-clients"))
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}

	if claims["sub"] != "user-42" {
		t.Fatalf("unexpected sub claim: %v", claims["sub"])
	}
	if claims["email"] != "alice@example.com" {
		t.Fatalf("unexpected email claim: %v", claims["email"])
	}
	if claims["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected role claim: %v", claims["role"])
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("exp claim: %v", err)
	}
	lifetime := exp.Sub(before)
	if lifetime < 9*time.Minute || lifetime > 11*time.Minute {
		t.Fatalf("expected expiry ~10m out, got %s", lifetime)
	}
}

func TestTokenIssuer_RefreshToken(t *testing.T) {
	issuer := testIssuer(t)

	first, err := issuer.RefreshToken("user-42")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	second, err := issuer.RefreshToken("user-42")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}

	if first.Token == second.Token {
		t.Fatalf("two refresh tokens share the same value")
	}
	if first.ID == "" || first.UserID != "user-42" {
		t.Fatalf("unexpected token fields: %+v", first)
	}
	if first.Revoked {
		t.Fatalf("fresh token must not be revoked")
	}
	// 64 random bytes, base64 without padding.
	if len(first.Token) != 86 {
		t.Fatalf("unexpected token length %d", len(first.Token))
	}

	ttl := time.Until(first.ExpiresAt)
	if ttl < time.Hour+59*time.Minute || ttl > 2*time.Hour+time.Minute {
		t.Fatalf("expected expiry ~2h out, got %s", ttl)
	}
	if !first.Usable(time.Now().UTC()) {
		t.Fatalf("fresh token must be usable")
	}
}
