package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/transport-fleet/internal/api/metrics"
	"github.com/fleetops/transport-fleet/internal/core/domain"
	"github.com/fleetops/transport-fleet/internal/core/ports"
)

// unknownSubject is recorded when a refresh attempt cannot be tied to a user.
const unknownSubject = "UNKNOWN"

// AuthService coordinates credential checks, token issuance, and audit
// logging for the three session flows. Every terminal outcome, success or
// failure, writes exactly one audit record before the caller sees a result.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.RefreshTokenRepository
	audit  ports.SecurityAuditRepository
	issuer *TokenIssuer
	sink   ports.SecurityEventSink
	log    zerolog.Logger
}

// NewAuthService wires the session orchestrator. sink may be nil when no
// secondary event fan-out is configured.
func NewAuthService(
	users ports.UserRepository,
	tokens ports.RefreshTokenRepository,
	audit ports.SecurityAuditRepository,
	issuer *TokenIssuer,
	sink ports.SecurityEventSink,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		audit:  audit,
		issuer: issuer,
		sink:   sink,
		log:    log,
	}
}

// Login verifies credentials and returns a fresh token pair. Unknown emails
// and wrong passwords are indistinguishable to the caller; disabled accounts
// are reported separately.
func (s *AuthService) Login(ctx context.Context, email, password string, client ports.ClientInfo) (*ports.TokenPair, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.writeAudit(ctx, domain.EventLogin, email, client, false)
		s.log.Warn().Str("email", email).Str("ip", client.IP).Msg("login failed: unknown email")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		s.writeAudit(ctx, domain.EventLogin, email, client, false)
		return nil, fmt.Errorf("login: find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.writeAudit(ctx, domain.EventLogin, email, client, false)
		s.log.Warn().Str("email", email).Str("ip", client.IP).Msg("login failed: invalid password")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		s.writeAudit(ctx, domain.EventLogin, email, client, false)
		s.log.Warn().Str("email", email).Str("ip", client.IP).Msg("login blocked: account disabled")
		return nil, domain.ErrAccountDisabled
	}

	access, err := s.issuer.AccessToken(user)
	if err != nil {
		s.writeAudit(ctx, domain.EventLogin, email, client, false)
		return nil, fmt.Errorf("login: %w", err)
	}
	refresh, err := s.issuer.RefreshToken(user.ID)
	if err != nil {
		s.writeAudit(ctx, domain.EventLogin, email, client, false)
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.tokens.Insert(ctx, refresh); err != nil {
		s.writeAudit(ctx, domain.EventLogin, email, client, false)
		return nil, fmt.Errorf("login: store refresh token: %w", err)
	}

	s.writeAudit(ctx, domain.EventLogin, email, client, true)
	s.log.Info().Str("email", email).Str("ip", client.IP).Msg("login success")

	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh.Token}, nil
}

// Refresh runs the rotation state machine: the presented token is consumed
// (marked revoked) and a new pair is issued in one atomic step. A token that
// is absent, already revoked, or past its expiry never yields new tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ports.ClientInfo) (*ports.TokenPair, error) {
	token, err := s.tokens.FindByToken(ctx, refreshToken)
	if errors.Is(err, domain.ErrRefreshTokenInvalid) {
		s.writeAudit(ctx, domain.EventRefresh, unknownSubject, client, false)
		s.log.Warn().Str("ip", client.IP).Msg("refresh failed: unknown token")
		return nil, domain.ErrRefreshTokenInvalid
	}
	if err != nil {
		s.writeAudit(ctx, domain.EventRefresh, unknownSubject, client, false)
		return nil, fmt.Errorf("refresh: find token: %w", err)
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Owner is gone (cascade delete); the token is worthless.
		s.writeAudit(ctx, domain.EventRefresh, unknownSubject, client, false)
		return nil, domain.ErrRefreshTokenInvalid
	}
	if err != nil {
		s.writeAudit(ctx, domain.EventRefresh, unknownSubject, client, false)
		return nil, fmt.Errorf("refresh: find owner: %w", err)
	}

	if !token.Usable(time.Now().UTC()) {
		s.writeAudit(ctx, domain.EventRefresh, user.Email, client, false)
		s.log.Warn().Str("user_id", user.ID).Str("ip", client.IP).Msg("refresh failed: token expired or revoked")
		return nil, domain.ErrRefreshTokenExpired
	}

	if !user.Active {
		// The token is left untouched; a disabled account invalidates it
		// operationally without changing its state.
		s.writeAudit(ctx, domain.EventRefresh, user.Email, client, false)
		s.log.Warn().Str("user_id", user.ID).Str("ip", client.IP).Msg("refresh blocked: account disabled")
		return nil, domain.ErrAccountDisabled
	}

	access, err := s.issuer.AccessToken(user)
	if err != nil {
		s.writeAudit(ctx, domain.EventRefresh, user.Email, client, false)
		return nil, fmt.Errorf("refresh: %w", err)
	}
	next, err := s.issuer.RefreshToken(user.ID)
	if err != nil {
		s.writeAudit(ctx, domain.EventRefresh, user.Email, client, false)
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if err := s.tokens.Rotate(ctx, token.ID, next); err != nil {
		s.writeAudit(ctx, domain.EventRefresh, user.Email, client, false)
		if errors.Is(err, domain.ErrRefreshTokenExpired) {
			// Lost the race: another caller consumed this token first.
			s.log.Warn().Str("user_id", user.ID).Str("ip", client.IP).Msg("refresh failed: token already consumed")
			return nil, err
		}
		return nil, fmt.Errorf("refresh: rotate token: %w", err)
	}

	s.writeAudit(ctx, domain.EventRefresh, user.Email, client, true)
	s.log.Info().Str("user_id", user.ID).Str("ip", client.IP).Msg("refresh success")

	return &ports.TokenPair{AccessToken: access, RefreshToken: next.Token}, nil
}

// Register creates a new active user with a hashed password. The unique-email
// constraint lives at the store; the pre-check here only produces the nicer
// failure path, the index catches the race.
func (s *AuthService) Register(ctx context.Context, email, password, role string, client ports.ClientInfo) (*domain.User, error) {
	email = normalizeEmail(email)

	if email == "" || password == "" || !domain.ValidRole(role) {
		s.writeAudit(ctx, domain.EventRegister, email, client, false)
		return nil, domain.ErrValidation
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		s.writeAudit(ctx, domain.EventRegister, email, client, false)
		s.log.Warn().Str("email", email).Str("ip", client.IP).Msg("registration failed: duplicate email")
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		s.writeAudit(ctx, domain.EventRegister, email, client, false)
		return nil, fmt.Errorf("register: find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.writeAudit(ctx, domain.EventRegister, email, client, false)
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.writeAudit(ctx, domain.EventRegister, email, client, false)
		if errors.Is(err, domain.ErrEmailTaken) {
			s.log.Warn().Str("email", email).Str("ip", client.IP).Msg("registration failed: duplicate email")
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.writeAudit(ctx, domain.EventRegister, email, client, true)
	s.log.Info().Str("email", email).Str("ip", client.IP).Msg("registration success")

	return created, nil
}

// writeAudit appends one security event for a terminal flow outcome. A failed
// write does not fail the owning flow: the failure is logged and counted, and
// the flow's own result stands.
func (s *AuthService) writeAudit(ctx context.Context, event, email string, client ports.ClientInfo, success bool) {
	entry := domain.SecurityAuditLog{
		ID:        uuid.NewString(),
		EventType: event,
		Email:     email,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		Success:   success,
	}

	if err := s.audit.Record(ctx, &entry); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		s.log.Error().Err(err).
			Str("event", event).
			Str("email", email).
			Msg("audit write failed")
	}

	if s.sink != nil {
		s.sink.Notify(entry)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
