package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/transport-fleet/internal/core/domain"
	"github.com/fleetops/transport-fleet/internal/core/ports"
)

type stubUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	copy := cloneUser(user)
	r.byEmail[copy.Email] = copy
	r.byID[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) setActive(email string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[email].Active = active
}

type stubTokenRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.RefreshToken
	byValue map[string]*domain.RefreshToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{
		byID:    make(map[string]*domain.RefreshToken),
		byValue: make(map[string]*domain.RefreshToken),
	}
}

func (r *stubTokenRepo) FindByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byValue[token]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, domain.ErrRefreshTokenInvalid
}

func (r *stubTokenRepo) Insert(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *token
	r.byID[clone.ID] = &clone
	r.byValue[clone.Token] = &clone
	return nil
}

func (r *stubTokenRepo) Rotate(_ context.Context, oldID string, next *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[oldID]
	if !ok || old.Revoked {
		return domain.ErrRefreshTokenExpired
	}
	old.Revoked = true
	clone := *next
	r.byID[clone.ID] = &clone
	r.byValue[clone.Token] = &clone
	return nil
}

func (r *stubTokenRepo) revokedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.byID {
		if t.Revoked {
			n++
		}
	}
	return n
}

type stubAuditRepo struct {
	mu      sync.Mutex
	records []domain.SecurityAuditLog
	failAll bool
}

func (r *stubAuditRepo) Record(_ context.Context, entry *domain.SecurityAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.New("audit store unavailable")
	}
	r.records = append(r.records, *entry)
	return nil
}

func (r *stubAuditRepo) all() []domain.SecurityAuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SecurityAuditLog, len(r.records))
	copy(out, r.records)
	return out
}

func (r *stubAuditRepo) last(t *testing.T) domain.SecurityAuditLog {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		t.Fatalf("no audit records written")
	}
	return r.records[len(r.records)-1]
}

type authEnv struct {
	svc    *AuthService
	users  *stubUserRepo
	tokens *stubTokenRepo
	audit  *stubAuditRepo
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	issuer, err := NewTokenIssuer("test-signing-key", "fleet-test", "fleet-clients", 10*time.Minute, 2*time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	audit := &stubAuditRepo{}
	return &authEnv{
		svc:    NewAuthService(users, tokens, audit, issuer, nil, zerolog.Nop()),
		users:  users,
		tokens: tokens,
		audit:  audit,
	}
}

var testClient = ports.ClientInfo{IP: "203.0.113.7", UserAgent: "fleet-test/1.0"}

func mustRegister(t *testing.T, env *authEnv, email, password string) *domain.User {
	t.Helper()
	user, err := env.svc.Register(context.Background(), email, password, domain.RoleUser, testClient)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	env := newAuthEnv(t)

	user := mustRegister(t, env, "alice@example.com", "s3cret-password")
	if !user.Active {
		t.Fatalf("expected new user to be active")
	}
	if user.PasswordHash == "s3cret-password" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-password")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	rec := env.audit.last(t)
	if rec.EventType != domain.EventRegister || !rec.Success {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
	if rec.IPAddress != testClient.IP || rec.UserAgent != testClient.UserAgent {
		t.Fatalf("client info not recorded: %+v", rec)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "bob@example.com", "first-password")

	_, err := env.svc.Register(context.Background(), "bob@example.com", "other-password", domain.RoleUser, testClient)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	records := env.audit.all()
	if len(records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(records))
	}
	if records[1].Success {
		t.Fatalf("duplicate registration audited as success")
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "  Carol@Example.COM ", "carol-password")

	if _, err := env.svc.Register(context.Background(), "carol@example.com", "x-password", domain.RoleUser, testClient); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for differently-cased duplicate, got %v", err)
	}

	if _, err := env.svc.Login(context.Background(), "CAROL@example.com", "carol-password", testClient); err != nil {
		t.Fatalf("login with differently-cased email failed: %v", err)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	env := newAuthEnv(t)
	if _, err := env.svc.Register(context.Background(), "dave@example.com", "dave-password", "Superuser", testClient); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "alice@example.com", "s3cret-password")

	pair, err := env.svc.Login(context.Background(), "alice@example.com", "s3cret-password", testClient)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty token pair: %+v", pair)
	}

	if _, err := env.tokens.FindByToken(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("refresh token not persisted: %v", err)
	}

	rec := env.audit.last(t)
	if rec.EventType != domain.EventLogin || !rec.Success {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "alice@example.com", "s3cret-password")
	before := len(env.audit.all())

	_, err := env.svc.Login(context.Background(), "alice@example.com", "wrong-password", testClient)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	records := env.audit.all()
	if len(records) != before+1 {
		t.Fatalf("expected exactly one new audit record, got %d", len(records)-before)
	}
	if records[len(records)-1].Success {
		t.Fatalf("failed login audited as success")
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	env := newAuthEnv(t)
	_, err := env.svc.Login(context.Background(), "ghost@example.com", "whatever-pass", testClient)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	rec := env.audit.last(t)
	if rec.EventType != domain.EventLogin || rec.Success {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "alice@example.com", "s3cret-password")
	env.users.setActive("alice@example.com", false)

	_, err := env.svc.Login(context.Background(), "alice@example.com", "s3cret-password", testClient)
	if !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	env := newAuthEnv(t)
	_, err := env.svc.Refresh(context.Background(), "no-such-token", testClient)
	if !errors.Is(err, domain.ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
	}
	rec := env.audit.last(t)
	if rec.Email != unknownSubject || rec.Success {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
}

func TestAuthService_Refresh_RotatesAndRejectsReplay(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "alice@example.com", "s3cret-password")
	pair, err := env.svc.Login(context.Background(), "alice@example.com", "s3cret-password", testClient)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	next, err := env.svc.Refresh(context.Background(), pair.RefreshToken, testClient)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("expected a new refresh token value")
	}

	// Replay of the consumed token must fail.
	if _, err := env.svc.Refresh(context.Background(), pair.RefreshToken, testClient); !errors.Is(err, domain.ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired on replay, got %v", err)
	}

	// The new token is still usable.
	if _, err := env.svc.Refresh(context.Background(), next.RefreshToken, testClient); err != nil {
		t.Fatalf("refresh with rotated token failed: %v", err)
	}
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	env := newAuthEnv(t)
	user := mustRegister(t, env, "alice@example.com", "s3cret-password")

	stale := &domain.RefreshToken{
		ID:        "stale-token-id",
		UserID:    user.ID,
		Token:     "stale-token-value",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := env.tokens.Insert(context.Background(), stale); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := env.svc.Refresh(context.Background(), "stale-token-value", testClient); !errors.Is(err, domain.ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", err)
	}
}

func TestAuthService_Refresh_DisabledAccountLeavesTokenUntouched(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "alice@example.com", "s3cret-password")
	pair, err := env.svc.Login(context.Background(), "alice@example.com", "s3cret-password", testClient)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	env.users.setActive("alice@example.com", false)

	if _, err := env.svc.Refresh(context.Background(), pair.RefreshToken, testClient); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}

	token, err := env.tokens.FindByToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("token lookup: %v", err)
	}
	if token.Revoked {
		t.Fatalf("token must not be revoked by a forbidden refresh")
	}
}

func TestAuthService_Refresh_ConcurrentSingleWinner(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "alice@example.com", "s3cret-password")
	pair, err := env.svc.Login(context.Background(), "alice@example.com", "s3cret-password", testClient)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := env.svc.Refresh(context.Background(), pair.RefreshToken, testClient)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success, fail := 0, 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, domain.ErrRefreshTokenExpired):
			fail++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d refresh failures, got %d", n-1, fail)
	}
	if got := env.tokens.revokedCount(); got != 1 {
		t.Fatalf("expected exactly one revoked token, got %d", got)
	}
}

func TestAuthService_AuditFailureDoesNotFailFlow(t *testing.T) {
	env := newAuthEnv(t)
	mustRegister(t, env, "alice@example.com", "s3cret-password")
	env.audit.failAll = true

	if _, err := env.svc.Login(context.Background(), "alice@example.com", "s3cret-password", testClient); err != nil {
		t.Fatalf("login must survive an audit store outage: %v", err)
	}
}

func TestAuthService_EndToEnd(t *testing.T) {
	env := newAuthEnv(t)

	if _, err := env.svc.Register(context.Background(), "alice@example.com", "s3cret-password", domain.RoleAdmin, testClient); err != nil {
		t.Fatalf("register: %v", err)
	}

	pair, err := env.svc.Login(context.Background(), "alice@example.com", "s3cret-password", testClient)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := env.svc.Refresh(context.Background(), pair.RefreshToken, testClient)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("rotation must produce a different refresh token")
	}

	if _, err := env.svc.Refresh(context.Background(), pair.RefreshToken, testClient); !errors.Is(err, domain.ErrRefreshTokenExpired) {
		t.Fatalf("expected replay of old token to fail, got %v", err)
	}
}
