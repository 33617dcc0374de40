package domain

import "time"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Timestamps is embedded by every persisted entity. The persistence layer
// stamps both fields on insert and UpdatedAt on mutation.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// User models an authenticated actor in the fleet system. Users are never
// hard-deleted by the session subsystem; disabling an account flips Active.
type User struct {
	ID           string     `json:"id" bson:"_id"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password_hash"`
	Role         string     `json:"role" bson:"role"`
	Active       bool       `json:"active" bson:"active"`
	Timestamps   `bson:",inline"`
}

// RefreshToken is the persisted half of a token pair. A token is consumed by
// exactly one successful refresh (revoked=true) or ages out past ExpiresAt;
// consumed and expired tokens stay on record as session history.
type RefreshToken struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	Token      string    `json:"-" bson:"token"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
	Revoked    bool      `json:"revoked" bson:"revoked"`
	Timestamps `bson:",inline"`
}

// Usable reports whether the token may still be exchanged for a new pair.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}

// Security audit event types.
const (
	EventLogin    = "LOGIN"
	EventRefresh  = "REFRESH"
	EventRegister = "REGISTER"
)

// SecurityAuditLog is one append-only record of an authentication attempt,
// written for every terminal outcome of login, refresh, and register.
type SecurityAuditLog struct {
	ID         string `json:"id" bson:"_id"`
	EventType  string `json:"event_type" bson:"event_type"`
	Email      string `json:"email" bson:"email"`
	IPAddress  string `json:"ip_address" bson:"ip_address"`
	UserAgent  string `json:"user_agent" bson:"user_agent"`
	Success    bool   `json:"success" bson:"success"`
	Timestamps `bson:",inline"`
}

// ValidRole reports whether role is one of the known role tags.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
