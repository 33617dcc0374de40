package domain

import "errors"

// Business-rule failures constructed deliberately by the services. Everything
// that is not one of these sentinels is treated as an operational failure and
// rendered as a 500 at the API boundary.
var (
	ErrValidation          = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired or revoked")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrDuplicateVehicle    = errors.New("vehicle already exists")
)
