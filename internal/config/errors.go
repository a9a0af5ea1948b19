package config

import "errors"

// Sentinel errors for configuration validation.
var (
	ErrDatabaseURLRequired = errors.New("TURSO_DATABASE_URL is required")
	ErrAuthTokenRequired   = errors.New("TURSO_AUTH_TOKEN is required")
)
