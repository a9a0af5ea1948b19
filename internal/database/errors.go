package database

import "errors"

// ErrInvalidDatabaseURL indicates the provided database URL could not be parsed.
var ErrInvalidDatabaseURL = errors.New("invalid database URL")

// ErrConnectionFailed indicates a connection to the database could not be established.
var ErrConnectionFailed = errors.New("database connection failed")

// ErrUnsupportedScheme indicates the URL scheme maps to no known driver.
var ErrUnsupportedScheme = errors.New("unsupported database URL scheme")

// ErrSessionClosed is returned when a session is used after Close, or
// committed twice.
var ErrSessionClosed = errors.New("session already closed")
