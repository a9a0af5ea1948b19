package database

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aqasim81/voice-schema/internal/schema"
)

// Driver identifies how a database URL is reached.
type Driver int

const (
	// DriverLibSQL is a remote libSQL / Turso server.
	DriverLibSQL Driver = iota + 1
	// DriverSQLite is a local SQLite file or in-memory database.
	DriverSQLite
	// DriverPostgres is a PostgreSQL server.
	DriverPostgres
)

// String returns the driver name.
func (d Driver) String() string {
	switch d {
	case DriverLibSQL:
		return "libsql"
	case DriverSQLite:
		return "sqlite"
	case DriverPostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// Dialect returns the SQL dialect statements must be rendered in.
func (d Driver) Dialect() schema.Dialect {
	if d == DriverPostgres {
		return schema.Postgres
	}

	return schema.SQLite
}

// NeedsAuthToken reports whether connecting requires a bearer token.
func (d Driver) NeedsAuthToken() bool {
	return d == DriverLibSQL
}

// DetectDriver picks the driver from the URL scheme.
func DetectDriver(rawURL string) (Driver, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDatabaseURL)
	}

	if trimmed == ":memory:" || strings.HasPrefix(trimmed, "file:") {
		return DriverSQLite, nil
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "libsql", "https", "http", "wss", "ws":
		if u.Host == "" {
			return 0, fmt.Errorf("%w: missing host", ErrInvalidDatabaseURL)
		}

		return DriverLibSQL, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "":
		return 0, fmt.Errorf("%w: missing scheme", ErrInvalidDatabaseURL)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}
