package database

import (
	"context"
	"fmt"
	"time"

	"github.com/aqasim81/voice-schema/internal/schema"
)

// ObjectKind is the catalog type of a schema object.
type ObjectKind string

const (
	// KindTable is a table.
	KindTable ObjectKind = "table"
	// KindIndex is an index.
	KindIndex ObjectKind = "index"
)

// ColumnInfo is one column as reported by the live catalog.
type ColumnInfo struct {
	Name    string
	Type    string
	NotNull bool
}

// Session is one pinned connection with one open transaction. Every
// statement and catalog query of a run goes through it, and Close must be
// called on every path once Open has succeeded.
type Session interface {
	Dialect() schema.Dialect
	// Exec runs one statement. A failed statement leaves the session usable.
	Exec(ctx context.Context, sql string, args ...any) error
	// QueryInt runs a query returning a single integer, e.g. a COUNT(*).
	QueryInt(ctx context.Context, sql string, args ...any) (int64, error)
	ObjectExists(ctx context.Context, kind ObjectKind, name string) (bool, error)
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
	// Placeholder returns the bind parameter marker for position n (1-based).
	Placeholder(n int) string
	Commit(ctx context.Context) error
	// Close rolls back if not committed and releases the connection.
	Close(ctx context.Context) error
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	authToken        string
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

// WithAuthToken sets the bearer token for remote libSQL servers.
func WithAuthToken(token string) Option {
	return func(o *openOptions) { o.authToken = token }
}

// WithLockTimeout bounds lock waits for PostgreSQL sessions. Zero disables it.
func WithLockTimeout(d time.Duration) Option {
	return func(o *openOptions) { o.lockTimeout = d }
}

// WithStatementTimeout has PostgreSQL sessions abort statements that run
// longer than d on the server side. Zero disables it.
func WithStatementTimeout(d time.Duration) Option {
	return func(o *openOptions) { o.statementTimeout = d }
}

// Open connects to the database named by rawURL, pins one connection,
// pings it and begins the session transaction.
func Open(ctx context.Context, rawURL string, opts ...Option) (Session, error) {
	o := &openOptions{}
	for _, opt := range opts {
		opt(o)
	}

	drv, err := DetectDriver(rawURL)
	if err != nil {
		return nil, err
	}

	switch drv {
	case DriverLibSQL:
		return openLibSQL(ctx, rawURL, o.authToken)
	case DriverSQLite:
		return openSQLite(ctx, rawURL)
	case DriverPostgres:
		return openPostgres(ctx, rawURL, o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, drv)
	}
}
