package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgconn/ctxwatch"

	"github.com/aqasim81/voice-schema/internal/schema"
)

const (
	pgListTablesSQL = `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
ORDER BY table_name`
	pgListColumnsSQL = `SELECT column_name, data_type, is_nullable = 'NO'
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`
	pgObjectExistsSQL = `SELECT EXISTS (
    SELECT 1 FROM pg_class c
    JOIN pg_namespace n ON n.oid = c.relnamespace
    WHERE n.nspname = current_schema() AND c.relname = $1 AND c.relkind = $2
)`
)

// cancelDeadlineDelay is how long a cancelled query may wait for the server
// to honour the cancel request before the connection deadline is forced.
const cancelDeadlineDelay = 5 * time.Second

// relkinds maps object kinds to pg_class.relkind.
var relkinds = map[ObjectKind]string{ //nolint:gochecknoglobals // read-only lookup table
	KindTable: "r",
	KindIndex: "i",
}

// pgQuerier is satisfied by both pgx.Tx and *pgx.Conn.
type pgQuerier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pgSession runs every statement under its own savepoint so one failure
// does not abort the session transaction.
type pgSession struct {
	conn   *pgx.Conn
	tx     pgx.Tx
	closed bool
}

// pgConfig parses rawURL. Context cancellation sends a cancel request to
// the server instead of closing the connection, so the session transaction
// outlives a timed-out statement.
func pgConfig(rawURL string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	cfg.BuildContextWatcherHandler = func(pc *pgconn.PgConn) ctxwatch.Handler {
		return &pgconn.CancelRequestContextWatcherHandler{Conn: pc, DeadlineDelay: cancelDeadlineDelay}
	}

	return cfg, nil
}

func openPostgres(ctx context.Context, rawURL string, o *openOptions) (Session, error) {
	cfg, err := pgConfig(rawURL)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	fail := func(err error) (Session, error) {
		_ = conn.Close(context.WithoutCancel(ctx))

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := conn.Ping(ctx); err != nil {
		return fail(err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fail(err)
	}

	if o.lockTimeout > 0 {
		if err := SetLockTimeout(ctx, tx, o.lockTimeout); err != nil {
			return fail(err)
		}
	}

	if o.statementTimeout > 0 {
		if err := SetStatementTimeout(ctx, tx, o.statementTimeout); err != nil {
			return fail(err)
		}
	}

	return &pgSession{conn: conn, tx: tx}, nil
}

// SetLockTimeout sets lock_timeout for the rest of the transaction, so a
// DDL statement fails fast instead of queueing behind application locks.
func SetLockTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	sql := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("setting lock_timeout: %w", err)
	}

	return nil
}

// SetStatementTimeout sets statement_timeout for the rest of the
// transaction. The server aborts an overlong statement and the savepoint
// rollback keeps the session usable.
func SetStatementTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	sql := fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", timeout.Milliseconds())

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("setting statement_timeout: %w", err)
	}

	return nil
}

func (s *pgSession) Dialect() schema.Dialect { return schema.Postgres }

func (s *pgSession) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (s *pgSession) querier() (pgQuerier, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	if s.tx != nil {
		return s.tx, nil
	}

	return s.conn, nil
}

func (s *pgSession) Exec(ctx context.Context, sql string, args ...any) error {
	q, err := s.querier()
	if err != nil {
		return err
	}

	// Begin on a transaction creates a savepoint; on the bare connection
	// it opens a short transaction.
	sp, err := q.Begin(ctx)
	if err != nil {
		return err
	}

	if _, err := sp.Exec(ctx, sql, args...); err != nil {
		if rbErr := sp.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return errors.Join(err, rbErr)
		}

		return err
	}

	return sp.Commit(ctx)
}

func (s *pgSession) QueryInt(ctx context.Context, sql string, args ...any) (int64, error) {
	q, err := s.querier()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

func (s *pgSession) ObjectExists(ctx context.Context, kind ObjectKind, name string) (bool, error) {
	q, err := s.querier()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := q.QueryRow(ctx, pgObjectExistsSQL, name, relkinds[kind]).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking %s %s: %w", kind, name, err)
	}

	return exists, nil
}

func (s *pgSession) Tables(ctx context.Context) ([]string, error) {
	q, err := s.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, pgListTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	return names, nil
}

func (s *pgSession) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	q, err := s.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, pgListColumnsSQL, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}

	cols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ColumnInfo, error) {
		var c ColumnInfo
		err := row.Scan(&c.Name, &c.Type, &c.NotNull)

		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}

	return cols, nil
}

func (s *pgSession) Commit(ctx context.Context) error {
	if s.closed || s.tx == nil {
		return ErrSessionClosed
	}

	err := s.tx.Commit(ctx)
	s.tx = nil

	return err
}

func (s *pgSession) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}

	s.closed = true
	ctx = context.WithoutCancel(ctx)

	if s.tx != nil {
		// Rollback on a committed or failed tx returns ErrTxClosed.
		_ = s.tx.Rollback(ctx)
	}

	return s.conn.Close(ctx)
}
