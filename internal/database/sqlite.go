package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite" // local SQLite driver

	"github.com/aqasim81/voice-schema/internal/schema"
)

const (
	listTablesSQL = `SELECT name FROM sqlite_master
WHERE type = 'table'
  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
  AND name NOT LIKE 'libsql\_%' ESCAPE '\'
  AND name NOT LIKE '\_litestream%' ESCAPE '\'
ORDER BY name`
	listColumnsSQL  = `SELECT name, type, "notnull" FROM pragma_table_info(?) ORDER BY cid`
	objectExistsSQL = `SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`
)

// sqlQuerier is satisfied by both *sql.Tx and *sql.Conn.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlSession serves libSQL remote and local SQLite through database/sql.
// After Commit, queries run on the pinned connection outside a transaction.
type sqlSession struct {
	db     *sql.DB
	conn   *sql.Conn
	tx     *sql.Tx
	closed bool
}

func openLibSQL(ctx context.Context, rawURL, authToken string) (Session, error) {
	connector, err := libsql.NewConnector(rawURL, libsql.WithAuthToken(authToken))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	return newSQLSession(ctx, sql.OpenDB(connector))
}

func openSQLite(ctx context.Context, rawURL string) (Session, error) {
	db, err := sql.Open("sqlite", rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	return newSQLSession(ctx, db)
}

func newSQLSession(ctx context.Context, db *sql.DB) (Session, error) {
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	fail := func(err error) (Session, error) {
		_ = conn.Close()
		_ = db.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		return fail(err)
	}

	// Cascades only fire with enforcement on, and it cannot change inside a transaction.
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fail(err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}

	return &sqlSession{db: db, conn: conn, tx: tx}, nil
}

func (s *sqlSession) Dialect() schema.Dialect { return schema.SQLite }

func (s *sqlSession) Placeholder(int) string { return "?" }

func (s *sqlSession) querier() (sqlQuerier, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	if s.tx != nil {
		return s.tx, nil
	}

	return s.conn, nil
}

func (s *sqlSession) Exec(ctx context.Context, query string, args ...any) error {
	q, err := s.querier()
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, query, args...)

	return err
}

func (s *sqlSession) QueryInt(ctx context.Context, query string, args ...any) (int64, error) {
	q, err := s.querier()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

func (s *sqlSession) ObjectExists(ctx context.Context, kind ObjectKind, name string) (bool, error) {
	n, err := s.QueryInt(ctx, objectExistsSQL, string(kind), name)
	if err != nil {
		return false, fmt.Errorf("checking %s %s: %w", kind, name, err)
	}

	return n > 0, nil
}

func (s *sqlSession) Tables(ctx context.Context) ([]string, error) {
	q, err := s.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

func (s *sqlSession) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	q, err := s.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, listColumnsSQL, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo

	for rows.Next() {
		var (
			c       ColumnInfo
			notNull int64
		)

		if err := rows.Scan(&c.Name, &c.Type, &notNull); err != nil {
			return nil, fmt.Errorf("scanning column of %s: %w", table, err)
		}

		c.NotNull = notNull != 0
		cols = append(cols, c)
	}

	return cols, rows.Err()
}

func (s *sqlSession) Commit(_ context.Context) error {
	if s.closed || s.tx == nil {
		return ErrSessionClosed
	}

	err := s.tx.Commit()
	s.tx = nil

	return err
}

func (s *sqlSession) Close(_ context.Context) error {
	if s.closed {
		return nil
	}

	s.closed = true

	if s.tx != nil {
		_ = s.tx.Rollback()
	}

	connErr := s.conn.Close()
	dbErr := s.db.Close()

	if connErr != nil {
		return connErr
	}

	return dbErr
}
