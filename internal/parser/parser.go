package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ErrNotSingleStatement is returned by ParseOne when the input holds zero
// or several statements.
var ErrNotSingleStatement = errors.New("expected exactly one SQL statement")

// ParseResult holds the parsed AST and original SQL.
type ParseResult struct {
	Stmts []*pg_query.RawStmt
	SQL   string
}

// Parse parses a SQL string with the PostgreSQL grammar and returns the AST.
// The DDL subset used by the schema plan (quoted identifiers, DATETIME and
// BLOB type names, table-level foreign keys) parses the same way for the
// SQLite dialect, since type names are not resolved at parse time.
// Returns an empty result (zero statements) for empty or whitespace-only input.
func Parse(sql string) (*ParseResult, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return &ParseResult{SQL: sql}, nil
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing SQL: %w", err)
	}

	return &ParseResult{
		Stmts: tree.Stmts,
		SQL:   sql,
	}, nil
}

// ParseOne parses sql and returns its only statement.
func ParseOne(sql string) (*pg_query.RawStmt, error) {
	result, err := Parse(sql)
	if err != nil {
		return nil, err
	}

	if len(result.Stmts) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNotSingleStatement, len(result.Stmts))
	}

	return result.Stmts[0], nil
}
