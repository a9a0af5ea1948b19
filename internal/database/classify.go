package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Outcome classifies the result of one DDL statement.
type Outcome int

const (
	// Applied means the statement succeeded.
	Applied Outcome = iota
	// AlreadyExists means the table or index was already there.
	AlreadyExists
	// DuplicateColumn means ADD COLUMN hit a column that already exists.
	DuplicateColumn
	// Failed is any other error.
	Failed
)

// String returns the outcome label used in progress output.
func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case AlreadyExists:
		return "exists"
	case DuplicateColumn:
		return "duplicate-column"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// PostgreSQL SQLSTATE codes for expected conflicts.
const (
	codeDuplicateColumn = "42701"
	codeDuplicateTable  = "42P07"
	codeDuplicateObject = "42710"
)

// SQLite and libSQL report these conditions as a generic SQLITE_ERROR, so
// the message text is the only signal.
const (
	msgDuplicateColumn = "duplicate column name"
	msgAlreadyExists   = "already exists"
)

// Classify maps a statement error to an Outcome. A nil error is Applied.
func Classify(err error) Outcome {
	if err == nil {
		return Applied
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeDuplicateColumn:
			return DuplicateColumn
		case codeDuplicateTable, codeDuplicateObject:
			return AlreadyExists
		default:
			return Failed
		}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, msgDuplicateColumn):
		return DuplicateColumn
	case strings.Contains(msg, msgAlreadyExists):
		return AlreadyExists
	default:
		return Failed
	}
}
