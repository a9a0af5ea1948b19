package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/schema"
)

// Rule is the interface that all plan checks must implement.
type Rule interface {
	// ID returns a unique kebab-case identifier for this rule.
	ID() string
	// Check examines a single parsed statement and returns any findings.
	Check(stmt *pg_query.RawStmt, ctx *RuleContext) []Finding
}

// RuleContext provides the statement under analysis and what the plan has
// already done before it.
type RuleContext struct {
	Statement *schema.Statement
	Dialect   schema.Dialect
	StmtIndex int
	// Created holds the tables created by earlier statements.
	Created map[string]bool
	// MaxPhase is the latest phase reached by earlier statements; Seen is
	// false for the first statement.
	MaxPhase schema.Phase
	Seen     bool
}

// Registry holds a collection of rules.
type Registry struct {
	rules []Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a rule to the registry.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns all registered rules.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// TableName extracts a qualified table name from a RangeVar.
func TableName(rv *pg_query.RangeVar) string {
	if rv == nil {
		return "<unknown>"
	}

	if rv.Schemaname != "" {
		return rv.Schemaname + "." + rv.Relname
	}

	return rv.Relname
}

// PhaseOf returns the phase a parsed statement actually belongs to,
// judged by its node type rather than by where the plan placed it.
func PhaseOf(stmt *pg_query.RawStmt) (schema.Phase, bool) {
	if stmt == nil || stmt.Stmt == nil {
		return 0, false
	}

	switch stmt.Stmt.Node.(type) {
	case *pg_query.Node_CreateStmt:
		return schema.PhaseCreateTable, true
	case *pg_query.Node_IndexStmt:
		return schema.PhaseCreateIndex, true
	case *pg_query.Node_AlterTableStmt:
		return schema.PhaseAddColumn, true
	default:
		return 0, false
	}
}
