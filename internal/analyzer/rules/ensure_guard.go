package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/analyzer"
)

// EnsureGuardRule detects CREATE TABLE / CREATE INDEX without IF NOT EXISTS.
// Without the guard a rerun reports an error for every existing object.
type EnsureGuardRule struct{}

// NewEnsureGuardRule creates a new EnsureGuardRule.
func NewEnsureGuardRule() *EnsureGuardRule { return &EnsureGuardRule{} }

// ID returns the rule identifier.
func (r *EnsureGuardRule) ID() string { return "ensure-missing-guard" }

// Check examines a statement for a missing existence guard.
func (r *EnsureGuardRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	var (
		table   string
		guarded bool
		kind    string
	)

	switch node := stmt.Stmt.Node.(type) {
	case *pg_query.Node_CreateStmt:
		table, guarded, kind = analyzer.TableName(node.CreateStmt.Relation), node.CreateStmt.IfNotExists, "CREATE TABLE"
	case *pg_query.Node_IndexStmt:
		table, guarded, kind = analyzer.TableName(node.IndexStmt.Relation), node.IndexStmt.IfNotExists, "CREATE INDEX"
	default:
		return nil
	}

	if guarded {
		return nil
	}

	return []analyzer.Finding{{
		Rule:       r.ID(),
		Severity:   analyzer.High,
		Table:      table,
		Message:    kind + " without IF NOT EXISTS is not safe to rerun",
		Suggestion: "Write " + kind + " IF NOT EXISTS so reruns are no-ops",
		StmtIndex:  ctx.StmtIndex,
	}}
}
