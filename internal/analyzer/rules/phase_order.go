package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/analyzer"
)

// PhaseOrderRule detects a statement whose kind belongs to an earlier phase
// than a statement before it, e.g. CREATE TABLE after CREATE INDEX.
type PhaseOrderRule struct{}

// NewPhaseOrderRule creates a new PhaseOrderRule.
func NewPhaseOrderRule() *PhaseOrderRule { return &PhaseOrderRule{} }

// ID returns the rule identifier.
func (r *PhaseOrderRule) ID() string { return "phase-order" }

// Check compares the statement kind with the latest phase reached so far.
func (r *PhaseOrderRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	phase, ok := analyzer.PhaseOf(stmt)
	if !ok || !ctx.Seen || phase >= ctx.MaxPhase {
		return nil
	}

	table := ""
	if ctx.Statement != nil {
		table = ctx.Statement.Table
	}

	return []analyzer.Finding{{
		Rule:       r.ID(),
		Severity:   analyzer.Medium,
		Table:      table,
		Message:    phase.String() + " statement appears after " + ctx.MaxPhase.String() + " statements",
		Suggestion: "Order the plan as tables, then indexes, then added columns",
		StmtIndex:  ctx.StmtIndex,
	}}
}
