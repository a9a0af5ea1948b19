package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/analyzer"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// AdditiveShapeRule checks that every additive-phase statement adds exactly
// one column, so a duplicate-column error can only mean that column exists.
type AdditiveShapeRule struct{}

// NewAdditiveShapeRule creates a new AdditiveShapeRule.
func NewAdditiveShapeRule() *AdditiveShapeRule { return &AdditiveShapeRule{} }

// ID returns the rule identifier.
func (r *AdditiveShapeRule) ID() string { return "additive-shape" }

// Check examines an additive-phase statement.
func (r *AdditiveShapeRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	if ctx.Statement == nil || ctx.Statement.Phase != schema.PhaseAddColumn {
		return nil
	}

	node, ok := stmt.Stmt.Node.(*pg_query.Node_AlterTableStmt)
	if !ok {
		return []analyzer.Finding{r.finding(ctx, ctx.Statement.Table,
			"additive statement is not an ALTER TABLE",
			"Keep only ALTER TABLE ... ADD COLUMN statements in the additive list")}
	}

	alt := node.AlterTableStmt
	table := analyzer.TableName(alt.Relation)

	if len(alt.Cmds) != 1 {
		return []analyzer.Finding{r.finding(ctx, table,
			"additive statement holds several ALTER TABLE commands",
			"Split into one ADD COLUMN per statement")}
	}

	cmd, ok := alt.Cmds[0].Node.(*pg_query.Node_AlterTableCmd)
	if !ok || cmd.AlterTableCmd.Subtype != pg_query.AlterTableType_AT_AddColumn {
		return []analyzer.Finding{r.finding(ctx, table,
			"additive statement does something other than ADD COLUMN",
			"Additive migrations may only add nullable or defaulted columns")}
	}

	if cmd.AlterTableCmd.MissingOk && ctx.Dialect == schema.SQLite {
		return []analyzer.Finding{r.finding(ctx, table,
			"ADD COLUMN IF NOT EXISTS is not supported by SQLite",
			"Drop the guard; duplicate-column errors are treated as no-ops")}
	}

	return nil
}

func (r *AdditiveShapeRule) finding(ctx *analyzer.RuleContext, table, msg, fix string) analyzer.Finding {
	return analyzer.Finding{
		Rule:       r.ID(),
		Severity:   analyzer.High,
		Table:      table,
		Message:    msg,
		Suggestion: fix,
		StmtIndex:  ctx.StmtIndex,
	}
}
