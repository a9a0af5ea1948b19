package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/analyzer"
)

// AddColumnNotNullRule detects ADD COLUMN ... NOT NULL without a DEFAULT.
// SQLite rejects it outright and PostgreSQL rejects it once the table has rows.
type AddColumnNotNullRule struct{}

// NewAddColumnNotNullRule creates a new AddColumnNotNullRule.
func NewAddColumnNotNullRule() *AddColumnNotNullRule { return &AddColumnNotNullRule{} }

// ID returns the rule identifier.
func (r *AddColumnNotNullRule) ID() string { return "add-column-not-null-without-default" }

// Check examines a statement for NOT NULL columns added without DEFAULT.
func (r *AddColumnNotNullRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	node, ok := stmt.Stmt.Node.(*pg_query.Node_AlterTableStmt)
	if !ok {
		return nil
	}

	alt := node.AlterTableStmt
	var findings []analyzer.Finding

	for _, cmdNode := range alt.Cmds {
		cmd, ok := cmdNode.Node.(*pg_query.Node_AlterTableCmd)
		if !ok || cmd.AlterTableCmd.Subtype != pg_query.AlterTableType_AT_AddColumn {
			continue
		}

		if cmd.AlterTableCmd.Def == nil {
			continue
		}

		colDefNode, ok := cmd.AlterTableCmd.Def.Node.(*pg_query.Node_ColumnDef)
		if !ok {
			continue
		}

		colDef := colDefNode.ColumnDef
		if !hasConstraint(colDef, pg_query.ConstrType_CONSTR_NOTNULL) ||
			hasConstraint(colDef, pg_query.ConstrType_CONSTR_DEFAULT) {
			continue
		}

		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.High,
			Table:      analyzer.TableName(alt.Relation),
			Message:    "ADD COLUMN " + colDef.Colname + " is NOT NULL without DEFAULT and fails on existing rows",
			Suggestion: "Give the column a DEFAULT or make it nullable",
			StmtIndex:  ctx.StmtIndex,
		})
	}

	return findings
}

// hasConstraint reports whether a ColumnDef carries a constraint of the given
// type. In pg_query_go v6, NOT NULL and DEFAULT are both stored as entries
// in the Constraints list.
func hasConstraint(colDef *pg_query.ColumnDef, contype pg_query.ConstrType) bool {
	for _, c := range colDef.Constraints {
		cn, ok := c.Node.(*pg_query.Node_Constraint)
		if ok && cn.Constraint.Contype == contype {
			return true
		}
	}

	return false
}
