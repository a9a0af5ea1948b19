package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/analyzer"
)

// IndexOrderRule detects indexes on tables the plan has not created yet.
type IndexOrderRule struct{}

// NewIndexOrderRule creates a new IndexOrderRule.
func NewIndexOrderRule() *IndexOrderRule { return &IndexOrderRule{} }

// ID returns the rule identifier.
func (r *IndexOrderRule) ID() string { return "index-before-table" }

// Check examines a CREATE INDEX for a target table created later.
func (r *IndexOrderRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	node, ok := stmt.Stmt.Node.(*pg_query.Node_IndexStmt)
	if !ok {
		return nil
	}

	table := analyzer.TableName(node.IndexStmt.Relation)
	if ctx.Created[table] {
		return nil
	}

	return []analyzer.Finding{{
		Rule:       r.ID(),
		Severity:   analyzer.Critical,
		Table:      table,
		Message:    "index " + node.IndexStmt.Idxname + " targets a table not created earlier in the plan",
		Suggestion: "Create indexes after every CREATE TABLE",
		StmtIndex:  ctx.StmtIndex,
	}}
}
