package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/analyzer"
)

// ForeignKeyOrderRule detects tables whose foreign keys reference a table
// the plan has not created yet.
type ForeignKeyOrderRule struct{}

// NewForeignKeyOrderRule creates a new ForeignKeyOrderRule.
func NewForeignKeyOrderRule() *ForeignKeyOrderRule { return &ForeignKeyOrderRule{} }

// ID returns the rule identifier.
func (r *ForeignKeyOrderRule) ID() string { return "foreign-key-before-table" }

// Check examines a CREATE TABLE for references to tables created later.
func (r *ForeignKeyOrderRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	node, ok := stmt.Stmt.Node.(*pg_query.Node_CreateStmt)
	if !ok {
		return nil
	}

	create := node.CreateStmt
	self := analyzer.TableName(create.Relation)

	var findings []analyzer.Finding

	for _, ref := range referencedTables(create) {
		if ref == self || ctx.Created[ref] {
			continue
		}

		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.Critical,
			Table:      self,
			Message:    "foreign key references " + ref + ", which is created later in the plan",
			Suggestion: "Move CREATE TABLE " + ref + " before " + self,
			StmtIndex:  ctx.StmtIndex,
		})
	}

	return findings
}

// referencedTables collects REFERENCES targets from column constraints and
// table-level FOREIGN KEY constraints, in declaration order.
func referencedTables(create *pg_query.CreateStmt) []string {
	var refs []string

	add := func(n *pg_query.Node) {
		cn, ok := n.Node.(*pg_query.Node_Constraint)
		if !ok || cn.Constraint.Contype != pg_query.ConstrType_CONSTR_FOREIGN {
			return
		}

		refs = append(refs, analyzer.TableName(cn.Constraint.Pktable))
	}

	for _, elt := range create.TableElts {
		switch e := elt.Node.(type) {
		case *pg_query.Node_ColumnDef:
			for _, c := range e.ColumnDef.Constraints {
				add(c)
			}
		case *pg_query.Node_Constraint:
			add(elt)
		}
	}

	return refs
}
