package analyzer

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/voice-schema/internal/parser"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// Option configures the Analyzer.
type Option func(*Analyzer)

// Analyzer runs registered rules against every statement of a plan, in order.
type Analyzer struct {
	registry *Registry
	parseFn  func(string) (*pg_query.RawStmt, error)
}

// New creates a new Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		registry: NewRegistry(),
		parseFn:  parser.ParseOne,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithRegistry sets a custom rule registry.
func WithRegistry(r *Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// WithParser overrides the SQL parser function (useful for testing).
func WithParser(fn func(string) (*pg_query.RawStmt, error)) Option {
	return func(a *Analyzer) { a.parseFn = fn }
}

// Analyze parses each statement of the plan and returns all findings.
// Rules see the tables created and the phase reached by earlier statements.
func (a *Analyzer) Analyze(p *schema.Plan) (*AnalysisResult, error) {
	var findings []Finding

	maxSeverity := Safe
	created := make(map[string]bool)
	ctx := &RuleContext{Dialect: p.Dialect, Created: created}

	for i, st := range p.All() {
		stmt, err := a.parseFn(st.SQL)
		if err != nil {
			return nil, fmt.Errorf("parsing statement %s: %w", st.Name, err)
		}

		ctx.Statement = &st
		ctx.StmtIndex = i

		for _, rule := range a.registry.Rules() {
			fs := rule.Check(stmt, ctx)
			for j := range fs {
				fs[j].Statement = st.Name

				if fs[j].Severity > maxSeverity {
					maxSeverity = fs[j].Severity
				}
			}

			findings = append(findings, fs...)
		}

		if node, ok := stmt.Stmt.Node.(*pg_query.Node_CreateStmt); ok {
			created[TableName(node.CreateStmt.Relation)] = true
		}

		if phase, ok := PhaseOf(stmt); ok && (!ctx.Seen || phase > ctx.MaxPhase) {
			ctx.MaxPhase = phase
			ctx.Seen = true
		}
	}

	return &AnalysisResult{
		Plan:        p,
		Findings:    findings,
		MaxSeverity: maxSeverity,
	}, nil
}
