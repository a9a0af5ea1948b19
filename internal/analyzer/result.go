package analyzer

import "github.com/aqasim81/voice-schema/internal/schema"

// Finding represents a single problem detected in the statement plan.
type Finding struct {
	Rule       string   // Rule ID (e.g., "foreign-key-before-table")
	Severity   Severity // Danger level
	Table      string   // Affected table name
	Statement  string   // Name of the plan statement
	Message    string   // Human-readable description of the problem
	Suggestion string   // How to fix the plan
	StmtIndex  int      // Position in Plan.All() (0-based)
}

// AnalysisResult holds all findings for a plan.
type AnalysisResult struct {
	Plan        *schema.Plan
	Findings    []Finding
	MaxSeverity Severity // Highest severity across all findings
}

// HasBlocking returns true if any finding is High or Critical severity.
func (r *AnalysisResult) HasBlocking() bool {
	return r.MaxSeverity.Blocking()
}
