package rules

import "github.com/aqasim81/voice-schema/internal/analyzer"

// NewDefaultRegistry returns a Registry with all built-in plan checks.
func NewDefaultRegistry() *analyzer.Registry {
	r := analyzer.NewRegistry()
	r.Register(NewEnsureGuardRule())
	r.Register(NewForeignKeyOrderRule())
	r.Register(NewIndexOrderRule())
	r.Register(NewAdditiveShapeRule())
	r.Register(NewAddColumnNotNullRule())
	r.Register(NewPhaseOrderRule())

	return r
}
