package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aqasim81/voice-schema/internal/analyzer"
	"github.com/aqasim81/voice-schema/internal/parser"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// check parses sql and runs rule against it with the given context.
// A nil ctx means a first create-table statement on an empty plan.
func check(t *testing.T, rule analyzer.Rule, sql string, ctx *analyzer.RuleContext) []analyzer.Finding {
	t.Helper()

	stmt, err := parser.ParseOne(sql)
	require.NoError(t, err)

	if ctx == nil {
		ctx = &analyzer.RuleContext{Dialect: schema.SQLite, Created: map[string]bool{}}
	}

	return rule.Check(stmt, ctx)
}

func createdCtx(tables ...string) *analyzer.RuleContext {
	created := make(map[string]bool, len(tables))
	for _, t := range tables {
		created[t] = true
	}

	return &analyzer.RuleContext{Dialect: schema.SQLite, Created: created, StmtIndex: 3}
}
