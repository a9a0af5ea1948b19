package analyzer_test

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/voice-schema/internal/analyzer"
	"github.com/aqasim81/voice-schema/internal/parser"
	"github.com/aqasim81/voice-schema/internal/schema"
)

func TestTableName_withSchema(t *testing.T) {
	t.Parallel()

	rv := &pg_query.RangeVar{Schemaname: "public", Relname: "Chunk"}
	assert.Equal(t, "public.Chunk", analyzer.TableName(rv))
}

func TestTableName_withoutSchema(t *testing.T) {
	t.Parallel()

	rv := &pg_query.RangeVar{Relname: "AudioVariant"}
	assert.Equal(t, "AudioVariant", analyzer.TableName(rv))
}

func TestTableName_nil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<unknown>", analyzer.TableName(nil))
}

func TestTableName_quotedIdentifierKeepsCase(t *testing.T) {
	t.Parallel()

	stmt, err := parser.ParseOne(`CREATE TABLE IF NOT EXISTS "AudioVariant" ("id" TEXT)`)
	require.NoError(t, err)

	node, ok := stmt.Stmt.Node.(*pg_query.Node_CreateStmt)
	require.True(t, ok)
	assert.Equal(t, "AudioVariant", analyzer.TableName(node.CreateStmt.Relation))
}

func TestPhaseOf_statementKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sql    string
		want   schema.Phase
		wantOK bool
	}{
		{`CREATE TABLE "Project" ("id" TEXT)`, schema.PhaseCreateTable, true},
		{`CREATE INDEX "i" ON "Chunk" ("projectId")`, schema.PhaseCreateIndex, true},
		{`ALTER TABLE "Chunk" ADD COLUMN "x" TEXT`, schema.PhaseAddColumn, true},
		{`SELECT 1`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			t.Parallel()

			stmt, err := parser.ParseOne(tt.sql)
			require.NoError(t, err)

			got, ok := analyzer.PhaseOf(stmt)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhaseOf_nil(t *testing.T) {
	t.Parallel()

	_, ok := analyzer.PhaseOf(nil)
	assert.False(t, ok)
}
