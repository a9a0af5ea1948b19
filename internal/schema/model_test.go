package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/voice-schema/internal/schema"
)

func TestTables_columnCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		table string
		want  int
	}{
		{table: schema.TableProject, want: 6},
		{table: schema.TableChunk, want: 9},
		{table: schema.TableAudioVariant, want: 12},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			t.Parallel()

			tbl, ok := schema.Lookup(tt.table)
			require.True(t, ok)
			assert.Len(t, tbl.Columns, tt.want)
		})
	}
}

func TestTables_referencedTablesComeFirst(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}

	for _, tbl := range schema.Tables() {
		for _, fk := range tbl.ForeignKeys {
			assert.True(t, seen[fk.RefTable], "%s references %s before it is declared", tbl.Name, fk.RefTable)
		}

		seen[tbl.Name] = true
	}
}

func TestTables_additiveColumnsAreNullableOrDefaulted(t *testing.T) {
	t.Parallel()

	for _, tbl := range schema.Tables() {
		for _, c := range tbl.Columns {
			if c.Additive && c.NotNull {
				assert.NotEmpty(t, c.Default, "%s.%s is NOT NULL without a default", tbl.Name, c.Name)
			}
		}
	}
}

func TestLookup_unknownTable(t *testing.T) {
	t.Parallel()

	_, ok := schema.Lookup("Voice")
	assert.False(t, ok)
}

func TestColumnNames_preservesOrder(t *testing.T) {
	t.Parallel()

	tbl, ok := schema.Lookup(schema.TableProject)
	require.True(t, ok)

	assert.Equal(t, []string{"id", "name", "voiceId", "voiceSettings", "createdAt", "updatedAt"}, tbl.ColumnNames())
}

func TestParseDialect(t *testing.T) {
	t.Parallel()

	d, err := schema.ParseDialect(" SQLite ")
	require.NoError(t, err)
	assert.Equal(t, schema.SQLite, d)

	_, err = schema.ParseDialect("mysql")
	require.ErrorIs(t, err, schema.ErrUnknownDialect)
}

func TestQuote_escapesEmbeddedQuotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"order"`, schema.Quote("order"))
	assert.Equal(t, `"a""b"`, schema.Quote(`a"b`))
}

func TestLegacyTables_dropsAdditiveColumns(t *testing.T) {
	t.Parallel()

	legacy := schema.LegacyTables()
	require.Len(t, legacy, 3)

	assert.Len(t, legacy[0].Columns, 6)
	assert.Len(t, legacy[1].Columns, 6)
	assert.Len(t, legacy[2].Columns, 10)
	assert.NotContains(t, legacy[1].ColumnNames(), "useCustomSettings")
	assert.NotContains(t, legacy[2].ColumnNames(), "usedVoiceId")
	assert.Equal(t, schema.Tables()[1].ForeignKeys, legacy[1].ForeignKeys)

	// The current declarations are not modified.
	assert.Len(t, schema.Tables()[1].Columns, 9)
}
