package executor_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/voice-schema/internal/database"
	"github.com/aqasim81/voice-schema/internal/executor"
	"github.com/aqasim81/voice-schema/internal/schema"
)

func tempDBURL(t *testing.T) string {
	t.Helper()

	return "file:" + filepath.Join(t.TempDir(), "voice.db")
}

func openSession(t *testing.T, url string) database.Session {
	t.Helper()

	s, err := database.Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s
}

func currentPlan(t *testing.T) *schema.Plan {
	t.Helper()

	p, err := schema.Current(schema.SQLite)
	require.NoError(t, err)

	return p
}

// runOnce opens a fresh session on url, applies the current plan and closes.
func runOnce(t *testing.T, url string, opts ...executor.Option) *executor.Summary {
	t.Helper()

	ctx := context.Background()

	s, err := database.Open(ctx, url)
	require.NoError(t, err)

	defer s.Close(ctx) //nolint:errcheck // test cleanup

	summary, err := executor.New(s, opts...).Run(ctx, currentPlan(t))
	require.NoError(t, err)

	return summary
}

// seedLegacy creates the first-generation tables with a Project, a Chunk
// and three AudioVariants in different states.
func seedLegacy(t *testing.T, url string) {
	t.Helper()

	ctx := context.Background()
	s := openSession(t, url)

	legacy, err := schema.Build(schema.SQLite, schema.LegacyTables(), nil)
	require.NoError(t, err)

	for _, st := range legacy.All() {
		require.NoError(t, s.Exec(ctx, st.SQL))
	}

	require.NoError(t, s.Exec(ctx, `INSERT INTO "Project" ("id", "name") VALUES ('p1', 'Audiobook')`))
	require.NoError(t, s.Exec(ctx, `INSERT INTO "Chunk" ("id", "projectId", "text", "order") VALUES ('c1', 'p1', 'Capitolul 1', 0)`))
	for i, status := range []string{schema.StatusDone, schema.StatusError, schema.StatusProcessing} {
		require.NoError(t, s.Exec(ctx,
			`INSERT INTO "AudioVariant" ("id", "chunkId", "variantNumber", "status") VALUES (?, 'c1', ?, ?)`,
			fmt.Sprintf("a%d", i+1), i+1, status))
	}

	require.NoError(t, s.Commit(ctx))
	require.NoError(t, s.Close(ctx))
}

func columnNames(cols []database.ColumnInfo) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}

	return names
}

func TestRun_emptyDatabase_createsV4Schema(t *testing.T) {
	t.Parallel()

	url := tempDBURL(t)
	summary := runOnce(t, url)

	assert.Equal(t, 5, summary.Applied)
	assert.Equal(t, 0, summary.Exists)
	// Fresh tables already carry the additive columns.
	assert.Equal(t, 5, summary.DuplicateColumns)
	assert.Equal(t, 0, summary.Failed)
	assert.Zero(t, summary.Anomalies())
	assert.True(t, summary.Committed)

	require.NotNil(t, summary.Catalog)
	assert.Equal(t, []string{"AudioVariant", "Chunk", "Project"}, summary.Catalog.Tables)

	chunk, _ := schema.Lookup(schema.TableChunk)
	variant, _ := schema.Lookup(schema.TableAudioVariant)
	assert.Equal(t, chunk.ColumnNames(), columnNames(summary.Catalog.Columns[schema.TableChunk]))
	assert.Equal(t, variant.ColumnNames(), columnNames(summary.Catalog.Columns[schema.TableAudioVariant]))
	assert.Len(t, summary.Catalog.Columns[schema.TableChunk], 9)
	assert.Len(t, summary.Catalog.Columns[schema.TableAudioVariant], 12)
	assert.Empty(t, executor.DetectDrift(summary.Catalog))

	for _, table := range []schema.Table{chunk, variant} {
		live := summary.Catalog.Columns[table.Name]
		require.Len(t, live, len(table.Columns), table.Name)

		for i, col := range table.Columns {
			assert.Equal(t, schema.SQLite.TypeName(col.Type), live[i].Type, "%s.%s", table.Name, col.Name)
			assert.Equal(t, col.NotNull, live[i].NotNull, "%s.%s", table.Name, col.Name)
		}
	}

	ctx := context.Background()
	s := openSession(t, url)

	for _, idx := range schema.Indexes() {
		exists, err := s.ObjectExists(ctx, database.KindIndex, idx.Name)
		require.NoError(t, err)
		assert.True(t, exists, idx.Name)
	}
}

func TestRun_rerun_reportsExistingObjects(t *testing.T) {
	t.Parallel()

	url := tempDBURL(t)
	first := runOnce(t, url)
	second := runOnce(t, url)

	assert.Equal(t, 0, second.Applied)
	assert.Equal(t, 5, second.Exists)
	assert.Equal(t, 5, second.DuplicateColumns)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, first.Catalog.Tables, second.Catalog.Tables)
	assert.Equal(t, first.Catalog.Columns, second.Catalog.Columns)
	assert.Equal(t, first.Checksum, second.Checksum)
}

func TestRun_legacyDatabase_addsColumnsAndKeepsRows(t *testing.T) {
	t.Parallel()

	url := tempDBURL(t)
	seedLegacy(t, url)

	summary := runOnce(t, url)

	assert.Equal(t, 3, summary.Exists, "tables existed")
	assert.Equal(t, 7, summary.Applied, "2 indexes and 5 columns")
	assert.Equal(t, 0, summary.DuplicateColumns)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, executor.DetectDrift(summary.Catalog))

	ctx := context.Background()
	s := openSession(t, url)

	n, err := s.QueryInt(ctx,
		`SELECT COUNT(*) FROM "Chunk" WHERE "id" = 'c1' AND "useCustomSettings" = 0 AND "customVoiceId" IS NULL AND "customVoiceSettings" IS NULL`)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	for id, status := range map[string]string{"a1": schema.StatusDone, "a2": schema.StatusError, "a3": schema.StatusProcessing} {
		n, err = s.QueryInt(ctx,
			`SELECT COUNT(*) FROM "AudioVariant" WHERE "id" = ? AND "status" = ? AND "usedVoiceId" IS NULL AND "usedVoiceSettings" IS NULL`,
			id, status)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n, id)
	}
}

func TestRun_statementFailure_continuesAndCommits(t *testing.T) {
	t.Parallel()

	url := tempDBURL(t)
	p := currentPlan(t)
	p.Ensure = append([]schema.Statement{{
		Name:  "broken",
		Phase: schema.PhaseAddColumn,
		SQL:   `ALTER TABLE "Missing" ADD COLUMN "x" TEXT`,
	}}, p.Ensure...)

	ctx := context.Background()
	s := openSession(t, url)

	var events []executor.ProgressEvent

	summary, err := executor.New(s, executor.WithProgressCallback(func(e executor.ProgressEvent) {
		events = append(events, e)
	})).Run(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Anomalies())
	assert.Equal(t, 5, summary.Applied)
	assert.True(t, summary.Committed)

	require.Len(t, events, len(p.All()))
	assert.Equal(t, executor.StatusFailed, events[0].Status)
	require.Error(t, events[0].Error)
	assert.Contains(t, events[0].Error.Error(), "no such table")

	for i, e := range events {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, len(p.All()), e.Total)
	}
}

func TestRun_progressStatusesFollowPlanOrder(t *testing.T) {
	t.Parallel()

	var statuses []string

	runOnce(t, tempDBURL(t), executor.WithProgressCallback(func(e executor.ProgressEvent) {
		statuses = append(statuses, e.Status)
	}))

	assert.Equal(t, []string{
		executor.StatusApplied, executor.StatusApplied, executor.StatusApplied,
		executor.StatusApplied, executor.StatusApplied,
		executor.StatusDuplicateColumn, executor.StatusDuplicateColumn, executor.StatusDuplicateColumn,
		executor.StatusDuplicateColumn, executor.StatusDuplicateColumn,
	}, statuses)
}

func TestRun_dryRun_executesNothing(t *testing.T) {
	t.Parallel()

	url := tempDBURL(t)
	summary := runOnce(t, url, executor.WithDryRun(true))

	assert.Equal(t, 10, summary.Skipped)
	assert.False(t, summary.Committed)
	assert.Nil(t, summary.Catalog)

	tables, err := openSession(t, url).Tables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestProbeCascade_v4Schema_passesAndLeavesNoRows(t *testing.T) {
	t.Parallel()

	url := tempDBURL(t)
	runOnce(t, url)

	ctx := context.Background()
	s := openSession(t, url)

	require.NoError(t, executor.ProbeCascade(ctx, s))

	n, err := s.QueryInt(ctx, `SELECT COUNT(*) FROM "Project"`)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProbeCascade_withoutForeignKeys_reportsBroken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openSession(t, ":memory:")

	plain := schema.Tables()
	for i := range plain {
		plain[i].ForeignKeys = nil
	}

	p, err := schema.Build(schema.SQLite, plain, nil)
	require.NoError(t, err)

	for _, st := range p.Ensure {
		require.NoError(t, s.Exec(ctx, st.SQL))
	}

	err = executor.ProbeCascade(ctx, s)
	require.ErrorIs(t, err, executor.ErrCascadeBroken)
	assert.Contains(t, err.Error(), "1 chunk and 1 audio variant")
}

func TestProbeCascade_missingTables_returnsError(t *testing.T) {
	t.Parallel()

	err := executor.ProbeCascade(context.Background(), openSession(t, ":memory:"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, executor.ErrCascadeBroken)
	assert.Contains(t, err.Error(), "cascade probe insert")
}
