package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aqasim81/voice-schema/internal/database"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// ProbeCascade checks on the live database that deleting a Project removes
// its Chunks and their AudioVariants. It writes a throwaway row triple,
// deletes the Project, counts the survivors and cleans up. The rows are
// written inside the session transaction; callers must not commit it.
func ProbeCascade(ctx context.Context, s database.Session) error {
	projectID, chunkID, variantID := uuid.NewString(), uuid.NewString(), uuid.NewString()
	ph := s.Placeholder

	inserts := []struct {
		sql  string
		args []any
	}{
		{
			sql:  fmt.Sprintf(`INSERT INTO %s ("id", "name") VALUES (%s, %s)`, schema.Quote(schema.TableProject), ph(1), ph(2)),
			args: []any{projectID, "cascade probe"},
		},
		{
			sql: fmt.Sprintf(`INSERT INTO %s ("id", "projectId", "text", "order") VALUES (%s, %s, %s, %s)`,
				schema.Quote(schema.TableChunk), ph(1), ph(2), ph(3), ph(4)),
			args: []any{chunkID, projectID, "cascade probe", 0},
		},
		{
			sql: fmt.Sprintf(`INSERT INTO %s ("id", "chunkId", "variantNumber") VALUES (%s, %s, %s)`,
				schema.Quote(schema.TableAudioVariant), ph(1), ph(2), ph(3)),
			args: []any{variantID, chunkID, 1},
		},
	}

	for _, ins := range inserts {
		if err := s.Exec(ctx, ins.sql, ins.args...); err != nil {
			return fmt.Errorf("cascade probe insert: %w", err)
		}
	}

	deleteByID := func(table, id string) error {
		return s.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE "id" = %s`, schema.Quote(table), ph(1)), id)
	}

	if err := deleteByID(schema.TableProject, projectID); err != nil {
		return fmt.Errorf("cascade probe delete: %w", err)
	}

	countByID := func(table, id string) (int64, error) {
		return s.QueryInt(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE "id" = %s`, schema.Quote(table), ph(1)), id)
	}

	chunks, err := countByID(schema.TableChunk, chunkID)
	if err != nil {
		return fmt.Errorf("cascade probe count: %w", err)
	}

	variants, err := countByID(schema.TableAudioVariant, variantID)
	if err != nil {
		return fmt.Errorf("cascade probe count: %w", err)
	}

	if chunks == 0 && variants == 0 {
		return nil
	}

	// Leave no probe rows behind even if the transaction is reused.
	_ = deleteByID(schema.TableAudioVariant, variantID)
	_ = deleteByID(schema.TableChunk, chunkID)

	return fmt.Errorf("%w: %d chunk and %d audio variant rows left", ErrCascadeBroken, chunks, variants)
}
