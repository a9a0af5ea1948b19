package executor

import (
	"context"
	"fmt"
	"slices"

	"github.com/aqasim81/voice-schema/internal/database"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// ReportedTables are the tables whose columns the apply report prints.
var ReportedTables = []string{schema.TableChunk, schema.TableAudioVariant} //nolint:gochecknoglobals // fixed report layout

// Catalog is the live schema as read back from the database.
type Catalog struct {
	Tables  []string
	Columns map[string][]database.ColumnInfo // declared tables present in Tables
}

// Drift lists the differences between a declared table and the live one.
type Drift struct {
	Table        string
	MissingTable bool
	Missing      []string // declared columns not present
	Unexpected   []string // live columns not declared
}

// Inspect lists all tables and the columns of every declared table present.
func Inspect(ctx context.Context, s database.Session) (*Catalog, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	c := &Catalog{Tables: tables, Columns: make(map[string][]database.ColumnInfo)}

	for _, t := range schema.Tables() {
		if !slices.Contains(tables, t.Name) {
			continue
		}

		cols, err := s.Columns(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}

		c.Columns[t.Name] = cols
	}

	return c, nil
}

// DetectDrift compares the catalog with the declared tables. Tables that
// match exactly are omitted.
func DetectDrift(c *Catalog) []Drift {
	var drifts []Drift

	for _, t := range schema.Tables() {
		live, ok := c.Columns[t.Name]
		if !ok {
			drifts = append(drifts, Drift{Table: t.Name, MissingTable: true})
			continue
		}

		liveNames := make([]string, 0, len(live))
		for _, col := range live {
			liveNames = append(liveNames, col.Name)
		}

		declared := t.ColumnNames()
		d := Drift{Table: t.Name}

		for _, name := range declared {
			if !slices.Contains(liveNames, name) {
				d.Missing = append(d.Missing, name)
			}
		}

		for _, name := range liveNames {
			if !slices.Contains(declared, name) {
				d.Unexpected = append(d.Unexpected, name)
			}
		}

		if len(d.Missing) > 0 || len(d.Unexpected) > 0 {
			drifts = append(drifts, d)
		}
	}

	return drifts
}
