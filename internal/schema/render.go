package schema

import (
	"fmt"
	"strings"
)

// Dialect selects the SQL flavour statements are rendered in.
type Dialect string

const (
	// SQLite covers libSQL/Turso and local SQLite files.
	SQLite Dialect = "sqlite"
	// Postgres covers PostgreSQL.
	Postgres Dialect = "postgres"
)

// typeNames maps portable column types to declared type names per dialect.
var typeNames = map[Dialect]map[ColumnType]string{ //nolint:gochecknoglobals // read-only lookup table
	SQLite: {
		Text:     "TEXT",
		Integer:  "INTEGER",
		DateTime: "DATETIME",
		Binary:   "BLOB",
	},
	Postgres: {
		Text:     "TEXT",
		Integer:  "INTEGER",
		DateTime: "TIMESTAMP(3)",
		Binary:   "BYTEA",
	},
}

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := typeNames[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}

	return d, nil
}

// TypeName returns the declared SQL type for t in dialect d.
func (d Dialect) TypeName(t ColumnType) string {
	return typeNames[d][t]
}

// Quote double-quotes an identifier. Both dialects accept the standard form,
// and it is required for mixed-case names and for the reserved word "order".
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d Dialect) columnDef(c Column) string {
	var b strings.Builder

	b.WriteString(Quote(c.Name))
	b.WriteString(" ")
	b.WriteString(d.TypeName(c.Type))

	if c.NotNull {
		b.WriteString(" NOT NULL")
	}

	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}

	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}

	return b.String()
}

// CreateTable renders a guarded CREATE TABLE statement.
func (d Dialect) CreateTable(t Table) string {
	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys))

	for _, c := range t.Columns {
		lines = append(lines, "    "+d.columnDef(c))
	}

	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf(
			"    CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE CASCADE ON UPDATE CASCADE",
			Quote(t.Name+"_"+fk.Column+"_fkey"), Quote(fk.Column), Quote(fk.RefTable), Quote(fk.RefColumn),
		))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", Quote(t.Name), strings.Join(lines, ",\n"))
}

// CreateIndex renders a guarded CREATE INDEX statement.
func (d Dialect) CreateIndex(idx Index) string {
	cols := make([]string, 0, len(idx.Columns))
	for _, c := range idx.Columns {
		cols = append(cols, Quote(c))
	}

	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		Quote(idx.Name), Quote(idx.Table), strings.Join(cols, ", "))
}

// AddColumn renders an unguarded ALTER TABLE ... ADD COLUMN statement.
// SQLite has no IF NOT EXISTS form for columns, so reruns fail with a
// duplicate column error that callers treat as a no-op.
func (d Dialect) AddColumn(table string, c Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", Quote(table), d.columnDef(c))
}
