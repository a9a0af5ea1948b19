package schema

// ColumnType is the portable type of a column; each Dialect maps it to a
// concrete SQL type name.
type ColumnType int

const (
	// Text holds strings and serialized JSON settings.
	Text ColumnType = iota
	// Integer holds counters, ordering values and 0/1 flags.
	Integer
	// DateTime holds creation and update timestamps.
	DateTime
	// Binary holds raw audio payloads.
	Binary
)

// DefaultNow is the column default used for timestamps in every dialect.
const DefaultNow = "CURRENT_TIMESTAMP"

// Column declares a single column of a table.
type Column struct {
	Name       string
	Type       ColumnType
	NotNull    bool
	PrimaryKey bool
	Default    string // raw SQL expression, empty for none
	// Additive marks columns introduced after the first schema generation.
	// They are part of CREATE TABLE and are also emitted as ADD COLUMN
	// statements so older databases catch up.
	Additive bool
}

// ForeignKey declares a cascading reference from Column to RefTable(RefColumn).
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Table declares a table, its columns in declaration order, and its foreign keys.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Index declares a non-unique index.
type Index struct {
	Name    string
	Table   string
	Columns []string
}

// Table names of the voice studio schema.
const (
	TableProject      = "Project"
	TableChunk        = "Chunk"
	TableAudioVariant = "AudioVariant"
)

// AudioVariant status values written by the host application.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusError      = "error"
)

// Tables returns the current (v4) table declarations in creation order:
// every table appears after the tables it references.
func Tables() []Table {
	return []Table{
		{
			Name: TableProject,
			Columns: []Column{
				{Name: "id", Type: Text, NotNull: true, PrimaryKey: true},
				{Name: "name", Type: Text, NotNull: true},
				{Name: "voiceId", Type: Text},
				{Name: "voiceSettings", Type: Text},
				{Name: "createdAt", Type: DateTime, NotNull: true, Default: DefaultNow},
				{Name: "updatedAt", Type: DateTime, NotNull: true, Default: DefaultNow},
			},
		},
		{
			Name: TableChunk,
			Columns: []Column{
				{Name: "id", Type: Text, NotNull: true, PrimaryKey: true},
				{Name: "projectId", Type: Text, NotNull: true},
				{Name: "text", Type: Text, NotNull: true},
				{Name: "order", Type: Integer, NotNull: true},
				{Name: "useCustomSettings", Type: Integer, NotNull: true, Default: "0", Additive: true},
				{Name: "customVoiceId", Type: Text, Additive: true},
				{Name: "customVoiceSettings", Type: Text, Additive: true},
				{Name: "createdAt", Type: DateTime, NotNull: true, Default: DefaultNow},
				{Name: "updatedAt", Type: DateTime, NotNull: true, Default: DefaultNow},
			},
			ForeignKeys: []ForeignKey{
				{Column: "projectId", RefTable: TableProject, RefColumn: "id"},
			},
		},
		{
			Name: TableAudioVariant,
			Columns: []Column{
				{Name: "id", Type: Text, NotNull: true, PrimaryKey: true},
				{Name: "chunkId", Type: Text, NotNull: true},
				{Name: "variantNumber", Type: Integer, NotNull: true},
				{Name: "audioUrl", Type: Text},
				{Name: "audioData", Type: Binary},
				{Name: "isActive", Type: Integer, NotNull: true, Default: "0"},
				{Name: "status", Type: Text, NotNull: true, Default: "'" + StatusQueued + "'"},
				{Name: "progress", Type: Integer, NotNull: true, Default: "0"},
				{Name: "errorMessage", Type: Text},
				{Name: "usedVoiceId", Type: Text, Additive: true},
				{Name: "usedVoiceSettings", Type: Text, Additive: true},
				{Name: "createdAt", Type: DateTime, NotNull: true, Default: DefaultNow},
			},
			ForeignKeys: []ForeignKey{
				{Column: "chunkId", RefTable: TableChunk, RefColumn: "id"},
			},
		},
	}
}

// Indexes returns the index declarations. They follow all tables in the plan.
func Indexes() []Index {
	return []Index{
		{Name: "Chunk_projectId_order_idx", Table: TableChunk, Columns: []string{"projectId", "order"}},
		{Name: "AudioVariant_chunkId_idx", Table: TableAudioVariant, Columns: []string{"chunkId"}},
	}
}

// Lookup returns the declaration of the named table.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}

	return Table{}, false
}

// ColumnNames returns the declared column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}

	return names
}

// LegacyTables returns the first-generation declarations: the current
// tables without the columns added by later generations.
func LegacyTables() []Table {
	tables := Tables()

	for i := range tables {
		kept := make([]Column, 0, len(tables[i].Columns))

		for _, c := range tables[i].Columns {
			if !c.Additive {
				kept = append(kept, c)
			}
		}

		tables[i].Columns = kept
	}

	return tables
}
