package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Phase is the stage of the run a statement belongs to.
type Phase int

const (
	// PhaseCreateTable statements create tables if missing.
	PhaseCreateTable Phase = iota
	// PhaseCreateIndex statements create indexes if missing.
	PhaseCreateIndex
	// PhaseAddColumn statements add one column to an existing table.
	PhaseAddColumn
)

// String returns a short label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCreateTable:
		return "create-table"
	case PhaseCreateIndex:
		return "create-index"
	case PhaseAddColumn:
		return "add-column"
	default:
		return "unknown"
	}
}

// Statement is a single DDL statement of the plan.
type Statement struct {
	Name   string // e.g. "create_table_Chunk", "add_column_Chunk_customVoiceId"
	Phase  Phase
	Table  string // table the statement creates or alters
	Object string // table, index or column name the statement ensures
	SQL    string
}

// Plan is the ordered list of statements for one dialect.
// Ensure holds tables then indexes; Additive holds one ADD COLUMN per
// column introduced after the first generation.
type Plan struct {
	Dialect  Dialect
	Ensure   []Statement
	Additive []Statement
}

// Build renders a plan for the given declarations. Tables must already be
// in dependency order; the order is preserved as given.
func Build(d Dialect, tables []Table, indexes []Index) (*Plan, error) {
	if _, err := ParseDialect(string(d)); err != nil {
		return nil, err
	}

	p := &Plan{Dialect: d}

	for _, t := range tables {
		p.Ensure = append(p.Ensure, Statement{
			Name:   "create_table_" + t.Name,
			Phase:  PhaseCreateTable,
			Table:  t.Name,
			Object: t.Name,
			SQL:    d.CreateTable(t),
		})
	}

	for _, idx := range indexes {
		p.Ensure = append(p.Ensure, Statement{
			Name:   "create_index_" + idx.Name,
			Phase:  PhaseCreateIndex,
			Table:  idx.Table,
			Object: idx.Name,
			SQL:    d.CreateIndex(idx),
		})
	}

	for _, t := range tables {
		for _, c := range t.Columns {
			if !c.Additive {
				continue
			}

			p.Additive = append(p.Additive, Statement{
				Name:   "add_column_" + t.Name + "_" + c.Name,
				Phase:  PhaseAddColumn,
				Table:  t.Name,
				Object: c.Name,
				SQL:    d.AddColumn(t.Name, c),
			})
		}
	}

	return p, nil
}

// Current renders the plan for the latest schema generation.
func Current(d Dialect) (*Plan, error) {
	return Build(d, Tables(), Indexes())
}

// All returns Ensure followed by Additive.
func (p *Plan) All() []Statement {
	all := make([]Statement, 0, len(p.Ensure)+len(p.Additive))
	all = append(all, p.Ensure...)

	return append(all, p.Additive...)
}

// Checksum returns the SHA-256 hex digest of the ordered statement text.
func (p *Plan) Checksum() string {
	h := sha256.New()

	for _, s := range p.All() {
		h.Write([]byte(s.SQL))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Abbreviate collapses whitespace to single spaces and truncates to maxLen
// runes, appending "..." when anything was cut.
func Abbreviate(sql string, maxLen int) string {
	flat := strings.Join(strings.Fields(sql), " ")
	if maxLen <= 0 || utf8.RuneCountInString(flat) <= maxLen {
		return flat
	}

	return string([]rune(flat)[:maxLen]) + "..."
}
