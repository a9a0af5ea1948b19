package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aqasim81/voice-schema/internal/analyzer"
	"github.com/aqasim81/voice-schema/internal/database"
	"github.com/aqasim81/voice-schema/internal/executor"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// Console widths for abbreviated statements and error text.
const (
	stmtWidth  = 60
	errorWidth = 120
)

const (
	colorReset   = "\033[0m"
	colorGreen   = "\033[32m"
	colorCyan    = "\033[36m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorBrRed   = "\033[91m"
	markerOK     = "✓"
	markerNotice = "•"
	markerFail   = "✗"
)

// printer renders progress and reports to a command's output.
type printer struct {
	out     io.Writer
	color   bool
	verbose bool
}

func newPrinter(cmd *cobra.Command) *printer {
	verbose, _ := cmd.Flags().GetBool("verbose")
	out := cmd.OutOrStdout()

	return &printer{out: out, color: isTerminal(out), verbose: verbose}
}

// isTerminal reports whether w is a terminal; color is only used then.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

func (p *printer) paint(color, s string) string {
	if !p.color {
		return s
	}

	return color + s + colorReset
}

func severityColor(s analyzer.Severity) string {
	switch s {
	case analyzer.Safe:
		return colorGreen
	case analyzer.Low:
		return colorCyan
	case analyzer.Medium:
		return colorYellow
	case analyzer.High:
		return colorRed
	case analyzer.Critical:
		return colorBrRed
	default:
		return colorReset
	}
}

// progress prints one line per statement.
func (p *printer) progress(e executor.ProgressEvent) {
	stmt := schema.Abbreviate(e.Statement.SQL, stmtWidth)

	var line string

	switch e.Status {
	case executor.StatusApplied:
		line = p.paint(colorGreen, markerOK) + " " + stmt
	case executor.StatusExists:
		line = p.paint(colorCyan, markerNotice) + " already exists: " + stmt
	case executor.StatusDuplicateColumn:
		line = p.paint(colorCyan, markerNotice) + " duplicate column: " + stmt
	case executor.StatusFailed:
		line = p.paint(colorRed, markerFail) + " " + stmt + ": " + p.errorText(e.Error)
	case executor.StatusSkipped:
		fmt.Fprintf(p.out, "-- %s\n%s;\n\n", e.Statement.Name, e.Statement.SQL)
		return
	default:
		line = e.Status + " " + stmt
	}

	if p.verbose {
		line += fmt.Sprintf(" (%s)", e.Duration.Truncate(time.Millisecond))

		if e.Error != nil && e.Status != executor.StatusFailed {
			line += "\n    " + e.Error.Error()
		}
	}

	fmt.Fprintln(p.out, line)
}

func (p *printer) errorText(err error) string {
	if err == nil {
		return ""
	}

	if p.verbose {
		return err.Error()
	}

	return schema.Abbreviate(err.Error(), errorWidth)
}

// catalog prints the table list and the columns of the given tables.
func (p *printer) catalog(c *executor.Catalog, tables []string) {
	if c == nil {
		return
	}

	fmt.Fprintln(p.out, "\nTables:")

	for _, t := range c.Tables {
		fmt.Fprintf(p.out, "  - %s\n", t)
	}

	for _, t := range tables {
		p.columns(t, c.Columns[t])
	}
}

func (p *printer) columns(table string, cols []database.ColumnInfo) {
	fmt.Fprintf(p.out, "\n%s columns:\n", table)

	if len(cols) == 0 {
		fmt.Fprintln(p.out, "  (table not found)")
		return
	}

	for _, c := range cols {
		fmt.Fprintf(p.out, "  - %s  %s\n", c.Name, c.Type)
	}
}

func (p *printer) summary(s *executor.Summary) {
	fmt.Fprintf(p.out, "\nDone: %d applied, %d already existed, %d duplicate column(s), %d failed.\n",
		s.Applied, s.Exists, s.DuplicateColumns, s.Failed)

	if s.Anomalies() > 0 {
		fmt.Fprintln(p.out, p.paint(colorYellow, fmt.Sprintf(
			"%d statement(s) failed unexpectedly; review the %s lines above.", s.Anomalies(), markerFail)))
	}

	if p.verbose {
		fmt.Fprintf(p.out, "Plan checksum: %s\n", s.Checksum)
	}
}

// findings prints analyzer findings grouped under the plan.
func (p *printer) findings(result *analyzer.AnalysisResult) {
	if len(result.Findings) == 0 {
		fmt.Fprintln(p.out, "No plan problems detected.")
		return
	}

	fmt.Fprintln(p.out, "\n=== plan findings ===")

	for _, f := range result.Findings {
		label := p.paint(severityColor(f.Severity), "["+f.Severity.String()+"]")
		fmt.Fprintf(p.out, "  %s %s\n", label, f.Message)
		fmt.Fprintf(p.out, "    Table:     %s\n", f.Table)
		fmt.Fprintf(p.out, "    Rule:      %s\n", f.Rule)
		fmt.Fprintf(p.out, "    Statement: #%d %s\n", f.StmtIndex+1, f.Statement)
		fmt.Fprintf(p.out, "    Fix:       %s\n\n", f.Suggestion)
	}

	fmt.Fprintf(p.out, "Found %d finding(s), highest severity %s.\n", len(result.Findings), result.MaxSeverity)
}

// drift prints column differences against the declared schema.
func (p *printer) drift(drifts []executor.Drift) {
	if len(drifts) == 0 {
		fmt.Fprintln(p.out, "\n"+p.paint(colorGreen, markerOK)+" schema matches the declared tables")
		return
	}

	fmt.Fprintln(p.out, "\nDrift:")

	for _, d := range drifts {
		if d.MissingTable {
			fmt.Fprintf(p.out, "  %s %s: table missing\n", p.paint(colorRed, markerFail), d.Table)
			continue
		}

		for _, c := range d.Missing {
			fmt.Fprintf(p.out, "  %s %s: missing column %s\n", p.paint(colorRed, markerFail), d.Table, c)
		}

		for _, c := range d.Unexpected {
			fmt.Fprintf(p.out, "  %s %s: unexpected column %s\n", p.paint(colorYellow, markerNotice), d.Table, c)
		}
	}
}
