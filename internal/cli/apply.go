package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/voice-schema/internal/analyzer"
	"github.com/aqasim81/voice-schema/internal/analyzer/rules"
	"github.com/aqasim81/voice-schema/internal/executor"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// errBlockedPlan is returned when apply is blocked by high/critical findings.
var errBlockedPlan = errors.New("apply aborted: statement plan has high or critical findings (use --force to override)")

var applyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "apply",
	Short: "Create or migrate the schema (default command)",
	Long: `Apply the schema: create missing tables and indexes, add columns
introduced by later schema generations, commit once, then print the
resulting tables and the Chunk and AudioVariant columns.

Individual statement failures are reported and do not stop the run.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	addApplyFlags(applyCmd)
	rootCmd.AddCommand(applyCmd)
}

func addApplyFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "print the statements without connecting or executing")
	cmd.Flags().Bool("force", false, "apply even when the plan has high or critical findings")
	cmd.Flags().Duration("lock-timeout", 0, "override lock timeout, PostgreSQL only (e.g., 10s)")
	cmd.Flags().Duration("statement-timeout", 0, "override per-statement timeout (e.g., 30s, 5m)")
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	drv, err := resolveDriver(cfg)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")

	if cmd.Flags().Changed("lock-timeout") {
		cfg.LockTimeout, _ = cmd.Flags().GetDuration("lock-timeout")
	}

	if cmd.Flags().Changed("statement-timeout") {
		cfg.StatementTimeout, _ = cmd.Flags().GetDuration("statement-timeout")
	}

	plan, err := schema.Current(drv.Dialect())
	if err != nil {
		return err
	}

	p := newPrinter(cmd)

	if !force && !dryRun {
		if blocked, analyzeErr := checkPlan(p, plan); analyzeErr != nil {
			return analyzeErr
		} else if blocked {
			return errBlockedPlan
		}
	}

	if dryRun {
		fmt.Fprintln(out, "--- DRY RUN (no connection, no changes) ---")

		summary, err := executor.New(nil, executor.WithDryRun(true), executor.WithProgressCallback(p.progress)).Run(commandContext(cmd), plan)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nDry run complete: %d statement(s), plan checksum %s\n", summary.Skipped, summary.Checksum)

		return nil
	}

	ctx := commandContext(cmd)

	session, err := connect(ctx, cfg, drv, out)
	if err != nil {
		return err
	}
	defer session.Close(ctx) //nolint:errcheck // rollback-on-close of a committed session is a no-op

	exec := executor.New(session,
		executor.WithStatementTimeout(cfg.StatementTimeout),
		executor.WithProgressCallback(p.progress),
	)

	summary, err := exec.Run(ctx, plan)
	if err != nil {
		return err
	}

	p.catalog(summary.Catalog, executor.ReportedTables)
	p.summary(summary)

	return nil
}

// checkPlan runs the analyzer and returns true if HIGH/CRITICAL findings
// were found (blocking apply). Findings are only printed when present.
func checkPlan(p *printer, plan *schema.Plan) (bool, error) {
	a := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry()))

	result, err := a.Analyze(plan)
	if err != nil {
		return false, fmt.Errorf("analyzing plan: %w", err)
	}

	if len(result.Findings) > 0 {
		p.findings(result)
	}

	return result.HasBlocking(), nil
}
