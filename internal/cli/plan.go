package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/voice-schema/internal/analyzer"
	"github.com/aqasim81/voice-schema/internal/analyzer/rules"
	"github.com/aqasim81/voice-schema/internal/database"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// errHighSeverityFindings is returned when --fail-on-high is set and high/critical findings exist.
var errHighSeverityFindings = errors.New("high or critical severity findings detected")

var planCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "plan",
	Short: "Show the statement plan without connecting",
	Long: `Print every statement apply would run, in order, with the plan
checksum and the result of the static plan checks. The dialect follows the
configured database URL unless --dialect is given.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	planCmd.Flags().String("dialect", "", "sqlite or postgres (default: from the database URL, else sqlite)")
	planCmd.Flags().Bool("fail-on-high", false, "exit with non-zero code if high/critical findings exist")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	dialect, err := planDialect(cmd)
	if err != nil {
		return err
	}

	plan, err := schema.Current(dialect)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Dialect: %s\n\n", dialect)

	for i, st := range plan.All() {
		fmt.Fprintf(out, "-- %d. %s [%s]\n%s;\n\n", i+1, st.Name, st.Phase, st.SQL)
	}

	fmt.Fprintf(out, "Plan checksum: %s\n", plan.Checksum())

	a := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry()))

	result, err := a.Analyze(plan)
	if err != nil {
		return fmt.Errorf("analyzing plan: %w", err)
	}

	newPrinter(cmd).findings(result)

	failOnHigh, _ := cmd.Flags().GetBool("fail-on-high")
	if failOnHigh && result.HasBlocking() {
		return errHighSeverityFindings
	}

	return nil
}

func planDialect(cmd *cobra.Command) (schema.Dialect, error) {
	if name, _ := cmd.Flags().GetString("dialect"); name != "" {
		return schema.ParseDialect(name)
	}

	if AppConfig != nil && AppConfig.DatabaseURL != "" {
		if drv, err := database.DetectDriver(AppConfig.DatabaseURL); err == nil {
			return drv.Dialect(), nil
		}
	}

	return schema.SQLite, nil
}
