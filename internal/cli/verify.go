package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/voice-schema/internal/executor"
	"github.com/aqasim81/voice-schema/internal/schema"
)

// errDriftDetected is returned when --fail-on-drift is set and the live schema differs.
var errDriftDetected = errors.New("live schema differs from the declared tables")

var verifyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "verify",
	Short: "Compare the live schema with the declared tables",
	Long: `Connect, print the tables and the columns of Project, Chunk and
AudioVariant, and report missing or unexpected columns. With --cascade,
also check that deleting a Project removes its Chunks and AudioVariants,
using throwaway rows that are rolled back. Nothing is ever committed.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	verifyCmd.Flags().Bool("cascade", false, "probe ON DELETE CASCADE with rolled-back rows")
	verifyCmd.Flags().Bool("fail-on-drift", false, "exit with non-zero code if the schema drifted")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	drv, err := resolveDriver(cfg)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	session, err := connect(ctx, cfg, drv, out)
	if err != nil {
		return err
	}
	defer session.Close(ctx) //nolint:errcheck // close rolls back; nothing was meant to persist

	catalog, err := executor.Inspect(ctx, session)
	if err != nil {
		return err
	}

	p := newPrinter(cmd)
	p.catalog(catalog, []string{schema.TableProject, schema.TableChunk, schema.TableAudioVariant})

	drifts := executor.DetectDrift(catalog)
	p.drift(drifts)

	if cascade, _ := cmd.Flags().GetBool("cascade"); cascade {
		if err := executor.ProbeCascade(ctx, session); err != nil {
			fmt.Fprintf(out, "%s cascade delete: %v\n", p.paint(colorRed, markerFail), err)
			return err
		}

		fmt.Fprintf(out, "%s cascade delete removes Chunk and AudioVariant rows\n", p.paint(colorGreen, markerOK))
	}

	if failOnDrift, _ := cmd.Flags().GetBool("fail-on-drift"); failOnDrift && len(drifts) > 0 {
		return errDriftDetected
	}

	return nil
}
