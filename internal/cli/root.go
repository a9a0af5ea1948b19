package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aqasim81/voice-schema/internal/config"
	"github.com/aqasim81/voice-schema/internal/database"
)

const version = "0.4.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// openSession is replaced in tests to observe or stub connections.
var openSession = database.Open //nolint:gochecknoglobals // test seam

// rootCmd is the base command. Without a subcommand it applies the schema.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "voice-schema",
	Version: version,
	Short:   "Provision the voice studio database schema",
	Long: `voice-schema creates or migrates the Project / Chunk / AudioVariant
schema of the voice studio database. Every statement is idempotent: tables
and indexes are created if missing, and columns added by later schema
generations are added to existing tables. Running it twice is safe.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runApply,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "path to a .env file")
	rootCmd.PersistentFlags().String("database-url", "", "database URL (libsql://, https://, file:, postgres://)")
	rootCmd.PersistentFlags().String("auth-token", "", "auth token for remote libSQL databases")
	rootCmd.PersistentFlags().Bool("verbose", false, "print durations and full error text")
	addApplyFlags(rootCmd)
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with precedence: flag > env > .env > file.
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	envFile, _ := cmd.Flags().GetString("env-file")
	if cmd.Flags().Changed("env-file") {
		if _, err := os.Stat(envFile); err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("database-url") {
		cfg.DatabaseURL, _ = cmd.Flags().GetString("database-url")
	}

	if cmd.Flags().Changed("auth-token") {
		cfg.AuthToken, _ = cmd.Flags().GetString("auth-token")
	}
}

// resolveDriver validates the connection settings before any network call.
func resolveDriver(cfg *config.Config) (database.Driver, error) {
	if err := cfg.Validate(false); err != nil {
		return 0, missingConfig(err)
	}

	drv, err := database.DetectDriver(cfg.DatabaseURL)
	if err != nil {
		return 0, err
	}

	if err := cfg.Validate(drv.NeedsAuthToken()); err != nil {
		return 0, missingConfig(err)
	}

	return drv, nil
}

func missingConfig(err error) error {
	switch {
	case errors.Is(err, config.ErrDatabaseURLRequired):
		return fmt.Errorf("%w (set --database-url, %s, or database_url in %s)",
			err, config.EnvDatabaseURL, config.DefaultConfigFile)
	case errors.Is(err, config.ErrAuthTokenRequired):
		return fmt.Errorf("%w (set --auth-token, %s, or auth_token in %s)",
			err, config.EnvAuthToken, config.DefaultConfigFile)
	default:
		return err
	}
}

// connect opens the session for cfg and reports the redacted target.
func connect(ctx context.Context, cfg *config.Config, drv database.Driver, out io.Writer) (database.Session, error) {
	fmt.Fprintf(out, "Connecting to %s (%s)\n", config.RedactURL(cfg.DatabaseURL), drv)

	s, err := openSession(ctx, cfg.DatabaseURL,
		database.WithAuthToken(cfg.AuthToken),
		database.WithLockTimeout(cfg.LockTimeout),
		database.WithStatementTimeout(cfg.StatementTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
