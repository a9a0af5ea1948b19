package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/voice-schema/internal/config"
	"github.com/aqasim81/voice-schema/internal/database"
)

// newConfigCmd returns a command carrying the root persistent flags.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("config", config.DefaultConfigFile, "")
	cmd.Flags().String("env-file", "", "")
	cmd.Flags().String("database-url", "", "")
	cmd.Flags().String("auth-token", "", "")

	return cmd
}

func TestMergeFlags_databaseURL_overridesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cmd := newConfigCmd()

	require.NoError(t, cmd.Flags().Set("database-url", "libsql://flag.turso.io"))

	mergeFlags(cmd, cfg)
	assert.Equal(t, "libsql://flag.turso.io", cfg.DatabaseURL)
}

func TestMergeFlags_authToken_overridesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.AuthToken = "from-env"
	cmd := newConfigCmd()

	require.NoError(t, cmd.Flags().Set("auth-token", "from-flag"))

	mergeFlags(cmd, cfg)
	assert.Equal(t, "from-flag", cfg.AuthToken)
}

func TestMergeFlags_unchangedFlags_preserveConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.DatabaseURL = "libsql://original.turso.io"
	cfg.AuthToken = "original"

	mergeFlags(newConfigCmd(), cfg)
	assert.Equal(t, "libsql://original.turso.io", cfg.DatabaseURL)
	assert.Equal(t, "original", cfg.AuthToken)
}

func TestLoadConfig_missingFile_usesDefaults(t *testing.T) { // not parallel: mutates global AppConfig and env
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })
	t.Setenv(config.EnvDatabaseURL, "")

	require.NoError(t, loadConfig(newConfigCmd()))
	require.NotNil(t, AppConfig)
	assert.Equal(t, config.DefaultStatementTimeout, AppConfig.StatementTimeout)
	assert.Empty(t, AppConfig.DatabaseURL)
}

func TestLoadConfig_precedence_flagOverEnvOverDotEnvOverFile(t *testing.T) { // not parallel: mutates global AppConfig and env
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "voice-schema.yml")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"database_url: libsql://file.turso.io\nauth_token: file-token\nstatement_timeout: 45s\n"), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte(
		"TURSO_DATABASE_URL=libsql://dotenv.turso.io\nTURSO_AUTH_TOKEN=dotenv-token\n"), 0o600))

	t.Setenv(config.EnvDatabaseURL, "libsql://env.turso.io")
	t.Setenv(config.EnvAuthToken, "")
	require.NoError(t, os.Unsetenv(config.EnvAuthToken)) // let the .env value apply

	cmd := newConfigCmd()
	require.NoError(t, cmd.Flags().Set("config", cfgPath))
	require.NoError(t, cmd.Flags().Set("env-file", envPath))
	require.NoError(t, cmd.Flags().Set("auth-token", "flag-token"))

	require.NoError(t, loadConfig(cmd))
	assert.Equal(t, "libsql://env.turso.io", AppConfig.DatabaseURL, "environment beats .env and file")
	assert.Equal(t, "flag-token", AppConfig.AuthToken, "flag beats .env")
	assert.Equal(t, "45s", AppConfig.StatementTimeout.String())
}

func TestLoadConfig_invalidFile_returnsError(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	cfgPath := filepath.Join(t.TempDir(), "bad-config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("lock_timeout: [unclosed"), 0o600))

	cmd := newConfigCmd()
	require.NoError(t, cmd.Flags().Set("config", cfgPath))

	err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestLoadConfig_explicitMissingEnvFile_returnsError(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	cmd := newConfigCmd()
	require.NoError(t, cmd.Flags().Set("env-file", filepath.Join(t.TempDir(), "absent.env")))

	err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestResolveDriver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		token   string
		want    database.Driver
		wantErr error
	}{
		{name: "libsql with token", url: "libsql://db.turso.io", token: "t", want: database.DriverLibSQL},
		{name: "libsql without token", url: "libsql://db.turso.io", wantErr: config.ErrAuthTokenRequired},
		{name: "missing url", token: "t", wantErr: config.ErrDatabaseURLRequired},
		{name: "local file without token", url: "file:voice.db", want: database.DriverSQLite},
		{name: "postgres without token", url: "postgres://localhost/voice", want: database.DriverPostgres},
		{name: "unsupported scheme", url: "mysql://localhost/voice", wantErr: database.ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.New()
			cfg.DatabaseURL = tt.url
			cfg.AuthToken = tt.token

			drv, err := resolveDriver(cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, drv)
		})
	}
}

func TestResolveDriver_missingURL_mentionsEnvironmentVariable(t *testing.T) {
	t.Parallel()

	_, err := resolveDriver(config.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TURSO_DATABASE_URL")
}
