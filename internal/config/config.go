package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultConfigFile       = "voice-schema.yml"
	DefaultEnvFile          = ".env"
	DefaultLockTimeout      = 5 * time.Second
	DefaultStatementTimeout = 30 * time.Second
)

// Environment variable names.
const (
	EnvDatabaseURL      = "TURSO_DATABASE_URL"
	EnvAuthToken        = "TURSO_AUTH_TOKEN" //nolint:gosec // variable name, not a credential
	EnvStatementTimeout = "VOICE_SCHEMA_STATEMENT_TIMEOUT"
	EnvLockTimeout      = "VOICE_SCHEMA_LOCK_TIMEOUT"
)

// Config holds the application configuration loaded from file, .env,
// environment, and flags.
type Config struct {
	DatabaseURL      string
	AuthToken        string
	LockTimeout      time.Duration
	StatementTimeout time.Duration
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	DatabaseURL      string `yaml:"database_url"`
	AuthToken        string `yaml:"auth_token"`
	LockTimeout      string `yaml:"lock_timeout"`
	StatementTimeout string `yaml:"statement_timeout"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		LockTimeout:      DefaultLockTimeout,
		StatementTimeout: DefaultStatementTimeout,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.AuthToken != "" {
		cfg.AuthToken = raw.AuthToken
	}

	if raw.LockTimeout != "" {
		d, err := time.ParseDuration(raw.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing lock_timeout %q: %w", raw.LockTimeout, err)
		}

		cfg.LockTimeout = d
	}

	if raw.StatementTimeout != "" {
		d, err := time.ParseDuration(raw.StatementTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing statement_timeout %q: %w", raw.StatementTimeout, err)
		}

		cfg.StatementTimeout = d
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("loading env file %s: %w", path, err)
	}

	return nil
}

// MergeEnv overrides config fields from TURSO_* and VOICE_SCHEMA_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv(EnvAuthToken); v != "" {
		cfg.AuthToken = v
	}

	if v := os.Getenv(EnvLockTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LockTimeout = d
		}
	}

	if v := os.Getenv(EnvStatementTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StatementTimeout = d
		}
	}
}

// Validate checks the connection settings. The auth token is only required
// when the target needs one (remote libSQL); the URL is always required.
func (c *Config) Validate(requireToken bool) error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}

	if requireToken && c.AuthToken == "" {
		return ErrAuthTokenRequired
	}

	return nil
}
