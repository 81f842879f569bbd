package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

// Config represents the suite configuration. Loaded with priority:
// defaults -> config file(s) -> environment variables -> CLI flags.
type Config struct {
	// Environment selects the active target deployment by name.
	Environment string `toml:"environment" validate:"required"`

	Auth         AuthConfig           `toml:"auth"`
	Environments []models.Environment `toml:"environments" validate:"min=1,dive"`
	Users        []UserConfig         `toml:"users"`
	Logging      LoggingConfig        `toml:"logging"`
	Runner       RunnerConfig         `toml:"runner"`
	Server       ServerConfig         `toml:"server"`
	Storage      StorageConfig        `toml:"storage"`
	Qase         QaseConfig           `toml:"qase"`
	Locators     LocatorsConfig       `toml:"locators"`
}

// AuthConfig controls the credential cache and login flow.
type AuthConfig struct {
	// StorageDir holds one storageState.<env>.json file per environment.
	StorageDir string `toml:"storage_dir" validate:"required"`
	// MaxAgeSeconds is the coarse age cap for a cached record (default 24h).
	MaxAgeSeconds int64 `toml:"max_age_seconds" validate:"gt=0"`
	// UserType selects which login the suite runs as.
	UserType string `toml:"user_type"`
	// LoginTimeoutSeconds bounds the wait for the post-login signal.
	LoginTimeoutSeconds int `toml:"login_timeout_seconds" validate:"gt=0"`
	// Headless controls the browser used for the refresh login flow.
	Headless bool `toml:"headless"`
}

// UserConfig maps (environment, user type) to a login. The password is never
// stored in the file; PasswordEnv names the environment variable holding it.
type UserConfig struct {
	Environment string `toml:"environment" validate:"required"`
	UserType    string `toml:"user_type" validate:"required"`
	Username    string `toml:"username" validate:"required"`
	PasswordEnv string `toml:"password_env" validate:"required"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// RunnerConfig controls suite execution and reporting artifacts.
type RunnerConfig struct {
	Suites         []SuiteConfig `toml:"suites"`
	ResultsBaseDir string        `toml:"results_base_dir" validate:"required"`
	// Schedule is an optional cron expression for scheduled mode.
	Schedule string `toml:"schedule"`
	// PDFReport enables the end-of-run PDF summary.
	PDFReport bool `toml:"pdf_report"`
}

// SuiteConfig names one `go test` package directory to execute.
type SuiteConfig struct {
	Name string `toml:"name" validate:"required"`
	Path string `toml:"path" validate:"required"`
}

// ServerConfig controls the local status server started by the runner.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig holds the run-history database settings.
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// QaseConfig holds the test-management reporting settings. The client is
// disabled when APIToken resolves empty.
type QaseConfig struct {
	BaseURL     string `toml:"base_url"`
	ProjectCode string `toml:"project_code"`
	// APITokenEnv names the environment variable holding the API token.
	APITokenEnv string `toml:"api_token_env"`
	RateLimit   int    `toml:"rate_limit"`
}

// LocatorsConfig points at optional YAML locator-table overrides.
type LocatorsConfig struct {
	Dir string `toml:"dir"`
}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "staging",
		Auth: AuthConfig{
			StorageDir:          "./storage",
			MaxAgeSeconds:       86400,
			UserType:            string(models.UserTypeAdmin),
			LoginTimeoutSeconds: 90,
			Headless:            true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Runner: RunnerConfig{
			ResultsBaseDir: "./results",
			PDFReport:      true,
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    8091,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Qase: QaseConfig{
			BaseURL:     "https://api.qase.io/v1",
			APITokenEnv: "QASE_API_TOKEN",
			RateLimit:   5,
		},
	}
}

// LoadFromFiles loads configuration from one or more TOML files. Later files
// override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies MANABIE_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MANABIE_ENV"); env != "" {
		config.Environment = env
	}
	if dir := os.Getenv("MANABIE_AUTH_STORAGE_DIR"); dir != "" {
		config.Auth.StorageDir = dir
	}
	if maxAge := os.Getenv("MANABIE_AUTH_MAX_AGE_SECONDS"); maxAge != "" {
		if v, err := strconv.ParseInt(maxAge, 10, 64); err == nil && v > 0 {
			config.Auth.MaxAgeSeconds = v
		}
	}
	if userType := os.Getenv("MANABIE_USER_TYPE"); userType != "" {
		config.Auth.UserType = userType
	}
	if headless := os.Getenv("MANABIE_HEADLESS"); headless != "" {
		if v, err := strconv.ParseBool(headless); err == nil {
			config.Auth.Headless = v
		}
	}
	if level := os.Getenv("MANABIE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if port := os.Getenv("MANABIE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if path := os.Getenv("MANABIE_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if dir := os.Getenv("MANABIE_RESULTS_DIR"); dir != "" {
		config.Runner.ResultsBaseDir = dir
	}
	if code := os.Getenv("MANABIE_QASE_PROJECT"); code != "" {
		config.Qase.ProjectCode = code
	}
	if dir := os.Getenv("MANABIE_LOCATORS_DIR"); dir != "" {
		config.Locators.Dir = dir
	}
}

// Validate checks the configuration for structural problems and verifies the
// active environment is actually defined.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.ActiveEnvironment(); err != nil {
		return err
	}
	return nil
}

// ActiveEnvironment returns the environment selected by c.Environment.
func (c *Config) ActiveEnvironment() (*models.Environment, error) {
	for i := range c.Environments {
		if c.Environments[i].Name == c.Environment {
			return &c.Environments[i], nil
		}
	}
	return nil, fmt.Errorf("environment %q is not defined in configuration", c.Environment)
}

// MaxAge returns the cache age cap as a duration.
func (c *AuthConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}

// LoginTimeout returns the post-login wait bound as a duration.
func (c *AuthConfig) LoginTimeout() time.Duration {
	return time.Duration(c.LoginTimeoutSeconds) * time.Second
}

// QaseToken resolves the reporting API token from the configured variable.
func (c *QaseConfig) QaseToken() string {
	if c.APITokenEnv == "" {
		return ""
	}
	return os.Getenv(c.APITokenEnv)
}
