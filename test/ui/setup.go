// setup.go - test environment loading and results directory handling for the
// Salesforce UI suite. NOTE: This is NOT a test file - it contains shared test
// infrastructure.

package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
)

// TestEnvironment holds the suite configuration and the per-test results
// directory.
type TestEnvironment struct {
	Config     *common.Config
	ResultsDir string
	TestLog    *os.File
}

// LoadSuiteConfig loads the suite configuration. The runner passes the active
// environment and results directory through MANABIE_ENV and TEST_RESULTS_DIR;
// a local config.toml in this directory fills in the rest.
func LoadSuiteConfig() (*common.Config, error) {
	config := common.NewDefaultConfig()

	configPath := filepath.Join(".", "config.toml")
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	if env := os.Getenv("MANABIE_ENV"); env != "" {
		config.Environment = env
	}
	if dir := os.Getenv("MANABIE_AUTH_STORAGE_DIR"); dir != "" {
		config.Auth.StorageDir = dir
	}
	if dir := os.Getenv("MANABIE_LOCATORS_DIR"); dir != "" {
		config.Locators.Dir = dir
	}

	return config, nil
}

// SetupTestEnvironment prepares the results directory for one test. When the
// runner provides TEST_RESULTS_DIR the test writes there; otherwise a
// {test-name}-{datetime} directory is created locally.
func SetupTestEnvironment(testName string) (*TestEnvironment, error) {
	config, err := LoadSuiteConfig()
	if err != nil {
		return nil, err
	}

	resultsDir := os.Getenv("TEST_RESULTS_DIR")
	if resultsDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		resultsDir = filepath.Join(config.Runner.ResultsBaseDir, fmt.Sprintf("%s-%s", testName, timestamp))
	}
	if err := os.MkdirAll(filepath.Join(resultsDir, "screenshots"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	testLogPath := filepath.Join(resultsDir, fmt.Sprintf("%s.log", testName))
	testLog, err := os.Create(testLogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create test log file: %w", err)
	}

	return &TestEnvironment{
		Config:     config,
		ResultsDir: resultsDir,
		TestLog:    testLog,
	}, nil
}

// Cleanup closes the test log.
func (env *TestEnvironment) Cleanup() {
	if env.TestLog != nil {
		env.TestLog.Close()
	}
}

// LogTest writes a message to both the test log file and the test output.
func (env *TestEnvironment) LogTest(t *testing.T, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")

	if env.TestLog != nil {
		fmt.Fprintf(env.TestLog, "[%s] %s\n", timestamp, msg)
	}
	t.Log(msg)
}

// requireUITests skips the test unless the suite is explicitly enabled. The
// suite needs Chrome, a reachable Salesforce org, and real credentials, so it
// never runs as part of the plain unit-test cycle.
func requireUITests(t *testing.T) {
	t.Helper()
	if os.Getenv("MANABIE_UI_TESTS") == "" {
		t.Skip("Set MANABIE_UI_TESTS=1 to run browser tests")
	}
}
