//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	APIEndpoint  string
	SiteEndpoint string
	Username     string
	Password     string
	ScratchPath  string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint:  os.Getenv("SCRATCH_API"),
		SiteEndpoint: os.Getenv("SCRATCH_SITE"),
		Username:     os.Getenv("SCRATCH_TEST_USERNAME"),
		Password:     os.Getenv("SCRATCH_TEST_PASSWORD"),
		ScratchPath:  getScratchPath(),
		Verbose:      os.Getenv("SCRATCH_VERBOSE") == "true",
	}
}

// getScratchPath determines the path to the scratch binary
func getScratchPath() string {
	if path := os.Getenv("SCRATCH_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../scratch",
		"./scratch",
		"../scratch",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "scratch" // Fallback to PATH
}

// SkipUnlessEnabled skips the test unless live tests were requested.
func (config *TestConfig) SkipUnlessEnabled(t *testing.T) {
	t.Helper()

	if os.Getenv("SCRATCH_INTEGRATION") != "1" {
		t.Skip("SCRATCH_INTEGRATION not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the scratch binary is not built.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.ScratchPath); err != nil {
		t.Skipf("scratch binary not found at %s, skipping integration test", config.ScratchPath)
	}
}

// SkipIfMissingCredentials skips tests that need to log in.
func (config *TestConfig) SkipIfMissingCredentials(t *testing.T) {
	t.Helper()

	if config.Username == "" || config.Password == "" {
		t.Skip("SCRATCH_TEST_USERNAME or SCRATCH_TEST_PASSWORD not set, skipping login test")
	}
}

// CommandRunner provides utilities for running scratch commands
type CommandRunner struct {
	config      *TestConfig
	t           *testing.T
	sessionFile string
}

// NewCommandRunner creates a runner with its own session file
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:      config,
		t:           t,
		sessionFile: filepath.Join(t.TempDir(), ".scratchSession"),
	}
}

// Run executes a scratch command and returns output
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a scratch command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	global := []string{"--session-file", runner.sessionFile}
	if runner.config.APIEndpoint != "" {
		global = append(global, "--api", runner.config.APIEndpoint)
	}

	if runner.config.SiteEndpoint != "" {
		global = append(global, "--site", runner.config.SiteEndpoint)
	}

	// #nosec G204
	cmd := exec.Command(runner.config.ScratchPath, append(global, args...)...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.ScratchPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}
