//go:build integration
// +build integration

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
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	MktPath      string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:      os.Getenv("MKT_TEST_BASE_URL"),
		ClientID:     os.Getenv("MKT_TEST_CLIENT_ID"),
		ClientSecret: os.Getenv("MKT_TEST_CLIENT_SECRET"),
		Username:     os.Getenv("MKT_TEST_USERNAME"),
		Password:     os.Getenv("MKT_TEST_PASSWORD"),
		MktPath:      getMktPath(),
		Verbose:      os.Getenv("MKT_TEST_VERBOSE") == "true",
	}
}

// getMktPath determines the path to the mkt binary
func getMktPath() string {
	if path := os.Getenv("MKT_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../mkt",
		"./mkt",
		"../mkt",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "mkt" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.ClientID == "" {
		t.Skip("MKT_TEST_CLIENT_ID not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.MktPath); err != nil {
		t.Skipf("mkt binary not found at %s, skipping integration test", config.MktPath)
	}
}

// SkipIfNoUser skips test if no user credentials are configured
func (config *TestConfig) SkipIfNoUser(t *testing.T) {
	t.Helper()

	if config.Username == "" || config.Password == "" {
		t.Skip("MKT_TEST_USERNAME or MKT_TEST_PASSWORD not set, skipping")
	}
}

// CommandRunner runs mkt commands against an isolated config directory
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	dir    string
}

// NewCommandRunner creates a new command runner with its own config file
// and token store
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config: config,
		t:      t,
		dir:    t.TempDir(),
	}
}

func (runner *CommandRunner) command(args ...string) *exec.Cmd {
	fullArgs := append([]string{"--config", filepath.Join(runner.dir, "config.yml")}, args...)

	cmd := exec.Command(runner.config.MktPath, fullArgs...) //nolint:gosec // test binary path
	cmd.Env = append(os.Environ(),
		"MKT_CLIENT_ID="+runner.config.ClientID,
		"MKT_CLIENT_SECRET="+runner.config.ClientSecret,
		"MKT_TOKEN_STORE_TYPE=file",
		"MKT_TOKEN_STORE_PATH="+filepath.Join(runner.dir, "token.json"),
	)

	if runner.config.BaseURL != "" {
		cmd.Env = append(cmd.Env, "MKT_BASE_URL="+runner.config.BaseURL)
	}

	return cmd
}

// Run executes a mkt command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a mkt command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := runner.command(args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: mkt %s", strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return // Looks like YAML
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}
