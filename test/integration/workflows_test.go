//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkflow_AnonymousAccess reads public data with an anonymous token
func TestWorkflow_AnonymousAccess(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("get", "marketplace/show", "--output", "json")
	require.NoError(t, err, "Failed to show marketplace: %s", stderr)
	AssertJSONOutput(t, stdout)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Contains(t, payload, "data")

	stdout, stderr, err = runner.Run("auth-info", "--output", "json")
	require.NoError(t, err, "Failed to read auth info: %s", stderr)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, true, info["isAnonymous"])
	assert.Equal(t, "client_credentials", info["grantType"])
}

// TestWorkflow_QueryWithParams sends query parameters and includes
func TestWorkflow_QueryWithParams(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("get", "listings/query", "perPage=1", "include=author", "--output", "yaml")
	require.NoError(t, err, "Failed to query listings: %s", stderr)
	AssertYAMLOutput(t, stdout)
	assert.Contains(t, stdout, "meta:")
}

// TestWorkflow_UserSession logs in, reads the current user and logs out
func TestWorkflow_UserSession(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfNoUser(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.RunWithInput(config.Password+"\n", "login", "--username", config.Username)
	require.NoError(t, err, "Failed to login: %s", stderr)
	assert.Contains(t, stdout, "Login successful")

	stdout, stderr, err = runner.Run("token", "show", "--output", "json")
	require.NoError(t, err, "Failed to show token: %s", stderr)
	assert.Contains(t, stdout, `"refresh_token_available": true`)

	stdout, stderr, err = runner.Run("get", "current_user/show", "--output", "json")
	require.NoError(t, err, "Failed to show current user: %s", stderr)
	assert.Contains(t, stdout, config.Username)

	stdout, stderr, err = runner.Run("logout")
	require.NoError(t, err, "Failed to logout: %s", stderr)
	assert.Contains(t, stdout, "Logged out")

	_, _, err = runner.Run("token", "show")
	assert.Error(t, err, "token show should fail after logout")
}

// TestWorkflow_OutputFormats checks every output format of a local command
func TestWorkflow_OutputFormats(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("version", "--output", "json")
	require.NoError(t, err, "Failed to show version: %s", stderr)
	AssertJSONOutput(t, stdout)

	stdout, stderr, err = runner.Run("version", "--output", "yaml")
	require.NoError(t, err, "Failed to show version: %s", stderr)
	AssertYAMLOutput(t, stdout)

	stdout, stderr, err = runner.Run("config", "show")
	require.NoError(t, err, "Failed to show config: %s", stderr)
	assert.Contains(t, stdout, "Client ID")
}
