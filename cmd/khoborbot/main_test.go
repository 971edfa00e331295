package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-bot/internal/config"
)

func unsetCredentials(t *testing.T) {
	t.Helper()
	for _, k := range []string{"KHOBOR_DATANEWS_API_KEY", "KHOBOR_TELEGRAM_TOKEN"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestWrongArgumentCountPrintsUsage(t *testing.T) {
	for _, args := range [][]string{{"only-key"}, {"a", "b", "c"}} {
		var stderr bytes.Buffer
		cmd := newRootCmd(&stderr)
		cmd.SetArgs(args)

		err := cmd.ExecuteContext(context.Background())
		require.ErrorIs(t, err, errUsage)
		assert.Contains(t, stderr.String(), usageLine)
	}
}

func TestMissingCredentialsIsConfigError(t *testing.T) {
	unsetCredentials(t)

	var stderr bytes.Buffer
	cmd := newRootCmd(&stderr)
	cmd.SetArgs(nil)

	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.NotErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), usageLine)
}

func TestUnknownFlagPrintsUsage(t *testing.T) {
	var stderr bytes.Buffer
	cmd := newRootCmd(&stderr)
	cmd.SetArgs([]string{"--bogus"})

	require.ErrorIs(t, cmd.ExecuteContext(context.Background()), errUsage)
	assert.Contains(t, stderr.String(), usageLine)
}

func TestBuildSinks(t *testing.T) {
	sinks, err := buildSinks(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Zero(t, sinks.Len())

	path := filepath.Join(t.TempDir(), "publishers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
publishers:
  - id: hook
    type: http
    http:
      url: http://127.0.0.1:1/hook
  - id: off
    type: http
    enabled: false
    http:
      url: http://127.0.0.1:1/off
`), 0o600))

	sinks, err = buildSinks(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sinks.Len())

	_, err = buildSinks(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
