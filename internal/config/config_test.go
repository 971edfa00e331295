package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KHOBOR_DATANEWS_API_KEY", "KHOBOR_TELEGRAM_TOKEN", "KHOBOR_LOG_LEVEL",
		"KHOBOR_LOG_FORMAT", "KHOBOR_DATANEWS_TIMEOUT", "KHOBOR_SESSION_PATH",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadFromCredentials(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", Credentials{APIKey: " key ", Token: "123:abc"})
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Datanews.APIKey)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "https://api.datanews.io/v1", cfg.Datanews.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Datanews.Timeout)
	assert.Equal(t, 60, cfg.Telegram.PollTimeout)
	assert.Equal(t, "datanewsbot.db", cfg.Session.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Publishers.File)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("KHOBOR_DATANEWS_API_KEY", "env-key")
	t.Setenv("KHOBOR_TELEGRAM_TOKEN", "env-token")
	t.Setenv("KHOBOR_DATANEWS_TIMEOUT", "5s")
	t.Setenv("KHOBOR_LOG_LEVEL", "DEBUG")

	cfg, err := Load("", Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Datanews.APIKey)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, 5*time.Second, cfg.Datanews.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestCredentialsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("KHOBOR_DATANEWS_API_KEY", "env-key")

	cfg, err := Load("", Credentials{APIKey: "arg-key", Token: "arg-token"})
	require.NoError(t, err)
	assert.Equal(t, "arg-key", cfg.Datanews.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "khobor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
datanews:
  api_key: file-key
telegram:
  token: file-token
  poll_timeout: 30
session:
  path: /var/lib/khobor/session.db
publishers:
  file: /etc/khobor/publishers.yaml
log:
  format: console
`), 0o600))

	cfg, err := Load(path, Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Datanews.APIKey)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout)
	assert.Equal(t, "/var/lib/khobor/session.db", cfg.Session.Path)
	assert.Equal(t, "/etc/khobor/publishers.yaml", cfg.Publishers.File)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), Credentials{APIKey: "k", Token: "t"})
	require.Error(t, err)
}

func TestLoadMissingCredentials(t *testing.T) {
	clearEnv(t)

	_, err := Load("", Credentials{})
	require.ErrorIs(t, err, ErrMissingAPIKey)
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = Load("", Credentials{APIKey: "k"})
	require.ErrorIs(t, err, ErrMissingToken)
	assert.NotErrorIs(t, err, ErrMissingAPIKey)
}

func TestValidateEnumerations(t *testing.T) {
	cfg := Config{
		Datanews: DatanewsConfig{APIKey: "k", Timeout: time.Second},
		Telegram: TelegramConfig{Token: "t"},
		Log:      LogConfig{Level: "verbose", Format: "xml"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	assert.Contains(t, err.Error(), "invalid log format")
}
