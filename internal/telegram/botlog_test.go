package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Adda-Baaj/khobor-bot/internal/logger"
)

func TestInstallLoggerRoutesLibraryOutput(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	require.NoError(t, InstallLogger(logger.FromZap(zap.New(core))))
	t.Cleanup(func() { _ = InstallLogger(nil) })

	l := botLogger{log: logger.FromZap(zap.New(core))}
	l.Printf("Endpoint: %s, params: %v\n", "getUpdates", 1)
	l.Println("Authorized on account", "khobor_bot")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Endpoint: getUpdates, params: 1", entries[0].Message)
	assert.Equal(t, "Authorized on account khobor_bot", entries[1].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "telegram_library", entries[0].ContextMap()["event"])
}

func TestInstallLoggerAcceptsNil(t *testing.T) {
	require.NoError(t, InstallLogger(nil))
	assert.Error(t, tgbotapi.SetLogger(nil))
}
