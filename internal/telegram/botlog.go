package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Adda-Baaj/khobor-bot/internal/logger"
)

// botLogger routes the library's own log lines into the structured logger.
type botLogger struct {
	log logger.Logger
}

// InstallLogger makes tgbotapi write through log. It is process-wide.
func InstallLogger(log logger.Logger) error {
	if log == nil {
		log = logger.NopLogger{}
	}
	if err := tgbotapi.SetLogger(botLogger{log: log}); err != nil {
		return fmt.Errorf("install telegram logger: %w", err)
	}
	return nil
}

func (l botLogger) Println(v ...interface{}) {
	l.emit(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.emit(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func (l botLogger) emit(line string) {
	l.log.DebugObj(line, "telegram_library", nil)
}
