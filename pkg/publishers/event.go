package publishers

import (
	"context"
	"time"

	"github.com/Adda-Baaj/khobor-bot/internal/domain"
	"github.com/Adda-Baaj/khobor-bot/internal/logger"
)

// Logger is the structured logger used by sinks.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}

// Event records one successful delivery of headlines to a chat.
type Event struct {
	Command     string           `json:"command"`
	Mode        string           `json:"mode"`
	Query       string           `json:"query"`
	ChatID      int64            `json:"chat_id"`
	Status      int              `json:"status"`
	Articles    []domain.Article `json:"articles"`
	DeliveredAt time.Time        `json:"delivered_at"`
}

// attributes are attached to queue messages for routing and filtering.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"command": e.Command,
		"mode":    e.Mode,
	}
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
