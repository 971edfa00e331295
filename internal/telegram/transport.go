package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Adda-Baaj/khobor-bot/internal/bot"
	"github.com/Adda-Baaj/khobor-bot/internal/logger"
	"github.com/Adda-Baaj/khobor-bot/internal/session"
)

const (
	defaultPollTimeout = 60
	defaultPollPause   = 3 * time.Second
)

// API is the subset of *tgbotapi.BotAPI used by the transport.
type API interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler processes one invocation.
type Handler interface {
	Handle(ctx context.Context, rep bot.Replier, inv bot.Invocation) error
}

// Store persists polling state between restarts.
type Store interface {
	Offset() (int, error)
	SetOffset(offset int) error
	TouchChat(id int64, title string, at time.Time) (session.Chat, error)
}

// Options tunes polling.
type Options struct {
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int
	// PollPause is how long to wait after a failed getUpdates call.
	PollPause time.Duration
	Log       logger.Logger
}

// Transport long-polls Telegram and feeds messages to a Handler one at a time.
type Transport struct {
	api     API
	handler Handler
	store   Store
	log     logger.Logger

	pollTimeout int
	pollPause   time.Duration
	now         func() time.Time
	offset      int
}

// New builds a Transport. store may be nil, in which case the offset lives in memory.
func New(api API, handler Handler, store Store, opts Options) *Transport {
	t := &Transport{
		api:         api,
		handler:     handler,
		store:       store,
		log:         opts.Log,
		pollTimeout: opts.PollTimeout,
		pollPause:   opts.PollPause,
		now:         time.Now,
	}
	if t.log == nil {
		t.log = logger.NopLogger{}
	}
	if t.pollTimeout <= 0 {
		t.pollTimeout = defaultPollTimeout
	}
	if t.pollPause <= 0 {
		t.pollPause = defaultPollPause
	}
	return t
}

// Run polls until ctx is cancelled. Failures of single invocations are logged
// and never stop the loop.
func (t *Transport) Run(ctx context.Context) error {
	if t.store != nil {
		off, err := t.store.Offset()
		if err != nil {
			return fmt.Errorf("load update offset: %w", err)
		}
		t.offset = off
	}

	t.log.InfoObj("telegram polling started", "polling_start", map[string]any{
		"offset":       t.offset,
		"poll_timeout": t.pollTimeout,
	})

	for {
		if err := ctx.Err(); err != nil {
			t.log.InfoObj("telegram polling stopped", "polling_stop", nil)
			return nil
		}

		if err := t.poll(ctx); err != nil {
			t.log.WarnObj("telegram getUpdates failed", "polling_error", map[string]any{
				"error": err.Error(),
			})
			select {
			case <-ctx.Done():
			case <-time.After(t.pollPause):
			}
		}
	}
}

// poll fetches one batch of updates and dispatches them in order.
func (t *Transport) poll(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(t.offset)
	cfg.Timeout = t.pollTimeout
	cfg.AllowedUpdates = []string{"message"}

	updates, err := t.api.GetUpdates(cfg)
	if err != nil {
		return err
	}

	for _, u := range updates {
		if u.UpdateID < t.offset {
			continue
		}
		t.dispatch(ctx, u)
		t.advance(u.UpdateID + 1)
	}
	return nil
}

func (t *Transport) advance(next int) {
	t.offset = next
	if t.store == nil {
		return
	}
	if err := t.store.SetOffset(next); err != nil {
		t.log.WarnObj("update offset not persisted", "offset_persist_error", map[string]any{
			"offset": next,
			"error":  err.Error(),
		})
	}
}

// dispatch runs the handler for one update inside its own recover boundary.
func (t *Transport) dispatch(ctx context.Context, u tgbotapi.Update) {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	fields := map[string]any{
		"update_id":  u.UpdateID,
		"chat_id":    msg.Chat.ID,
		"message_id": msg.MessageID,
	}

	defer func() {
		if rec := recover(); rec != nil {
			fields["panic"] = fmt.Sprint(rec)
			fields["stack"] = string(debug.Stack())
			t.log.ErrorObj("invocation panicked", "invocation_panic", fields)
		}
	}()

	if t.store != nil {
		if _, err := t.store.TouchChat(msg.Chat.ID, chatTitle(msg.Chat), t.now().UTC()); err != nil {
			t.log.WarnObj("chat not recorded", "chat_persist_error", map[string]any{
				"chat_id": msg.Chat.ID,
				"error":   err.Error(),
			})
		}
	}

	inv := InvocationFromMessage(msg)
	fields["command"] = inv.Command
	t.log.DebugObj("invocation received", "invocation_received", fields)

	if err := t.handler.Handle(ctx, t, inv); err != nil {
		fields["error"] = err.Error()
		t.log.ErrorObj("invocation failed", "invocation_error", fields)
	}
}

// InvocationFromMessage converts a Telegram message into a router invocation.
func InvocationFromMessage(msg *tgbotapi.Message) bot.Invocation {
	inv := bot.Invocation{
		Text:   msg.Text,
		Origin: bot.MessageRef{MessageID: msg.MessageID},
	}
	if msg.Chat != nil {
		inv.Origin.ChatID = msg.Chat.ID
	}
	if msg.IsCommand() {
		inv.Command = msg.Command()
		inv.Args = strings.Fields(msg.CommandArguments())
	}
	return inv
}

func chatTitle(c *tgbotapi.Chat) string {
	if c.Title != "" {
		return c.Title
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ReplyText sends text as a reply to the referenced message.
func (t *Transport) ReplyText(_ context.Context, to bot.MessageRef, text string) (bot.MessageRef, error) {
	return t.send(to, text, "")
}

// ReplyMarkdown sends Markdown-formatted text as a reply to the referenced message.
func (t *Transport) ReplyMarkdown(_ context.Context, to bot.MessageRef, text string) (bot.MessageRef, error) {
	return t.send(to, text, tgbotapi.ModeMarkdown)
}

func (t *Transport) send(to bot.MessageRef, text, parseMode string) (bot.MessageRef, error) {
	msg := tgbotapi.NewMessage(to.ChatID, text)
	msg.ReplyToMessageID = to.MessageID
	msg.ParseMode = parseMode

	sent, err := t.api.Send(msg)
	if err != nil {
		return bot.MessageRef{}, fmt.Errorf("send message to chat %d: %w", to.ChatID, err)
	}

	ref := bot.MessageRef{ChatID: to.ChatID, MessageID: sent.MessageID}
	if sent.Chat != nil {
		ref.ChatID = sent.Chat.ID
	}
	return ref, nil
}
