// Package bot turns chat command invocations into Datanews lookups and replies.
package bot

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-bot/internal/domain"
	"github.com/Adda-Baaj/khobor-bot/internal/logger"
	"github.com/Adda-Baaj/khobor-bot/pkg/datanews"
	"github.com/Adda-Baaj/khobor-bot/pkg/publishers"
)

// Command names understood by the router.
const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandSearch    = "search"
	CommandPublisher = "publisher"
)

// MessageRef points at a chat message that can be replied to.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Invocation is one incoming chat message as seen by the router.
// Command is empty for plain text messages.
type Invocation struct {
	Command string
	Args    []string
	Text    string
	Origin  MessageRef
}

// Replier sends messages back through the chat transport.
type Replier interface {
	ReplyText(ctx context.Context, to MessageRef, text string) (MessageRef, error)
	ReplyMarkdown(ctx context.Context, to MessageRef, text string) (MessageRef, error)
}

// Searcher runs headline searches.
type Searcher interface {
	Headlines(ctx context.Context, q datanews.Query) (domain.Result, error)
}

// EventPublisher receives an audit event after headlines are delivered.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) error
}

// HandlerFunc handles one invocation.
type HandlerFunc func(ctx context.Context, rep Replier, inv Invocation) error

var defaultHelpPattern = regexp.MustCompile(`(?i)help`)

// Router dispatches invocations to handlers through a table built once in New.
type Router struct {
	searcher    Searcher
	events      EventPublisher
	log         logger.Logger
	now         func() time.Time
	helpPattern *regexp.Regexp
	commands    map[string]HandlerFunc
}

// Option customizes a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// WithEvents sets where delivery events go.
func WithEvents(events EventPublisher) Option {
	return func(r *Router) { r.events = events }
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a Router that queries searcher.
func New(searcher Searcher, opts ...Option) *Router {
	r := &Router{
		searcher:    searcher,
		log:         logger.NopLogger{},
		now:         time.Now,
		helpPattern: defaultHelpPattern,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.commands = map[string]HandlerFunc{
		CommandStart:     r.help,
		CommandHelp:      r.help,
		CommandSearch:    r.search,
		CommandPublisher: r.publisher,
	}
	return r
}

// Commands lists the registered command names in sorted order.
func (r *Router) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Handle dispatches one invocation. Unknown commands and text without a help
// trigger are ignored. Errors from the API or the transport are returned as is.
func (r *Router) Handle(ctx context.Context, rep Replier, inv Invocation) error {
	if inv.Command != "" {
		h, ok := r.commands[strings.ToLower(inv.Command)]
		if !ok {
			r.log.DebugObj("ignoring unknown command", "command_unknown", map[string]any{
				"command": inv.Command,
				"chat_id": inv.Origin.ChatID,
			})
			return nil
		}
		return h(ctx, rep, inv)
	}

	if r.helpPattern.MatchString(inv.Text) {
		return r.help(ctx, rep, inv)
	}
	return nil
}
