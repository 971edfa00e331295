package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/khobor-bot/internal/domain"
	"github.com/Adda-Baaj/khobor-bot/pkg/datanews"
	"github.com/Adda-Baaj/khobor-bot/pkg/publishers"
)

// User-facing replies for the known failure shapes.
const (
	MessageInvalidKey = "API key is invalid"
	MessageNoResults  = "No news is good news"
)

// Usage is the fixed help text, sent as Markdown.
var Usage = strings.Join([]string{
	"/" + CommandHelp + " - show help",
	"/" + CommandSearch + ` <query> - retrieve news articles containing <query>. Example: "/` + CommandSearch + ` covid"`,
	"/" + CommandPublisher + ` <domain> - retrieve newest articles by publisher. Example: "/` + CommandPublisher + ` techcrunch.com"`,
}, "\n") + "\n"

// fetchMode says how the quoted argument string reaches the API.
type fetchMode struct {
	name  string
	query func(string) datanews.Query
}

var (
	modeQuery  = fetchMode{name: "query", query: datanews.TextQuery}
	modeSource = fetchMode{name: "source", query: datanews.SourceQuery}
)

func (r *Router) help(ctx context.Context, rep Replier, inv Invocation) error {
	_, err := rep.ReplyMarkdown(ctx, inv.Origin, Usage)
	return err
}

func (r *Router) search(ctx context.Context, rep Replier, inv Invocation) error {
	return r.fetch(ctx, rep, inv, modeQuery)
}

func (r *Router) publisher(ctx context.Context, rep Replier, inv Invocation) error {
	return r.fetch(ctx, rep, inv, modeSource)
}

// quoteArgs joins tokens with single spaces and wraps them in double quotes.
func quoteArgs(args []string) string {
	return `"` + strings.Join(args, " ") + `"`
}

// formatArticle renders one hit as "<title>: <url>".
func formatArticle(a domain.Article) string {
	return a.Title + ": " + a.URL
}

// fetch runs one lookup and replies with its outcome. Hits are sent last to
// first, each one replying to the message sent before it.
func (r *Router) fetch(ctx context.Context, rep Replier, inv Invocation, mode fetchMode) error {
	if len(inv.Args) == 0 {
		return r.help(ctx, rep, inv)
	}

	query := quoteArgs(inv.Args)
	res, err := r.searcher.Headlines(ctx, mode.query(query))
	if err != nil {
		return fmt.Errorf("%s %s: %w", inv.Command, query, err)
	}

	r.log.DebugObj("headlines fetched", "headlines_fetched", map[string]any{
		"command": inv.Command,
		"mode":    mode.name,
		"query":   query,
		"status":  res.Status,
		"hits":    len(res.Hits),
	})

	switch {
	case res.Status == http.StatusUnauthorized:
		_, err = rep.ReplyText(ctx, inv.Origin, MessageInvalidKey)
		return err
	case len(res.Hits) == 0:
		_, err = rep.ReplyText(ctx, inv.Origin, MessageNoResults)
		return err
	}

	last := inv.Origin
	for i := len(res.Hits) - 1; i >= 0; i-- {
		sent, err := rep.ReplyText(ctx, last, formatArticle(res.Hits[i]))
		if err != nil {
			return fmt.Errorf("send article %d of %d: %w", len(res.Hits)-i, len(res.Hits), err)
		}
		last = sent
	}

	r.publishDelivery(ctx, inv, mode, query, res)
	return nil
}

// publishDelivery reports a delivered result set. Failures are only logged.
func (r *Router) publishDelivery(ctx context.Context, inv Invocation, mode fetchMode, query string, res domain.Result) {
	if r.events == nil {
		return
	}

	evt := publishers.Event{
		Command:     strings.ToLower(inv.Command),
		Mode:        mode.name,
		Query:       query,
		ChatID:      inv.Origin.ChatID,
		Status:      res.Status,
		Articles:    res.Hits,
		DeliveredAt: r.now().UTC(),
	}
	if err := r.events.Publish(ctx, evt); err != nil {
		r.log.WarnObj("delivery event not published", "delivery_event_error", map[string]any{
			"command": evt.Command,
			"chat_id": evt.ChatID,
			"error":   err.Error(),
		})
	}
}
