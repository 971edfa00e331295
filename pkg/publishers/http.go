package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-bot/pkg/httpclient"
)

// httpPublisher posts events as JSON to a webhook.
type httpPublisher struct {
	id      string
	typ     string
	url     string
	method  string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range cfg.HTTP.Headers {
		headers[k] = v
	}

	return &httpPublisher{
		id:      cfg.ID,
		typ:     cfg.Type,
		url:     cfg.HTTP.URL,
		method:  cfg.HTTP.Method,
		headers: headers,
		client:  httpclient.NewRestyClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return p.typ }

// Publish sends the event; any non-2xx response is an error.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := p.client.Do(ctx, p.method, p.url, p.headers, evt)
	if err != nil {
		return fmt.Errorf("http publish: %w", err)
	}
	if resp.IsError() || resp.StatusCode() >= 300 {
		return fmt.Errorf("http publish returned status %d", resp.StatusCode())
	}

	p.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": p.id,
		"status":       resp.StatusCode(),
	})
	return nil
}
