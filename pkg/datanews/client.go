package datanews

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-bot/internal/domain"
	"github.com/Adda-Baaj/khobor-bot/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public Datanews v1 endpoint.
	DefaultBaseURL = "https://api.datanews.io/v1"
	// DefaultTimeout bounds a single headlines call.
	DefaultTimeout = 15 * time.Second

	apiKeyHeader = "x-api-key"
)

// Config holds the client settings.
type Config struct {
	APIKey  string
	BaseURL string
	// HTTP defaults to a resty client with DefaultTimeout.
	HTTP httpclient.Client
}

// Client calls the Datanews headlines endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    httpclient.Client
}

// New builds a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := cfg.HTTP
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
		http:    client,
	}
}

// DefaultHTTPClient returns a tuned client for Datanews calls.
func DefaultHTTPClient() httpclient.Client { return httpclient.NewRestyClient(DefaultTimeout) }

// Headlines runs one headline search.
//
// An unauthorized response is reported as a Result with Status 401 and no
// error so callers can tell the user about the key. Any other non-2xx status
// is an error.
func (c *Client) Headlines(ctx context.Context, q Query) (domain.Result, error) {
	if err := q.Validate(); err != nil {
		return domain.Result{}, err
	}

	endpoint := c.baseURL + "/headlines?" + q.Values().Encode()
	headers := map[string]string{
		apiKeyHeader: c.apiKey,
		"Accept":     "application/json",
	}

	resp, err := c.http.Get(ctx, endpoint, headers)
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch headlines: %w", err)
	}

	body := resp.Body()
	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized:
		return domain.Result{Status: http.StatusUnauthorized}, nil
	case code < 200 || code > 299:
		return domain.Result{}, fmt.Errorf("headlines returned status %d body: %s", code, responseSnippet(body))
	}

	return decodeHeadlines(body, resp.StatusCode())
}
