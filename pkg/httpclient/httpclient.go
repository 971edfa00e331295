package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "khobor-bot/1.0 (+https://github.com/Adda-Baaj/khobor-bot)"

// Client is the minimal HTTP surface used by API clients and sinks.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error)
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (*resty.Response, error)
}

type restyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a Client backed by resty with the given timeout.
// Retries are left disabled.
func NewRestyClient(timeout time.Duration) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent)
	return &restyClient{rc: rc}
}

// NewFromResty wraps a preconfigured resty client.
func NewFromResty(rc *resty.Client) Client {
	if rc == nil {
		rc = resty.New()
	}
	return &restyClient{rc: rc}
}

// Get issues a GET request; non-2xx responses are returned without error.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	return c.Do(ctx, resty.MethodGet, url, headers, nil)
}

// Do issues a request with an optional body. Structs and maps are sent as JSON.
func (c *restyClient) Do(ctx context.Context, method, url string, headers map[string]string, body any) (*resty.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req := c.rc.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	return req.Execute(method, url)
}
