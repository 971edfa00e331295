package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "short and stout")
	}))
	defer srv.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"x-api-key": "secret"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode())
	assert.Equal(t, "short and stout", string(resp.Body()))
}

func TestDoSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var got map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "covid", got["query"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.Do(context.Background(), http.MethodPut, srv.URL, nil, map[string]string{"query": "covid"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
}

func TestGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewRestyClient(time.Second).Get(context.Background(), url, nil)
	require.Error(t, err)
}
