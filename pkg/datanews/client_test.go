package datanews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "key-123", BaseURL: srv.URL + "/"})
}

func TestHeadlinesSendsTextQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/headlines", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-api-key"))

		q := r.URL.Query()
		assert.Equal(t, `"covid"`, q.Get("q"))
		assert.Empty(t, q.Get("source"))
		assert.Equal(t, "10", q.Get("size"))
		assert.Equal(t, "date", q.Get("sortBy"))
		assert.Equal(t, "0", q.Get("page"))
		assert.Equal(t, "en", q.Get("language"))

		_, _ = io.WriteString(w, `{"numResults":2,"hits":[
			{"title":"A","url":"u1","source":"a.com","pubDate":"2020-03-27T13:52:00+00:00"},
			{"title":"B","url":"u2"}]}`)
	})

	res, err := c.Headlines(context.Background(), TextQuery(`"covid"`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "A", res.Hits[0].Title)
	assert.Equal(t, "u1", res.Hits[0].URL)
	assert.Equal(t, "a.com", res.Hits[0].Source)
	assert.Equal(t, time.Date(2020, 3, 27, 13, 52, 0, 0, time.UTC), res.Hits[0].PublishedAt.UTC())
	assert.Equal(t, "B", res.Hits[1].Title)
}

func TestHeadlinesSendsSource(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, `"techcrunch.com"`, q.Get("source"))
		assert.Empty(t, q.Get("q"))
		assert.Equal(t, "10", q.Get("size"))
		assert.Equal(t, "date", q.Get("sortBy"))
		assert.Equal(t, "0", q.Get("page"))
		assert.Equal(t, "en", q.Get("language"))
		_, _ = io.WriteString(w, `{"hits":[]}`)
	})

	res, err := c.Headlines(context.Background(), SourceQuery(`"techcrunch.com"`))
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestHeadlinesUnauthorizedIsResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":401,"message":"Invalid API key"}`)
	})

	res, err := c.Headlines(context.Background(), TextQuery(`"x"`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestHeadlinesBodyStatusWins(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":401,"hits":[{"title":"A","url":"u1"}]}`)
	})

	res, err := c.Headlines(context.Background(), TextQuery(`"x"`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestHeadlinesServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})

	_, err := c.Headlines(context.Background(), TextQuery(`"x"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestHeadlinesMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	})

	_, err := c.Headlines(context.Background(), TextQuery(`"x"`))
	require.Error(t, err)
}

func TestHeadlinesValidatesQuery(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Headlines(context.Background(), Query{})
	require.ErrorIs(t, err, ErrEmptyQuery)

	_, err = c.Headlines(context.Background(), Query{Q: "a", Source: "b"})
	require.ErrorIs(t, err, ErrAmbiguousQuery)
	assert.False(t, called)
}

func TestHeadlinesKeepsTitlesVerbatim(t *testing.T) {
	titles := []string{
		"Apple's <iPhone 16> launch & more",
		"Q&amp;A:  the   week",
		"AT&T <b>earnings</b>",
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits := make([]map[string]string, 0, len(titles))
		for i, title := range titles {
			hits = append(hits, map[string]string{
				"title":       title,
				"url":         fmt.Sprintf("u%d", i+1),
				"description": "<p>Tom &amp; Jerry</p>",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"status": 200, "hits": hits}))
	})

	res, err := c.Headlines(context.Background(), TextQuery(`"apple"`))
	require.NoError(t, err)
	require.Len(t, res.Hits, len(titles))
	for i, title := range titles {
		assert.Equal(t, title, res.Hits[i].Title)
		assert.Equal(t, "Tom & Jerry", res.Hits[i].Description)
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", plainText("Tom &amp; Jerry"))
	assert.Equal(t, "Breaking news today", plainText("<b>Breaking</b> news\n today"))
	assert.Equal(t, "plain", plainText("  plain "))
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", responseSnippet(nil))
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, responseSnippet(long), 515)

	// byte 512 falls inside a two-byte rune
	wide := "a" + strings.Repeat("é", 300)
	snippet := responseSnippet([]byte(wide))
	assert.True(t, utf8.ValidString(snippet))
	assert.Equal(t, "a"+strings.Repeat("é", 255)+"...", snippet)
}
