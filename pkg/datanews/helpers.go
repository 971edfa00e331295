package datanews

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/khobor-bot/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// responseSnippet returns a truncated snippet of the response body for errors and logs.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

type headlinesResponse struct {
	Status     int          `json:"status"`
	NumResults int          `json:"numResults"`
	Hits       []apiArticle `json:"hits"`
}

type apiArticle struct {
	URL         string `json:"url"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	PubDate     string `json:"pubDate"`
}

// decodeHeadlines parses a headlines body into a domain result.
// The body status wins over the transport status when present.
func decodeHeadlines(body []byte, httpStatus int) (domain.Result, error) {
	var raw headlinesResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Result{}, fmt.Errorf("decode headlines: %w", err)
	}

	status := raw.Status
	if status == 0 {
		status = httpStatus
	}

	return domain.Result{
		Status: status,
		Hits:   buildArticles(raw.Hits),
	}, nil
}

// buildArticles maps API hits to domain articles, keeping the API order.
// Titles are passed through untouched; only the description is flattened.
func buildArticles(hits []apiArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(hits))
	for _, h := range hits {
		articles = append(articles, domain.Article{
			Title:       h.Title,
			URL:         strings.TrimSpace(h.URL),
			Source:      strings.TrimSpace(h.Source),
			Description: plainText(h.Description),
			ImageURL:    strings.TrimSpace(h.ImageURL),
			PublishedAt: parsePublicationDate(h.PubDate),
		})
	}
	return articles
}

// plainText flattens markup and entities that leak into API descriptions.
func plainText(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// parsePublicationDate attempts to parse the publication date from a string.
func parsePublicationDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
