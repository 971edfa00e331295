package datanews

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Fixed search parameters used for every bot invocation.
const (
	DefaultSize     = 10
	DefaultSortBy   = "date"
	DefaultPage     = 0
	DefaultLanguage = "en"
)

var (
	// ErrEmptyQuery is returned when neither Q nor Source is set.
	ErrEmptyQuery = errors.New("datanews: query or source is required")
	// ErrAmbiguousQuery is returned when both Q and Source are set.
	ErrAmbiguousQuery = errors.New("datanews: query and source are mutually exclusive")
)

// Query describes one headlines request. Exactly one of Q and Source is set.
type Query struct {
	Q        string
	Source   string
	Size     int
	SortBy   string
	Page     int
	Language string
}

// TextQuery builds a free-text query with the fixed bot parameters.
func TextQuery(q string) Query {
	return withDefaults(Query{Q: q})
}

// SourceQuery builds a publisher lookup with the fixed bot parameters.
func SourceQuery(source string) Query {
	return withDefaults(Query{Source: source})
}

func withDefaults(q Query) Query {
	q.Size = DefaultSize
	q.SortBy = DefaultSortBy
	q.Page = DefaultPage
	q.Language = DefaultLanguage
	return q
}

// Validate checks that the query selects exactly one search mode.
func (q Query) Validate() error {
	hasQ := strings.TrimSpace(q.Q) != ""
	hasSource := strings.TrimSpace(q.Source) != ""
	switch {
	case !hasQ && !hasSource:
		return ErrEmptyQuery
	case hasQ && hasSource:
		return ErrAmbiguousQuery
	}
	return nil
}

// Values encodes the query as URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Source != "" {
		v.Set("source", q.Source)
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Language != "" {
		v.Set("language", q.Language)
	}
	return v
}
