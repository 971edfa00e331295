package domain

import "time"

// Domain contains core models shared by the news client and the bot.

// Article is one headline hit returned by the news search API.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Result is the outcome of one headline search.
type Result struct {
	Status int
	Hits   []Article
}
