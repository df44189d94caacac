package reddit

import "time"

// PostRef is one search hit: a discussion thread discovered for a subject.
type PostRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ResultBlock groups the hits for a single search query. Blocks are cached
// per subject so repeat runs skip search traffic entirely.
type ResultBlock struct {
	Query     string    `json:"query"`
	SearchURL string    `json:"search_url"`
	ScrapedAt time.Time `json:"scraped_at"`
	Results   []PostRef `json:"results"`
}

// Post is the full content scraped from one discussion thread. Immutable
// once created.
type Post struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Comments  []string  `json:"comments"`
	ScrapedAt time.Time `json:"scraped_at"`
}
