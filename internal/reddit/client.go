// Package reddit scrapes Reddit's rendered search and post pages. There is
// no API auth here: requests go over plain HTTP with a browser user agent,
// throttled to stay under Reddit's anti-scraping thresholds.
package reddit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	baseSearchURL = "https://www.reddit.com/search/?q="
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultRequestInterval is the minimum gap between requests to Reddit.
	// This is policy, not performance tuning: faster intervals trip the
	// anti-scraping defenses.
	DefaultRequestInterval = 2 * time.Second
)

// Client performs rate-limited HTTP requests against Reddit pages.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a scraping client. interval is the minimum time between
// requests; zero or negative selects DefaultRequestInterval.
func NewClient(interval time.Duration, logger *slog.Logger) *Client {
	if interval <= 0 {
		interval = DefaultRequestInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
	}
}

// get waits for the rate limiter, then performs a GET with the scraping
// user agent. Non-2xx statuses are returned as errors.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp, nil
}
