package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SearchTerms expands a laptop name into the query set used for discovery.
//
//	"Lenovo Legion Y540" -> ["lenovo legion y540", "... review", "... reddit"]
func SearchTerms(laptopName string) []string {
	base := strings.ToLower(strings.TrimSpace(laptopName))
	return []string{
		base,
		base + " review",
		base + " reddit",
	}
}

// Search runs every generated query against Reddit's search page and returns
// one ResultBlock per query. A failing query is logged and skipped so partial
// search results still flow downstream; only a fully empty result set with an
// error on every query is reported as a failure.
func (c *Client) Search(ctx context.Context, laptopName string) ([]ResultBlock, error) {
	terms := SearchTerms(laptopName)
	blocks := make([]ResultBlock, 0, len(terms))

	var lastErr error
	for _, query := range terms {
		searchURL := baseSearchURL + url.QueryEscape(query)
		c.logger.Info("Searching Reddit", "query", query)

		block, err := c.searchOne(ctx, query, searchURL)
		if err != nil {
			if ctx.Err() != nil {
				return blocks, ctx.Err()
			}
			c.logger.Warn("Search query failed", "query", query, "error", err)
			lastErr = err
			continue
		}
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all search queries failed: %w", lastErr)
	}
	return blocks, nil
}

// searchOne fetches a single search page and extracts post links. Anchors
// pointing at /comments/ threads are post hits; duplicates within one page
// are dropped, first occurrence wins.
func (c *Client) searchOne(ctx context.Context, query, searchURL string) (ResultBlock, error) {
	resp, err := c.get(ctx, searchURL)
	if err != nil {
		return ResultBlock{}, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ResultBlock{}, fmt.Errorf("parse search page: %w", err)
	}

	seen := make(map[string]struct{})
	var posts []PostRef

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		title := strings.TrimSpace(sel.Text())
		if !strings.Contains(href, "/comments/") || title == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		fullURL := href
		if !strings.HasPrefix(href, "http") {
			fullURL = "https://www.reddit.com" + href
		}
		posts = append(posts, PostRef{Title: title, URL: fullURL})
	})

	return ResultBlock{
		Query:     query,
		SearchURL: searchURL,
		ScrapedAt: time.Now().UTC(),
		Results:   posts,
	}, nil
}
