package reddit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// MaxComments caps how many top-level comments a fetched post carries. More
// than this adds noise, not signal, to the downstream analysis.
const MaxComments = 10

// FetchPost scrapes one Reddit post page into a Post. It parses the rendered
// page layout: the h1 title, the schema:articleBody paragraphs, and visible
// top-level comments. A page that renders but carries no recognizable content
// still returns a Post with empty body; network and HTTP failures return an
// error.
func (c *Client) FetchPost(ctx context.Context, postURL string) (*Post, error) {
	c.logger.Info("Fetching post", "url", postURL)

	resp, err := c.get(ctx, postURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse post page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = "No title"
	}

	var bodyParts []string
	doc.Find(`div[property="schema:articleBody"] p`).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			bodyParts = append(bodyParts, text)
		}
	})

	var comments []string
	doc.Find(`div[slot="comment"]`).EachWithBreak(func(_ int, container *goquery.Selection) bool {
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			if len(comments) >= MaxComments {
				return
			}
			if text := strings.TrimSpace(p.Text()); text != "" {
				comments = append(comments, text)
			}
		})
		return len(comments) < MaxComments
	})

	c.logger.Debug("Scraped post",
		"url", postURL,
		"paragraphs", len(bodyParts),
		"comments", len(comments),
	)

	return &Post{
		URL:       postURL,
		Title:     title,
		Body:      strings.Join(bodyParts, " "),
		Comments:  comments,
		ScrapedAt: time.Now().UTC(),
	}, nil
}
