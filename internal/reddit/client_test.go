package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPageHTML = `<html><body>
<a href="/r/LenovoLegion/comments/abc/first_post/">First post about the Y540</a>
<a href="/r/laptops/comments/def/second_post/">Second post</a>
<a href="/r/LenovoLegion/comments/abc/first_post/">First post about the Y540</a>
<a href="/r/laptops/">Subreddit link, not a post</a>
<a href="https://www.reddit.com/r/laptops/comments/ghi/absolute/">Absolute link post</a>
<a href="/r/laptops/comments/jkl/no_title/"></a>
</body></html>`

const postPageHTML = `<html><body>
<h1>My legion Y540 still serving me after 5 years</h1>
<div property="schema:articleBody">
  <p>Bought this in 2020 during lockdown.</p>
  <p>Still working smooth as butter.</p>
  <p></p>
</div>
<div slot="comment"><p>Great to hear! I have the same laptop.</p></div>
<div slot="comment"><p>The Y540 is a solid machine.</p></div>
</body></html>`

func newTestClient() *Client {
	return NewClient(time.Millisecond, nil)
}

func TestSearchOne_ParsesPostLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPageHTML)
	}))
	defer srv.Close()

	c := newTestClient()
	block, err := c.searchOne(context.Background(), "lenovo legion y540", srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "lenovo legion y540", block.Query)
	assert.False(t, block.ScrapedAt.IsZero())
	require.Len(t, block.Results, 3, "duplicates, non-post links and untitled links are dropped")

	assert.Equal(t, "First post about the Y540", block.Results[0].Title)
	assert.Equal(t, "https://www.reddit.com/r/LenovoLegion/comments/abc/first_post/", block.Results[0].URL)
	assert.Equal(t, "https://www.reddit.com/r/laptops/comments/ghi/absolute/", block.Results[2].URL)
}

func TestSearchOne_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient()
	_, err := c.searchOne(context.Background(), "q", srv.URL)
	assert.Error(t, err)
}

func TestFetchPost_ParsesTitleBodyComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, postPageHTML)
	}))
	defer srv.Close()

	c := newTestClient()
	post, err := c.FetchPost(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "My legion Y540 still serving me after 5 years", post.Title)
	assert.Equal(t, "Bought this in 2020 during lockdown. Still working smooth as butter.", post.Body)
	assert.Equal(t, []string{
		"Great to hear! I have the same laptop.",
		"The Y540 is a solid machine.",
	}, post.Comments)
	assert.Equal(t, srv.URL, post.URL)
	assert.False(t, post.ScrapedAt.IsZero())
}

func TestFetchPost_CapsComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><h1>t</h1>")
		for i := 0; i < MaxComments*2; i++ {
			fmt.Fprintf(w, `<div slot="comment"><p>comment %d</p></div>`, i)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	defer srv.Close()

	c := newTestClient()
	post, err := c.FetchPost(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, post.Comments, MaxComments)
}

func TestFetchPost_MissingTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>nothing here</p></body></html>")
	}))
	defer srv.Close()

	c := newTestClient()
	post, err := c.FetchPost(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "No title", post.Title)
	assert.Empty(t, post.Body)
}

func TestSearchTerms(t *testing.T) {
	terms := SearchTerms("Lenovo Legion Y540")
	assert.Equal(t, []string{
		"lenovo legion y540",
		"lenovo legion y540 review",
		"lenovo legion y540 reddit",
	}, terms)
}
