package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/laptop-battle/internal/reddit"
)

func testPost() *reddit.Post {
	return &reddit.Post{
		URL:   "https://www.reddit.com/r/LenovoLegion/comments/abc/my_post/",
		Title: "My legion Y540 still serving me after 5 years",
		Body:  "Bought this in 2020 during lockdown. Still working smooth as butter.",
		Comments: []string{
			"Great to hear! I have the same laptop.",
			"The Y540 is a solid machine.",
		},
		ScrapedAt: time.Date(2026, 1, 26, 18, 48, 19, 0, time.UTC),
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteArtifact(testPost(), "Lenovo Legion Y540", dir)
	require.NoError(t, err)
	assert.Equal(t, "my-legion-y540-still-serving-me-after-5-years.md", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.True(t, strings.HasPrefix(content, "---\n"), "front matter first")
	assert.Contains(t, content, "source: reddit\n")
	assert.Contains(t, content, "url: https://www.reddit.com/r/LenovoLegion/comments/abc/my_post/\n")
	assert.Contains(t, content, "scraped_at: 2026-01-26T18:48:19Z\n")
	assert.Contains(t, content, "laptop: Lenovo Legion Y540\n")
	assert.Contains(t, content, "# My legion Y540 still serving me after 5 years\n")
	assert.Contains(t, content, "Bought this in 2020")
	assert.Contains(t, content, "## Comments\n")
	assert.Contains(t, content, "- Great to hear! I have the same laptop.\n")
}

func TestWriteArtifact_NoComments(t *testing.T) {
	post := testPost()
	post.Comments = nil

	path, err := WriteArtifact(post, "Lenovo Legion Y540", t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "## Comments")
}

func TestWriteArtifact_EmptySlug(t *testing.T) {
	post := testPost()
	post.Title = "???"

	_, err := WriteArtifact(post, "Lenovo Legion Y540", t.TempDir())
	assert.ErrorIs(t, err, ErrEmptySlug)
}

// Two titles that slug identically collide on disk; the later write wins.
// Known data-loss risk, accepted for bounded filename lengths.
func TestWriteArtifact_CollisionLastWriteWins(t *testing.T) {
	dir := t.TempDir()

	first := testPost()
	first.Title = "Same Title"
	first.Body = "first body"
	p1, err := WriteArtifact(first, "Laptop", dir)
	require.NoError(t, err)

	second := testPost()
	second.Title = "same title!"
	second.Body = "second body"
	p2, err := WriteArtifact(second, "Laptop", dir)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	raw, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "second body")
	assert.NotContains(t, string(raw), "first body")
}

func TestListArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	paths, err := ListArtifacts(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "b.md")}, paths)
}

func TestListArtifacts_MissingDir(t *testing.T) {
	paths, err := ListArtifacts(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestParseFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteArtifact(testPost(), "Lenovo Legion Y540", dir)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	fm := ParseFrontMatter(raw)
	assert.Equal(t, "reddit", fm.Source)
	assert.Equal(t, testPost().URL, fm.URL)
	assert.Equal(t, "Lenovo Legion Y540", fm.Laptop)
	assert.Equal(t, testPost().ScrapedAt, fm.ScrapedAt)
}

func TestParseFrontMatter_Missing(t *testing.T) {
	fm := ParseFrontMatter([]byte("# no header\n"))
	assert.Empty(t, fm.URL)
	assert.True(t, fm.ScrapedAt.IsZero())
}

func TestStripFrontMatter(t *testing.T) {
	in := "---\nsource: reddit\nurl: x\n---\n\n# Title\n\nbody\n"
	assert.Equal(t, "# Title\n\nbody\n", string(StripFrontMatter([]byte(in))))

	// No front matter: unchanged.
	plain := "# Title\n\nbody\n"
	assert.Equal(t, plain, string(StripFrontMatter([]byte(plain))))

	// Unterminated front matter: unchanged.
	broken := "---\nsource: reddit\n"
	assert.Equal(t, broken, string(StripFrontMatter([]byte(broken))))
}
