// Package markdown converts scraped posts into persisted markdown artifacts
// and splits artifacts into header-delimited sections for embedding.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bull/laptop-battle/internal/reddit"
	"github.com/bull/laptop-battle/internal/subject"
)

// ErrEmptySlug is returned when a post title produces no usable filename.
var ErrEmptySlug = fmt.Errorf("post title produced an empty slug")

// WriteArtifact persists a scraped post as a markdown file in dir. The file
// carries front-matter metadata followed by the title, body, and comments.
// The filename is a lossy slug of the title; two different titles can map to
// the same slug, in which case the later write replaces the earlier file.
func WriteArtifact(post *reddit.Post, laptopName, dir string) (string, error) {
	slug := subject.TitleSlug(post.Title)
	if slug == "" {
		return "", ErrEmptySlug
	}
	path := filepath.Join(dir, slug+".md")

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: reddit\n")
	fmt.Fprintf(&b, "url: %s\n", post.URL)
	fmt.Fprintf(&b, "scraped_at: %s\n", post.ScrapedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "laptop: %s\n", laptopName)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", post.Title)
	if post.Body != "" {
		b.WriteString(post.Body)
		b.WriteString("\n")
	}

	if len(post.Comments) > 0 {
		b.WriteString("\n## Comments\n\n")
		for _, comment := range post.Comments {
			fmt.Fprintf(&b, "- %s\n", comment)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}

// FrontMatter is the metadata header of a persisted artifact.
type FrontMatter struct {
	Source    string
	URL       string
	Laptop    string
	ScrapedAt time.Time
}

// ParseFrontMatter reads the metadata header of an artifact. Unknown keys
// are ignored; a missing or unterminated header returns a zero FrontMatter,
// not an error, so malformed artifacts can still be indexed.
func ParseFrontMatter(source []byte) FrontMatter {
	var fm FrontMatter

	s := string(source)
	if !strings.HasPrefix(s, "---\n") {
		return fm
	}
	rest := s[len("---\n"):]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return fm
	}

	for _, line := range strings.Split(rest[:idx], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "source":
			fm.Source = value
		case "url":
			fm.URL = value
		case "laptop":
			fm.Laptop = value
		case "scraped_at":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				fm.ScrapedAt = t
			}
		}
	}
	return fm
}

// StripFrontMatter removes the leading front-matter block from an artifact.
// The metadata lines are for humans and filters, not for embedding; left in
// place they also confuse the markdown parser (a trailing "---" turns the
// block into a setext heading).
func StripFrontMatter(source []byte) []byte {
	s := string(source)
	if !strings.HasPrefix(s, "---\n") {
		return source
	}
	rest := s[len("---\n"):]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return source
	}
	return []byte(strings.TrimLeft(rest[idx+len("\n---\n"):], "\n"))
}

// ListArtifacts returns the markdown files already present in dir, sorted by
// name. A missing directory is not an error; it simply has no artifacts.
func ListArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list artifacts in %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
