// Package subject derives canonical identifiers and on-disk paths for the
// laptops being analyzed. Two names that normalize to the same slug are the
// same subject for caching purposes.
package subject

import (
	"regexp"
	"strings"
)

// MaxTitleSlugLen bounds artifact filenames derived from post titles.
const MaxTitleSlugLen = 100

var (
	nonSlugChars      = regexp.MustCompile(`[^a-z0-9\s_]`)
	nonTitleSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
	underscoreRuns    = regexp.MustCompile(`_+`)
	hyphenRuns        = regexp.MustCompile(`-+`)
)

// Slug converts a free-text laptop name to a filesystem-safe identifier.
// Lowercase, special characters removed, whitespace collapsed to single
// underscores. Applying Slug to its own output returns it unchanged.
//
//	"Lenovo Legion Y540" -> "lenovo_legion_y540"
func Slug(name string) string {
	s := strings.ToLower(name)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// TitleSlug converts a post title to a filename stem. Hyphens are kept as
// separators and the result is truncated to MaxTitleSlugLen. Empty or
// all-special-character input yields an empty string.
func TitleSlug(title string) string {
	s := strings.ToLower(title)
	s = nonTitleSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxTitleSlugLen {
		s = strings.Trim(s[:MaxTitleSlugLen], "-")
	}
	return s
}
