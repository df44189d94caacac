package subject

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"basic", "Lenovo Legion Y540", "lenovo_legion_y540"},
		{"extra whitespace", "  lenovo   legion y540 ", "lenovo_legion_y540"},
		{"special chars", "MacBook M4 Pro (16\")", "macbook_m4_pro_16"},
		{"mixed case", "ASUS ROG Zephyrus G14", "asus_rog_zephyrus_g14"},
		{"empty", "", ""},
		{"only specials", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

// Differently-cased and differently-spaced variants of the same laptop must
// map to the same identifier, otherwise caches and ledgers split.
func TestSlug_VariantsConverge(t *testing.T) {
	variants := []string{
		"Lenovo Legion Y540",
		"lenovo legion y540",
		"  LENOVO   LEGION Y540 ",
		"Lenovo Legion Y-540",
	}
	for _, v := range variants {
		assert.Equal(t, "lenovo_legion_y540", Slug(v), "variant %q", v)
	}
}

func TestSlug_StableOnOwnOutput(t *testing.T) {
	for _, in := range []string{"Lenovo Legion Y540", "MacBook M4 Pro", "a  b\tc"} {
		once := Slug(in)
		assert.Equal(t, once, Slug(once))
	}
}

func TestTitleSlug(t *testing.T) {
	assert.Equal(t,
		"my-legion-y540-still-serving-me-after-5-years",
		TitleSlug("My legion Y540 still serving me after 5 years"))
	assert.Equal(t, "", TitleSlug(""))
	assert.Equal(t, "", TitleSlug("???!!!"))
	assert.Equal(t, "pre-owned", TitleSlug("Pre-Owned"))
}

func TestTitleSlug_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 50)
	got := TitleSlug(long)
	assert.LessOrEqual(t, len(got), MaxTitleSlugLen)
	assert.False(t, strings.HasSuffix(got, "-"), "no trailing separator after truncation")
}

func TestPaths_CreateDirectories(t *testing.T) {
	p := DefaultPaths(t.TempDir())

	cache, err := p.SearchCachePath("Lenovo Legion Y540")
	require.NoError(t, err)
	assert.Equal(t, "lenovo_legion_y540_search_results.json", filepath.Base(cache))
	assert.DirExists(t, p.DataDir)

	ledger, err := p.LedgerPath("Lenovo Legion Y540")
	require.NoError(t, err)
	assert.Equal(t, "lenovo_legion_y540_scraped_urls.json", filepath.Base(ledger))

	dir, err := p.ArtifactDir("Lenovo Legion Y540")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, "lenovo_legion_y540", filepath.Base(dir))

	out, err := p.AnalysisPath("Lenovo Legion Y540")
	require.NoError(t, err)
	assert.Equal(t, "lenovo_legion_y540_analysis.json", filepath.Base(out))

	// Builders are safe to call repeatedly.
	again, err := p.ArtifactDir("Lenovo Legion Y540")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}
