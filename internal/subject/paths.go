package subject

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths builds the per-subject file locations for every pipeline artifact
// type. Builders create their parent directory before returning, so the
// returned path is always writable; creation failure is the caller's fatal
// setup error.
type Paths struct {
	DataDir      string // search caches and ledgers
	KnowledgeDir string // markdown artifacts, one subdirectory per subject
	AnalysisDir  string // analysis output JSON
}

// DefaultPaths returns the standard project layout rooted at baseDir.
func DefaultPaths(baseDir string) Paths {
	return Paths{
		DataDir:      filepath.Join(baseDir, "data"),
		KnowledgeDir: filepath.Join(baseDir, "knowledge", "reddit"),
		AnalysisDir:  filepath.Join(baseDir, "analysis"),
	}
}

// SearchCachePath returns the search results cache file for a subject.
func (p Paths) SearchCachePath(name string) (string, error) {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return filepath.Join(p.DataDir, Slug(name)+"_search_results.json"), nil
}

// LedgerPath returns the scraped-URL ledger file for a subject.
func (p Paths) LedgerPath(name string) (string, error) {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return filepath.Join(p.DataDir, Slug(name)+"_scraped_urls.json"), nil
}

// ArtifactDir returns the markdown artifact directory for a subject.
func (p Paths) ArtifactDir(name string) (string, error) {
	dir := filepath.Join(p.KnowledgeDir, Slug(name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	return dir, nil
}

// AnalysisPath returns the analysis output file for a subject.
func (p Paths) AnalysisPath(name string) (string, error) {
	if err := os.MkdirAll(p.AnalysisDir, 0o755); err != nil {
		return "", fmt.Errorf("create analysis dir: %w", err)
	}
	return filepath.Join(p.AnalysisDir, Slug(name)+"_analysis.json"), nil
}
