// Package ledger tracks which post URLs were already fetched and durably
// stored for a subject, so repeat pipeline runs never re-scrape them.
//
// The ledger file is the single source of truth for completed work across
// runs. A URL may only be written to the ledger after its artifact is on
// disk; a URL that is missing from the ledger is merely re-fetched, which is
// always safe. The design assumes a single writer per subject; two concurrent
// runs for the same subject are unsupported.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// Set is the in-memory form of a subject's ledger.
type Set map[string]struct{}

// Contains reports whether ref is in the set.
func (s Set) Contains(ref string) bool {
	_, ok := s[ref]
	return ok
}

// Add inserts ref into the set.
func (s Set) Add(ref string) {
	s[ref] = struct{}{}
}

// Load reads a subject's ledger from disk. A missing file returns an empty
// set. Corrupt or partially written ledger data is logged and treated as
// empty rather than failing the run; the cost is re-fetching, never data
// loss.
func Load(path string, logger *slog.Logger) Set {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read ledger, starting empty", "path", path, "error", err)
		}
		return Set{}
	}

	var refs []string
	if err := json.Unmarshal(data, &refs); err != nil {
		logger.Warn("Corrupt ledger, starting empty", "path", path, "error", err)
		return Set{}
	}

	set := make(Set, len(refs))
	for _, ref := range refs {
		set.Add(ref)
	}
	return set
}

// Save overwrites the subject's ledger with the full known set. The file is
// written to a temp path and renamed so a crash never leaves a truncated
// ledger behind. Callers must only invoke Save after the corresponding
// artifacts are durably stored.
func Save(path string, known Set) error {
	refs := make([]string, 0, len(known))
	for ref := range known {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename ledger: %w", err)
	}
	return nil
}

// Diff returns the candidates not yet present in known, preserving candidate
// order. It does not deduplicate candidates against each other; callers pass
// an already-unique list (see ExtractUniqueURLs).
func Diff(candidates []string, known Set) []string {
	fresh := make([]string, 0, len(candidates))
	for _, ref := range candidates {
		if !known.Contains(ref) {
			fresh = append(fresh, ref)
		}
	}
	return fresh
}
