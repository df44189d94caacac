// Package pipeline orchestrates the full analysis run for one laptop:
// search, dedup, fetch, transform, index, analyze. The controller owns the
// run summary and the in-memory working sets for the duration of one run;
// the ledger file is the only state that outlives it.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bull/laptop-battle/internal/analysis"
	"github.com/bull/laptop-battle/internal/ledger"
	"github.com/bull/laptop-battle/internal/markdown"
	"github.com/bull/laptop-battle/internal/reddit"
	"github.com/bull/laptop-battle/internal/subject"
)

// DefaultRetrievalCount is how many sections ANALYZE pulls from the index.
const DefaultRetrievalCount = 5

// Searcher discovers candidate posts for a subject.
type Searcher interface {
	Search(ctx context.Context, laptopName string) ([]reddit.ResultBlock, error)
}

// PostFetcher retrieves one post's full content.
type PostFetcher interface {
	FetchPost(ctx context.Context, url string) (*reddit.Post, error)
}

// Index embeds and stores artifacts, and retrieves text by similarity
// restricted to one subject.
type Index interface {
	IndexArtifact(ctx context.Context, path, subjectSlug, laptopName string) error
	Retrieve(ctx context.Context, query, subjectSlug string, limit int) ([]string, error)
}

// Analyzer turns retrieved text into a structured sentiment report.
type Analyzer interface {
	Analyze(ctx context.Context, laptopName string, contexts []string) (*analysis.Report, error)
}

// Deps are the collaborators a Controller drives. All are caller-owned:
// construct once per process (or per test) and share across controllers.
type Deps struct {
	Searcher Searcher
	Fetcher  PostFetcher
	Index    Index
	Analyzer Analyzer
}

// Options tune one pipeline run.
type Options struct {
	// ForceRefreshSearch bypasses the search cache and overwrites it.
	ForceRefreshSearch bool

	// RetrievalCount is how many sections ANALYZE retrieves; zero selects
	// DefaultRetrievalCount.
	RetrievalCount int

	// SkipIndex and SkipAnalysis cut the run short after persistence,
	// useful when collecting data without spending index or LLM budget.
	SkipIndex    bool
	SkipAnalysis bool
}

// Controller runs the pipeline for a single subject. One controller per
// subject per run; concurrent runs for the same subject are unsupported
// (the ledger assumes a single writer).
type Controller struct {
	laptop string
	slug   string
	paths  subject.Paths
	deps   Deps
	logger *slog.Logger

	// working state for the current run
	blocks    []reddit.ResultBlock
	known     ledger.Set
	newURLs   []string
	posts     []*reddit.Post
	artifacts []string
}

// New creates a controller for one laptop.
func New(laptopName string, paths subject.Paths, deps Deps, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		laptop: laptopName,
		slug:   subject.Slug(laptopName),
		paths:  paths,
		deps:   deps,
		logger: logger.With("subject", subject.Slug(laptopName)),
	}
}

// Run executes the full pipeline. Collaborator failures are absorbed into
// the summary; only unrecoverable setup failures (directories, paths)
// return an error, and even then alongside the partial summary.
func (c *Controller) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()
	sum := &Summary{Laptop: c.laptop, Slug: c.slug}

	// Resolve all paths up front: failure here means nothing can be
	// persisted, which is fatal for the whole run.
	cachePath, err := c.paths.SearchCachePath(c.laptop)
	if err != nil {
		return sum, err
	}
	ledgerPath, err := c.paths.LedgerPath(c.laptop)
	if err != nil {
		return sum, err
	}
	artifactDir, err := c.paths.ArtifactDir(c.laptop)
	if err != nil {
		return sum, err
	}
	analysisPath, err := c.paths.AnalysisPath(c.laptop)
	if err != nil {
		return sum, err
	}

	c.known = ledger.Load(ledgerPath, c.logger)
	c.blocks = nil
	c.newURLs = nil
	c.posts = nil
	c.artifacts = nil

	c.logger.Info("Pipeline starting", "laptop", c.laptop, "known_urls", len(c.known))

	// SEARCH
	if err := c.search(ctx, cachePath, opts.ForceRefreshSearch); err != nil {
		c.logger.Warn("Search failed, continuing with empty results", "error", err)
		sum.addError(fmt.Errorf("search: %w", err))
	}
	for _, block := range c.blocks {
		sum.SearchResults += len(block.Results)
	}
	sum.completed(StepSearch)

	// DEDUPE
	allURLs := ledger.ExtractUniqueURLs(c.blocks)
	c.newURLs = ledger.Diff(allURLs, c.known)
	sum.UniqueURLs = len(allURLs)
	sum.NewURLs = len(c.newURLs)
	sum.completed(StepDedupe)
	c.logger.Info("Deduplicated candidates",
		"unique", len(allURLs),
		"already_known", len(allURLs)-len(c.newURLs),
		"new", len(c.newURLs),
	)

	// FETCH
	fetchFailures := c.fetch(ctx)
	sum.Fetched = len(c.posts)
	sum.FetchFailures = fetchFailures
	sum.completed(StepFetch)

	// TRANSFORM (persists artifacts, then the ledger)
	transformFailures, err := c.transform(artifactDir, ledgerPath)
	if err != nil {
		sum.addError(fmt.Errorf("transform: %w", err))
	}
	sum.Artifacts = len(c.artifacts)
	sum.TransformFailures = transformFailures
	sum.completed(StepTransform)

	// INDEX
	if !opts.SkipIndex {
		indexed, failures := c.index(ctx, artifactDir)
		sum.Indexed = indexed
		sum.IndexFailures = failures
		sum.completed(StepIndex)
	}

	// ANALYZE
	if !opts.SkipAnalysis && !opts.SkipIndex {
		sum.Analysis = c.analyze(ctx, opts.RetrievalCount)
		if err := analysis.SaveOutcome(analysisPath, sum.Analysis); err != nil {
			c.logger.Warn("Failed to persist analysis", "error", err)
			sum.addError(fmt.Errorf("persist analysis: %w", err))
		}
		sum.completed(StepAnalyze)
	}

	sum.Duration = time.Since(start)
	c.logger.Info("Pipeline complete",
		"steps", len(sum.Steps),
		"fetched", sum.Fetched,
		"artifacts", sum.Artifacts,
		"indexed", sum.Indexed,
		"duration", sum.Duration,
	)
	return sum, nil
}

// search loads cached search results or performs a fresh search. A fresh
// search unconditionally overwrites the cache. The cache is the primary
// cost-avoidance mechanism: search is the most expensive step to repeat.
func (c *Controller) search(ctx context.Context, cachePath string, force bool) error {
	if !force {
		if blocks, ok := loadSearchCache(cachePath, c.logger); ok {
			c.logger.Info("Using cached search results", "path", cachePath, "blocks", len(blocks))
			c.blocks = blocks
			return nil
		}
	}

	blocks, err := c.deps.Searcher.Search(ctx, c.laptop)
	if err != nil {
		return err
	}
	c.blocks = blocks

	if err := saveSearchCache(cachePath, blocks); err != nil {
		// A cache write failure costs a re-search next run, nothing more.
		c.logger.Warn("Failed to write search cache", "error", err)
	}
	return nil
}

// loadSearchCache returns the cached blocks and true on success. Corrupt
// cache data is treated as a miss.
func loadSearchCache(path string, logger *slog.Logger) ([]reddit.ResultBlock, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var blocks []reddit.ResultBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		logger.Warn("Corrupt search cache, re-searching", "path", path, "error", err)
		return nil, false
	}
	return blocks, true
}

func saveSearchCache(path string, blocks []reddit.ResultBlock) error {
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// fetch retrieves each new URL sequentially. The fetcher owns the
// inter-request interval; this loop only honors cancellation. One bad
// reference never aborts the batch: failures are logged and counted, the
// loop moves on. Returns the failure count.
func (c *Controller) fetch(ctx context.Context) int {
	failures := 0
	for i, url := range c.newURLs {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("Fetch interrupted", "error", err)
			failures += len(c.newURLs) - i
			break
		}

		c.logger.Info("Fetching", "n", i+1, "of", len(c.newURLs), "url", url)
		post, err := c.deps.Fetcher.FetchPost(ctx, url)
		if err != nil {
			c.logger.Warn("Fetch failed, skipping", "url", url, "error", err)
			failures++
			continue
		}
		c.posts = append(c.posts, post)
	}
	return failures
}

// transform writes an artifact per fetched post, then persists the ledger
// once for the batch. Only URLs whose artifacts are durably on disk enter
// the ledger, so a crash at any point causes re-fetching, never a ledger
// entry without a document. Returns the per-post failure count.
func (c *Controller) transform(artifactDir, ledgerPath string) (int, error) {
	failures := 0
	durable := false

	for _, post := range c.posts {
		path, err := markdown.WriteArtifact(post, c.laptop, artifactDir)
		if err != nil {
			c.logger.Warn("Transform failed, skipping", "url", post.URL, "error", err)
			failures++
			continue
		}
		c.artifacts = append(c.artifacts, path)
		c.known.Add(post.URL)
		durable = true
	}

	if !durable {
		return failures, nil
	}
	if err := ledger.Save(ledgerPath, c.known); err != nil {
		// The artifacts exist but the ledger missed them: the next run
		// re-fetches those posts and overwrites identical artifacts.
		return failures, err
	}
	return failures, nil
}

// index upserts every artifact for the subject: this run's new ones plus
// anything already on disk, so re-running indexing covers the full corpus.
// Returns (indexed, failures).
func (c *Controller) index(ctx context.Context, artifactDir string) (int, int) {
	existing, err := markdown.ListArtifacts(artifactDir)
	if err != nil {
		c.logger.Warn("Failed to list existing artifacts", "error", err)
	}

	seen := make(map[string]struct{}, len(c.artifacts)+len(existing))
	var paths []string
	for _, path := range append(append([]string{}, c.artifacts...), existing...) {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	indexed, failures := 0, 0
	for _, path := range paths {
		if err := c.deps.Index.IndexArtifact(ctx, path, c.slug, c.laptop); err != nil {
			c.logger.Warn("Indexing failed, skipping", "path", path, "error", err)
			failures++
			continue
		}
		indexed++
	}
	c.logger.Info("Indexed artifacts", "indexed", indexed, "failed", failures)
	return indexed, failures
}

// analyze retrieves subject-filtered context and runs the LLM analysis.
// Zero retrieved documents short-circuits to a no-data outcome without
// spending an LLM call. The outcome is never cached across runs: analysis
// freshness is worth the comparatively cheap LLM cost.
func (c *Controller) analyze(ctx context.Context, retrievalCount int) *analysis.Outcome {
	if retrievalCount <= 0 {
		retrievalCount = DefaultRetrievalCount
	}

	contexts, err := c.deps.Index.Retrieve(ctx, c.laptop, c.slug, retrievalCount)
	if err != nil {
		c.logger.Warn("Retrieval failed", "error", err)
		return analysis.Failed(c.slug, fmt.Errorf("retrieve context: %w", err), "")
	}
	if len(contexts) == 0 {
		c.logger.Info("No indexed documents for subject, skipping analysis")
		return analysis.NoData(c.slug)
	}

	report, err := c.deps.Analyzer.Analyze(ctx, c.laptop, contexts)
	if err != nil {
		var parseErr *analysis.ParseError
		if errors.As(err, &parseErr) {
			c.logger.Warn("Analysis response unparseable", "error", err)
			return analysis.Failed(c.slug, err, parseErr.Raw)
		}
		c.logger.Warn("Analysis failed", "error", err)
		return analysis.Failed(c.slug, err, "")
	}
	return analysis.Succeeded(c.slug, report)
}
