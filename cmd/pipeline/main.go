// Package main provides the laptop-battle CLI for running the Reddit
// sentiment pipeline and head-to-head comparisons.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/laptop-battle/internal/analysis"
	"github.com/bull/laptop-battle/internal/compare"
	"github.com/bull/laptop-battle/internal/config"
	"github.com/bull/laptop-battle/internal/embedding"
	"github.com/bull/laptop-battle/internal/pipeline"
	"github.com/bull/laptop-battle/internal/reddit"
	"github.com/bull/laptop-battle/internal/storage"
	"github.com/bull/laptop-battle/internal/subject"
)

var (
	configPath   string
	forceRefresh bool
	delayMS      int
	skipIndex    bool
	skipAnalysis bool
)

var rootCmd = &cobra.Command{
	Use:   "laptop-battle",
	Short: "Reddit sentiment pipeline for laptop comparisons",
	Long:  "Scrapes Reddit discussions about laptops, indexes them in Qdrant, and produces LLM sentiment analyses",
}

var runCmd = &cobra.Command{
	Use:   "run <laptop name>",
	Short: "Run the full pipeline for one laptop",
	Long: `Searches Reddit for discussions about the laptop, fetches new posts,
writes markdown artifacts, indexes them in Qdrant, and runs the
sentiment analysis.

Runs are incremental: previously fetched posts are skipped and search
results are cached per laptop. Use --force-refresh to re-search.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings and analysis (required
                 unless --skip-index is set)`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

var compareCmd = &cobra.Command{
	Use:   "compare <laptop 1> <laptop 2>",
	Short: "Run the pipeline for two laptops and compare sentiment",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the Qdrant collection",
	Long: `Deletes every indexed artifact and section from Qdrant and recreates
an empty collection. Markdown artifacts on disk are untouched; the next
pipeline run re-indexes them.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to YAML config")
	rootCmd.PersistentFlags().BoolVar(&forceRefresh, "force-refresh", false, "bypass the search cache")
	rootCmd.PersistentFlags().IntVar(&delayMS, "delay", 0, "milliseconds between post fetches (0 = config value)")
	rootCmd.PersistentFlags().BoolVar(&skipIndex, "skip-index", false, "collect and transform only, skip Qdrant and analysis")
	rootCmd.PersistentFlags().BoolVar(&skipAnalysis, "skip-analysis", false, "skip the LLM analysis step")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRunner wires the full collaborator set from config. The returned
// cleanup closes the Qdrant connection and is a no-op with --skip-index.
func buildRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, func(), error) {
	logger := slog.Default()
	deps := pipeline.Deps{}

	fetchInterval := cfg.FetchInterval()
	if delayMS > 0 {
		fetchInterval = time.Duration(delayMS) * time.Millisecond
	}
	redditClient := reddit.NewClient(fetchInterval, logger)
	deps.Searcher = redditClient
	deps.Fetcher = redditClient

	cleanup := func() {}
	if !skipIndex {
		fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.Qdrant.Host, cfg.Qdrant.Port)
		store, err := storage.NewQdrantStorage(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection)
		if err != nil {
			return nil, nil, fmt.Errorf("Failed to connect to Qdrant: %w", err)
		}
		cleanup = func() { store.Close() }

		if err := store.EnsureCollection(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("Failed to ensure collection: %w", err)
		}
		fmt.Println("Qdrant ready")

		embeddingClient, err := embedding.NewClient()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("Failed to create embedding client: %w", err)
		}
		embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

		deps.Index = pipeline.NewKnowledgeIndex(embedder, store, logger)
		// The analyzer shares the embedding client's OpenAI connection.
		deps.Analyzer = analysis.NewAnalyzer(embeddingClient.Client())
	}

	opts := pipeline.Options{
		ForceRefreshSearch: forceRefresh,
		RetrievalCount:     cfg.Pipeline.RetrievalCount,
		SkipIndex:          skipIndex,
		SkipAnalysis:       skipAnalysis,
	}

	paths := subject.DefaultPaths(cfg.Pipeline.BaseDir)
	return pipeline.NewRunner(paths, deps, opts, logger), cleanup, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	laptop := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Running pipeline for %q...\n", laptop)
	fmt.Println()

	sum, err := runner.RunSummary(ctx, laptop)
	if err != nil {
		return fmt.Errorf("Pipeline failed: %w", err)
	}

	printSummary(sum)
	return nil
}

func printSummary(sum *pipeline.Summary) {
	fmt.Println("Pipeline complete!")
	fmt.Printf("  Search results: %d (%d unique, %d new)\n", sum.SearchResults, sum.UniqueURLs, sum.NewURLs)
	fmt.Printf("  Fetched: %d (%d failed)\n", sum.Fetched, sum.FetchFailures)
	fmt.Printf("  Artifacts: %d (%d failed)\n", sum.Artifacts, sum.TransformFailures)
	fmt.Printf("  Indexed: %d (%d failed)\n", sum.Indexed, sum.IndexFailures)
	fmt.Printf("  Duration: %s\n", sum.Duration.Round(time.Millisecond))

	if sum.Analysis != nil {
		fmt.Println()
		printOutcome(sum.Laptop, sum.Analysis)
	}

	if len(sum.Errors) > 0 {
		fmt.Println()
		fmt.Println("Step errors:")
		for _, e := range sum.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}

func printOutcome(laptop string, out *analysis.Outcome) {
	switch out.Status {
	case analysis.StatusOK:
		fmt.Printf("Sentiment for %s: %d/100\n", laptop, out.Score())
		if out.Report != nil {
			fmt.Printf("  %s\n", out.Report.SentimentExplanation)
			for _, pro := range out.Report.Pros {
				fmt.Printf("  + %s\n", pro)
			}
			for _, con := range out.Report.Cons {
				fmt.Printf("  - %s\n", con)
			}
		}
	case analysis.StatusNoData:
		fmt.Printf("No indexed data for %s; no analysis produced\n", laptop)
	default:
		fmt.Printf("Analysis failed for %s: %s\n", laptop, out.Error)
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.Qdrant.Host, cfg.Qdrant.Port)
	store, err := storage.NewQdrantStorage(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection)
	if err != nil {
		return fmt.Errorf("Failed to connect to Qdrant: %w", err)
	}
	defer store.Close()

	fmt.Printf("Clearing collection %q...\n", cfg.Qdrant.Collection)
	if err := store.ClearCollection(ctx); err != nil {
		return fmt.Errorf("Failed to clear collection: %w", err)
	}
	fmt.Println("Collection cleared")

	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	laptop1, laptop2 := args[0], args[1]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Comparing %q vs %q...\n", laptop1, laptop2)
	fmt.Println()

	result, err := compare.New(runner, slog.Default()).Compare(ctx, laptop1, laptop2)
	if err != nil {
		return fmt.Errorf("Comparison failed: %w", err)
	}

	printOutcome(laptop1, result.Laptop1)
	fmt.Println()
	printOutcome(laptop2, result.Laptop2)
	fmt.Println()

	switch result.Comparison.Winner {
	case compare.WinnerTie:
		fmt.Printf("Result: tie (%d vs %d)\n", result.Comparison.Laptop1Score, result.Comparison.Laptop2Score)
	case compare.WinnerLaptop1:
		fmt.Printf("Result: %s wins by %d points\n", laptop1, result.Comparison.ScoreDifference)
	default:
		fmt.Printf("Result: %s wins by %d points\n", laptop2, result.Comparison.ScoreDifference)
	}

	// Full machine-readable result for piping into other tools.
	data, err := json.MarshalIndent(result, "", "  ")
	if err == nil {
		fmt.Println()
		fmt.Println(string(data))
	}
	return nil
}
