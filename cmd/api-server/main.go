// Package main provides the HTTP API entry point for laptop comparisons.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bull/laptop-battle/internal/analysis"
	"github.com/bull/laptop-battle/internal/compare"
	"github.com/bull/laptop-battle/internal/config"
	"github.com/bull/laptop-battle/internal/embedding"
	"github.com/bull/laptop-battle/internal/pipeline"
	"github.com/bull/laptop-battle/internal/reddit"
	"github.com/bull/laptop-battle/internal/server"
	"github.com/bull/laptop-battle/internal/storage"
	"github.com/bull/laptop-battle/internal/subject"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := slog.Default()

	// Initialize storage
	store, err := storage.NewQdrantStorage(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	// Ensure collection exists
	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	// Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// Wire the pipeline collaborators the compare endpoint drives
	redditClient := reddit.NewClient(cfg.FetchInterval(), logger)
	deps := pipeline.Deps{
		Searcher: redditClient,
		Fetcher:  redditClient,
		Index:    pipeline.NewKnowledgeIndex(embedder, store, logger),
		Analyzer: analysis.NewAnalyzer(embeddingClient.Client()),
	}
	opts := pipeline.Options{
		RetrievalCount: cfg.Pipeline.RetrievalCount,
	}
	runner := pipeline.NewRunner(subject.DefaultPaths(cfg.Pipeline.BaseDir), deps, opts, logger)
	comparer := compare.New(runner, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.New(comparer, store, logger).SetupRouter(),
	}

	go func() {
		log.Printf("API server listening on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
