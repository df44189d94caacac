// Package compare runs the pipeline for two laptops and ranks the results
// by sentiment score.
package compare

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bull/laptop-battle/internal/analysis"
	"github.com/bull/laptop-battle/internal/subject"
)

// Winner labels for Comparison.Winner.
const (
	WinnerLaptop1 = "laptop1"
	WinnerLaptop2 = "laptop2"
	WinnerTie     = "tie"
)

// Runner executes the full pipeline for one laptop and returns its
// analysis outcome. A pipeline whose analysis failed still returns an
// outcome, not an error; errors are reserved for setup-level failures.
type Runner interface {
	Run(ctx context.Context, laptopName string) (*analysis.Outcome, error)
}

// Comparison is the verdict over two outcomes.
type Comparison struct {
	Winner          string `json:"winner"`
	ScoreDifference int    `json:"score_difference"`
	Laptop1Score    int    `json:"laptop1_score"`
	Laptop2Score    int    `json:"laptop2_score"`
}

// Result pairs both outcomes with the verdict.
type Result struct {
	Laptop1    *analysis.Outcome `json:"laptop1"`
	Laptop2    *analysis.Outcome `json:"laptop2"`
	Comparison Comparison        `json:"comparison"`
}

// Comparer runs two pipelines side by side.
type Comparer struct {
	runner Runner
	logger *slog.Logger
}

func New(runner Runner, logger *slog.Logger) *Comparer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparer{runner: runner, logger: logger}
}

// Compare runs both pipelines concurrently and scores the outcomes. A
// failed or no-data side scores zero; two zero scores are a tie. Only a
// setup-level pipeline error (no outcome at all) fails the comparison.
// Names resolving to the same subject are rejected: each subject's ledger
// and search cache assume a single writer.
func (c *Comparer) Compare(ctx context.Context, laptop1, laptop2 string) (*Result, error) {
	if subject.Slug(laptop1) == subject.Slug(laptop2) {
		return nil, fmt.Errorf("%q and %q are the same laptop", laptop1, laptop2)
	}

	c.logger.Info("Comparing laptops", "laptop1", laptop1, "laptop2", laptop2)

	var out1, out2 *analysis.Outcome
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out1, err = c.runner.Run(ctx, laptop1)
		return err
	})
	g.Go(func() error {
		var err error
		out2, err = c.runner.Run(ctx, laptop2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Laptop1:    out1,
		Laptop2:    out2,
		Comparison: Verdict(out1, out2),
	}, nil
}

// Verdict compares two outcomes by sentiment score. Strictly higher wins;
// equal scores tie.
func Verdict(out1, out2 *analysis.Outcome) Comparison {
	s1, s2 := out1.Score(), out2.Score()
	cmp := Comparison{Laptop1Score: s1, Laptop2Score: s2}
	switch {
	case s1 > s2:
		cmp.Winner = WinnerLaptop1
		cmp.ScoreDifference = s1 - s2
	case s2 > s1:
		cmp.Winner = WinnerLaptop2
		cmp.ScoreDifference = s2 - s1
	default:
		cmp.Winner = WinnerTie
	}
	return cmp
}
