package pipeline

import (
	"context"
	"log/slog"

	"github.com/bull/laptop-battle/internal/analysis"
	"github.com/bull/laptop-battle/internal/subject"
)

// Runner runs the full pipeline for arbitrary laptops with a shared set of
// collaborators and options. It is the bridge between the per-subject
// Controller and callers that work with laptop names, like the comparison
// service.
type Runner struct {
	paths  subject.Paths
	deps   Deps
	opts   Options
	logger *slog.Logger
}

func NewRunner(paths subject.Paths, deps Deps, opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{paths: paths, deps: deps, opts: opts, logger: logger}
}

// Run executes the pipeline for one laptop and returns its analysis
// outcome. Setup failures propagate; anything softer is already folded
// into the outcome by the controller.
func (r *Runner) Run(ctx context.Context, laptopName string) (*analysis.Outcome, error) {
	sum, err := New(laptopName, r.paths, r.deps, r.logger).Run(ctx, r.opts)
	if err != nil {
		return nil, err
	}
	if sum.Analysis == nil {
		// Analysis was skipped by options; report it as absent data rather
		// than inventing a score.
		return analysis.NoData(subject.Slug(laptopName)), nil
	}
	return sum.Analysis, nil
}

// RunSummary is Run for callers that want the full step-by-step record.
func (r *Runner) RunSummary(ctx context.Context, laptopName string) (*Summary, error) {
	return New(laptopName, r.paths, r.deps, r.logger).Run(ctx, r.opts)
}
