package pipeline

import (
	"time"

	"github.com/bull/laptop-battle/internal/analysis"
)

// Step names recorded in Summary.Steps, in pipeline order.
const (
	StepSearch    = "search"
	StepDedupe    = "dedupe"
	StepFetch     = "fetch"
	StepTransform = "transform"
	StepIndex     = "index"
	StepAnalyze   = "analyze"
)

// Summary is the record of one pipeline run. It is created when the run
// starts, finalized when the run returns, and never exposed half-built.
// Partial progress (fetch failures, skipped artifacts) is always reflected
// in the counts rather than silently dropped.
type Summary struct {
	Laptop string `json:"laptop"`
	Slug   string `json:"slug"`

	// Steps lists completed step names in execution order. A step with no
	// work still completes; a step whose collaborator failed also completes,
	// with the failure recorded in Errors.
	Steps []string `json:"steps_completed"`

	SearchResults     int `json:"search_results"`
	UniqueURLs        int `json:"unique_urls"`
	NewURLs           int `json:"new_urls"`
	Fetched           int `json:"fetched"`
	FetchFailures     int `json:"fetch_failures"`
	Artifacts         int `json:"artifacts"`
	TransformFailures int `json:"transform_failures"`
	Indexed           int `json:"indexed"`
	IndexFailures     int `json:"index_failures"`

	Analysis *analysis.Outcome `json:"analysis,omitempty"`

	// Errors carries step-level collaborator failures that did not abort
	// the run.
	Errors []string `json:"errors,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

func (s *Summary) completed(step string) {
	s.Steps = append(s.Steps, step)
}

func (s *Summary) addError(err error) {
	s.Errors = append(s.Errors, err.Error())
}
