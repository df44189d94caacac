// Package analysis turns retrieved discussion text into a structured
// sentiment report via an LLM, with typed outcomes for every failure mode.
package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Status tags an analysis outcome.
type Status string

const (
	StatusOK     Status = "ok"      // Report is populated
	StatusNoData Status = "no_data" // knowledge base had nothing for the subject
	StatusError  Status = "error"   // LLM call or response parsing failed
)

// Report is the structured sentiment analysis for one laptop.
type Report struct {
	LaptopName           string   `json:"laptop_name"`
	Pros                 []string `json:"pros"`
	Cons                 []string `json:"cons"`
	SentimentScore       int      `json:"sentiment_score"` // 1-100
	SentimentExplanation string   `json:"sentiment_explanation"`
	KeyThemes            []string `json:"key_themes"`
	UserRecommendation   string   `json:"user_recommendation"`
}

// Outcome is the persisted result of one ANALYZE step. Exactly one of the
// three variants applies: a report, a no-data marker, or an error with the
// raw LLM text kept for diagnosis.
type Outcome struct {
	Subject     string    `json:"subject"`
	Status      Status    `json:"status"`
	Report      *Report   `json:"report,omitempty"`
	Error       string    `json:"error,omitempty"`
	RawResponse string    `json:"raw_response,omitempty"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// NoData builds the outcome for a subject with an empty knowledge base.
func NoData(subject string) *Outcome {
	return &Outcome{
		Subject:    subject,
		Status:     StatusNoData,
		Error:      "no relevant data found in knowledge base",
		AnalyzedAt: time.Now().UTC(),
	}
}

// Succeeded builds an OK outcome wrapping a report.
func Succeeded(subject string, report *Report) *Outcome {
	return &Outcome{
		Subject:    subject,
		Status:     StatusOK,
		Report:     report,
		AnalyzedAt: time.Now().UTC(),
	}
}

// Failed builds an error outcome. raw carries the unparsed LLM response
// when the failure was structural, empty otherwise.
func Failed(subject string, err error, raw string) *Outcome {
	return &Outcome{
		Subject:     subject,
		Status:      StatusError,
		Error:       err.Error(),
		RawResponse: raw,
		AnalyzedAt:  time.Now().UTC(),
	}
}

// Score returns the sentiment score, or 0 for non-OK outcomes. Comparison
// treats a failed side as scoring zero.
func (o *Outcome) Score() int {
	if o == nil || o.Status != StatusOK || o.Report == nil {
		return 0
	}
	return o.Report.SentimentScore
}

// SaveOutcome persists an outcome as indented JSON.
func SaveOutcome(path string, o *Outcome) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	return nil
}
