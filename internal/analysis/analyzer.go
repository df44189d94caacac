package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
)

// maxContextChars bounds the retrieved text passed to the model, roughly
// 16k tokens at 4 chars per token.
const maxContextChars = 64000

// ParseError reports an LLM response that was not valid report JSON. Raw
// carries the unparsed text for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse analysis response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Analyzer produces sentiment reports with GPT-4o.
type Analyzer struct {
	client *openai.Client
}

// NewAnalyzer creates an analyzer on an existing OpenAI client. The client
// is caller-owned and shared with the embedder.
func NewAnalyzer(client *openai.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze asks the model for a structured sentiment report grounded in the
// retrieved context texts. A response that is not valid report JSON returns
// a *ParseError so callers can persist the raw text.
func (a *Analyzer) Analyze(ctx context.Context, laptopName string, contexts []string) (*Report, error) {
	prompt := buildPrompt(laptopName, contexts)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4o,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return parseReport(resp.Choices[0].Message.Content)
}

// parseReport decodes the model output, tolerating markdown code fences
// around the JSON.
func parseReport(raw string) (*Report, error) {
	text := stripFences(raw)

	var report Report
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if report.SentimentScore < 1 || report.SentimentScore > 100 {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("sentiment_score %d out of range 1-100", report.SentimentScore)}
	}
	return &report, nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// buildPrompt assembles the reviewer prompt with the retrieved discussions
// joined by separators, truncated to the context budget.
func buildPrompt(laptopName string, contexts []string) string {
	joined := strings.Join(contexts, "\n\n---\n\n")
	if len(joined) > maxContextChars {
		joined = joined[:maxContextChars]
	}

	return fmt.Sprintf(`You are an expert laptop reviewer analyzing Reddit discussions and user feedback.

LAPTOP: %s

CONTEXT FROM REDDIT DISCUSSIONS:
%s

Based on the above Reddit discussions and user feedback, provide a comprehensive analysis in the following JSON format:

{
    "laptop_name": "%s",
    "pros": ["3-5 key advantages mentioned by users, with specific details from the context"],
    "cons": ["3-5 key disadvantages or common complaints, with specific details from the context"],
    "sentiment_score": 75,
    "sentiment_explanation": "Brief explanation of why this score was given (1-2 sentences)",
    "key_themes": ["2-3 recurring themes from user discussions, e.g. 'Thermal performance'"],
    "user_recommendation": "Overall recommendation based on user sentiment (1-2 sentences)"
}

SCORING GUIDELINES:
- sentiment_score is a 1-100 scale:
  - 90-100: Overwhelmingly positive, highly recommended
  - 75-89: Mostly positive with minor issues
  - 60-74: Mixed reviews, has notable pros and cons
  - 40-59: More negative than positive
  - 1-39: Mostly negative, not recommended

IMPORTANT:
- Base your analysis ONLY on the provided context
- If context is insufficient, mention this in the analysis
- Be specific and cite examples from the Reddit discussions
- Return ONLY valid JSON, no additional text`, laptopName, joined, laptopName)
}
