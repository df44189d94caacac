// Package embedding generates OpenAI embeddings for artifact sections and
// retrieval queries.
package embedding

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client shared by embedding and analysis.
type Client struct {
	client *openai.Client
}

// NewClient constructs the OpenAI client. A missing OPENAI_API_KEY is an
// unrecoverable setup error and fails construction rather than the first
// request.
func NewClient() (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// openai-go reads OPENAI_API_KEY from the environment itself.
	client := openai.NewClient()
	return &Client{client: &client}, nil
}

// Client exposes the underlying OpenAI client so the analysis package can
// reuse the same connection for chat completions.
func (c *Client) Client() *openai.Client {
	return c.client
}
