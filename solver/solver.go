// Package solver answers extracted questions via the configured chat model.
package solver

import (
	"context"
	"strings"

	"screen-assistant/llm"
	"screen-assistant/prompt"
	"screen-assistant/session"
)

// Client wraps the chat endpoint configured for answering.
type Client struct {
	llm *llm.Client
}

func New(client *llm.Client) *Client {
	return &Client{llm: client}
}

// Answer sends the extracted text plus prior exchanges and returns the
// model's markdown answer.
func (c *Client) Answer(ctx context.Context, extractedText string, history []session.Exchange) (string, error) {
	messages := prompt.Build(extractedText, history)
	answer, err := c.llm.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Ping verifies credentials and connectivity at startup.
func (c *Client) Ping(ctx context.Context) error {
	return c.llm.Ping(ctx)
}

// Model reports the configured model identifier for logging.
func (c *Client) Model() string {
	return c.llm.Model()
}
