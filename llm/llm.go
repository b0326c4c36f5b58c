// Package llm is a minimal client for OpenAI-compatible chat-completion
// endpoints. Both the OCR client and the answering client are built on it;
// they differ only in configuration and prompt content.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config is the flat per-client option set resolved at startup.
type Config struct {
	APIKey      string
	BaseURL     string // endpoint root, e.g. https://api.openai.com/v1
	Model       string
	MaxTokens   int
	Temperature float64
}

// RemoteServiceError wraps any failure of a remote model call: transport
// errors, non-2xx statuses, API error payloads, and unparseable responses.
// The pipeline controller is the sole handler.
type RemoteServiceError struct {
	Service string // "ocr" or "solver"
	Err     error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Message mirrors the chat schema. Content is a list of typed parts so the
// same shape carries plain text and image payloads.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// TextMessage builds a single-part text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []Content{{Type: "text", Text: text}}}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message responseMessage `json:"message"`
}

type responseMessage struct {
	Content string `json:"content"`
}

type apiError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // string or number depending on provider
}

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// Client performs synchronous chat-completion calls against one endpoint.
type Client struct {
	service    string
	cfg        Config
	httpClient *http.Client
}

// New creates a client for the named service ("ocr", "solver"). The name
// appears in RemoteServiceError so surfaced messages say which call failed.
func New(service string, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &Client{
		service: service,
		cfg:     cfg,
		// No pipeline-level deadline exists; the transport timeout is the
		// only bound on an unresponsive endpoint.
		httpClient: &http.Client{Timeout: 45 * time.Second},
	}
}

// Complete sends the messages and returns the first choice's content.
// Transient failures are retried with backoff before giving up.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &RemoteServiceError{Service: c.service, Err: fmt.Errorf("API key is required")}
	}
	if c.cfg.Model == "" {
		return "", &RemoteServiceError{Service: c.service, Err: fmt.Errorf("model is required")}
	}

	request := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(initialDelay) * 1.5 * float64(attempt))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &RemoteServiceError{Service: c.service, Err: ctx.Err()}
			}
		}

		response, err := c.post(ctx, request)
		if err != nil {
			lastErr = err
			continue
		}

		if len(response.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in API response")
			continue
		}
		return response.Choices[0].Message.Content, nil
	}

	return "", &RemoteServiceError{
		Service: c.service,
		Err:     fmt.Errorf("failed after %d attempts: %v", maxRetries, lastErr),
	}
}

// Ping performs a cheap one-token completion to validate credentials and
// connectivity at startup.
func (c *Client) Ping(ctx context.Context) error {
	request := chatRequest{
		Model:     c.cfg.Model,
		Messages:  []Message{TextMessage("user", "ping")},
		MaxTokens: 1,
	}
	if c.cfg.APIKey == "" {
		return &RemoteServiceError{Service: c.service, Err: fmt.Errorf("API key is required")}
	}
	if _, err := c.post(ctx, request); err != nil {
		return &RemoteServiceError{Service: c.service, Err: err}
	}
	return nil
}

// Model reports the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) post(ctx context.Context, request chatRequest) (*chatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %v", err)
	}
	defer resp.Body.Close()

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (type: %s, code: %v)",
			response.Error.Message, response.Error.Type, response.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return &response, nil
}
