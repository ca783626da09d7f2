// Package llm provides the local Ollama client used for companion cognition,
// plus the retry, backoff, and circuit-breaker policy wrapped around it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the standard local Ollama address.
const DefaultBaseURL = "http://localhost:11434"

// Typed failure kinds surfaced by the client. Callers branch on these with
// errors.Is; everything else is a plain wrapped error.
var (
	// ErrQueryTimeout means the request exceeded its timeout budget.
	ErrQueryTimeout = errors.New("llm: query timeout")
	// ErrQueryUnavailable means the endpoint refused the connection or the
	// circuit breaker is open.
	ErrQueryUnavailable = errors.New("llm: query unavailable")
)

// Message is a single chat message in Ollama's wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to a local Ollama instance over /api/chat.
// The model identifier is fixed at construction; there is no ambient
// process-wide model name.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates an Ollama client for the given base URL and model.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // Backstop; per-request ctx is tighter.
		},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// chatRequest is the /api/chat request body.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// chatResponse is the subset of the /api/chat response we read.
type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Complete sends the messages to Ollama and returns the raw completion text.
// Timeouts map to ErrQueryTimeout and connection failures to
// ErrQueryUnavailable so the caller's policy layer can classify them.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrQueryUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrQueryUnavailable, resp.StatusCode, respBody)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return chat.Message.Content, nil
}
