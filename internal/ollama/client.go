// internal/ollama/client.go
// Package ollama provides a minimal non-streaming chat client for Ollama HTTP endpoints.
//
// Benchmark requests are always non-streaming so the full response, including
// Ollama's nanosecond timing metadata, arrives as one unit.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/smolpc/benchkit/internal/logging"
)

// Named failure classes for a benchmark request. Callers distinguish these
// with errors.Is; each aborts the current test with a specific message.
var (
	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("ollama: request timed out")
	// ErrConnectionRefused indicates no server was listening at the endpoint.
	ErrConnectionRefused = errors.New("ollama: connection refused")
	// ErrBadStatus indicates a non-success HTTP status.
	ErrBadStatus = errors.New("ollama: unexpected response status")
	// ErrBadResponse indicates a response body that could not be parsed.
	ErrBadResponse = errors.New("ollama: unparseable response body")
)

// ChatMessage is a single message in a chat request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the non-streaming /api/chat response, including Ollama's
// native timing metadata. Duration fields are nanoseconds.
type ChatResponse struct {
	Model              string      `json:"model"`
	Message            ChatMessage `json:"message"`
	Done               bool        `json:"done"`
	TotalDuration      int64       `json:"total_duration"`
	LoadDuration       int64       `json:"load_duration"`
	PromptEvalCount    int         `json:"prompt_eval_count"`
	PromptEvalDuration int64       `json:"prompt_eval_duration"`
	EvalCount          int         `json:"eval_count"`
	EvalDuration       int64       `json:"eval_duration"`
}

// Client issues chat requests against a single Ollama host.
type Client struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// New constructs a Client for the given base URL and request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// BaseURL returns the host endpoint this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Chat sends a non-streaming chat completion request and returns the parsed
// response. Failures are classified as timeout, connection-refused, bad
// status, or unparseable body.
func (c *Client) Chat(ctx context.Context, model string, messages []ChatMessage) (*ChatResponse, error) {
	payload := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("BENCH->LLM", c.baseURL, model, body)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(err)
	}
	logging.LogRequest("LLM->BENCH", c.baseURL, model, respBody)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: /api/chat returned %s: %s", ErrBadStatus, resp.Status, strings.TrimSpace(string(respBody)))
	}

	var result ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	return &result, nil
}

// classify maps transport errors onto the named failure classes.
func (c *Client) classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w at %s: %v", ErrConnectionRefused, c.baseURL, err)
	default:
		return err
	}
}
