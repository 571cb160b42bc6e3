// Package ai talks to the hosted chat-completions endpoint that backs
// every judge on the panel.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/paperjury/paperjury/internal/domain/ai"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// Every call gets the same fixed deadline. Long papers legitimately take
// minutes; anything past this is treated as a network failure.
const callTimeout = 120 * time.Second

const maxErrorBody = 2048

// ClientConfig carries everything one generation call needs beyond the
// request itself. Temperature and token limits travel in each request so
// that per-judge overrides, including zero, survive the trip.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Delay      time.Duration
	LogPrompts bool
	LogDir     string
}

type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	return NewClientWithHTTP(cfg, nil)
}

// NewClientWithHTTP creates a client with a custom HTTP client (for testing).
func NewClientWithHTTP(cfg ClientConfig, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate performs one chat-completion call. Remote failures of any kind
// come back as diagnostic results; Generate itself never errors and never
// retries. Each call carries the fixed deadline.
func (c *Client) Generate(ctx context.Context, req ai.Request) ai.Result {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}

	if c.cfg.LogPrompts {
		// Best effort: a failed log write must not cost the call.
		_, _ = WritePromptLog(c.cfg.LogDir, time.Now(), req)
	}

	t := timeout.New[ai.Result](timeout.Config{
		DefaultTimeout: callTimeout,
	})
	res, err := t.Execute(ctx, callTimeout, func(ctx context.Context) (ai.Result, error) {
		return c.post(ctx, req)
	})
	if err != nil {
		return ai.DiagnosticResult(ai.KindNetworkError, err.Error())
	}
	return res
}

// Pause sleeps the configured inter-call delay, or until ctx is done.
func (c *Client) Pause(ctx context.Context) {
	if c.cfg.Delay <= 0 {
		return
	}
	select {
	case <-time.After(c.cfg.Delay):
	case <-ctx.Done():
	}
}

// post runs the HTTP exchange. The returned error covers transport-level
// failures only; protocol-level failures are classified into the result.
func (c *Client) post(ctx context.Context, req ai.Request) (ai.Result, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return ai.Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return ai.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ai.Result{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close after read

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, resp.Body), nil
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ai.DiagnosticResult(ai.KindResponseFormat, "response body is not valid JSON"), nil
	}
	if len(parsed.Choices) == 0 {
		return ai.DiagnosticResult(ai.KindResponseFormat, "response contains no choices"), nil
	}
	if parsed.Choices[0].Message.Content == nil {
		return ai.DiagnosticResult(ai.KindResponseFormat, "response message has no content"), nil
	}

	content := strings.TrimSpace(*parsed.Choices[0].Message.Content)
	if content == "" {
		return ai.DiagnosticResult(ai.KindEmptyContent, req.Model), nil
	}
	return ai.TextResult(content), nil
}

func classifyStatus(status int, body io.Reader) ai.Result {
	detail := readErrorBody(body)
	switch status {
	case http.StatusBadRequest:
		return ai.DiagnosticResult(ai.KindBadRequest, errorMessage(detail))
	case http.StatusUnauthorized:
		return ai.DiagnosticResult(ai.KindUnauthorized, detail)
	case http.StatusPaymentRequired:
		return ai.DiagnosticResult(ai.KindPaymentRequired, detail)
	case http.StatusTooManyRequests:
		return ai.DiagnosticResult(ai.KindRateLimited, detail)
	default:
		return ai.DiagnosticResult(ai.KindServerError, strconv.Itoa(status))
	}
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// errorMessage digs the human-readable message out of an error body. The
// endpoint wraps it as {"error": {"message": ...}}; anything unparseable is
// passed through raw.
func errorMessage(body string) string {
	var wrapped struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal([]byte(body), &wrapped) != nil || len(wrapped.Error) == 0 {
		return body
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(wrapped.Error, &obj) == nil && obj.Message != "" {
		return obj.Message
	}
	var msg string
	if json.Unmarshal(wrapped.Error, &msg) == nil && msg != "" {
		return msg
	}
	return body
}
