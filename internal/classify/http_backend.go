package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// systemPrompt instructs the backend to behave as a plain text classifier.
// The response contract is strict JSON so the gateway can parse it without
// scraping prose.
const systemPrompt = `You are a text classifier for a host security agent. Classify the user's text and respond with ONLY valid JSON, no markdown fences, no commentary:
{"label":"<class>","score":<confidence between 0 and 1>}`

// maxResponseBody caps how much of the backend response is read.
// Classification replies are tiny; anything larger is a misbehaving backend.
const maxResponseBody = 1 << 20

// HTTPBackend calls an OpenAI-compatible chat-completions endpoint.
//
// Design decision: The backend speaks the de-facto local-LLM wire format
// (the same one llama.cpp, Ollama, and vLLM expose) instead of a vendor
// SDK. That keeps the agent pointable at whatever the host already runs
// and keeps the dependency surface flat.
type HTTPBackend struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

// BackendOption configures an HTTPBackend.
type BackendOption func(*HTTPBackend)

// WithHTTPClient replaces the default HTTP client. The agent uses this to
// route backend requests through the relay's SOCKS proxy when anonymity is
// active and the backend is remote.
func WithHTTPClient(client *http.Client) BackendOption {
	return func(b *HTTPBackend) {
		if client != nil {
			b.client = client
		}
	}
}

// NewHTTPBackend creates a backend for the given endpoint.
// apiKey may be empty for local backends.
func NewHTTPBackend(apiURL, apiKey, model string, timeout time.Duration, opts ...BackendOption) *HTTPBackend {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	b := &HTTPBackend{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// chatRequest is the request body for the chat-completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the completion response the backend reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// labelResponse is the JSON the system prompt demands from the model.
type labelResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends text to the endpoint and parses the structured reply.
func (b *HTTPBackend) Classify(ctx context.Context, text string) (string, float64, error) {
	body, err := json.Marshal(chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		MaxTokens:   100,
		Temperature: 0,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("classify request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read classify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("classify backend returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", 0, fmt.Errorf("failed to decode classify response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", 0, fmt.Errorf("classify backend returned no choices")
	}

	return parseLabel(completion.Choices[0].Message.Content)
}

// parseLabel extracts the label JSON from the model reply.
// Models occasionally wrap JSON in markdown fences despite instructions,
// so fences are stripped before decoding.
func parseLabel(raw string) (string, float64, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var lr labelResponse
	if err := json.Unmarshal([]byte(raw), &lr); err != nil {
		return "", 0, fmt.Errorf("unparseable classification %q: %w", raw, err)
	}
	if lr.Label == "" {
		return "", 0, fmt.Errorf("classification missing label: %q", raw)
	}
	return lr.Label, lr.Score, nil
}
