// Package ai provides a minimal client for OpenAI-compatible chat-completion
// endpoints, with a mock mode for offline development and tests.
package ai

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

const defaultSystemPrompt = "You are a helpful assistant."

// Options describes a single completion request
type Options struct {
	System string
	Prompt string
	// JSON requests a JSON-object response from the model
	JSON bool
}

// Client calls a chat-completions endpoint
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	mock       bool
	httpClient *http.Client
}

// New creates a Client. When mock is true no network calls are made and
// canned payloads are returned instead.
func New(baseURL, model, apiKey string, mock bool) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		mock:       mock,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Mock returns true when the client operates in mock mode
func (c *Client) Mock() bool {
	return c.mock
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Call sends one completion request and returns the assistant's content
func (c *Client) Call(ctx context.Context, opts Options) (string, error) {
	if c.mock {
		return c.mockPayload(opts)
	}

	if c.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is not set")
	}

	system := opts.System
	if system == "" {
		system = defaultSystemPrompt
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: opts.Prompt},
		},
	}
	if opts.JSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("LLM request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("LLM response did not include any content")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// mockPayload mirrors the shape a real completion would have: a JSON object
// echoing the request when JSON output was asked for, a fixed string otherwise.
func (c *Client) mockPayload(opts Options) (string, error) {
	if !opts.JSON {
		return "Mock LLM response", nil
	}

	mock := struct {
		Status string  `json:"status"`
		System *string `json:"system"`
		Prompt string  `json:"prompt"`
	}{Status: "mock", Prompt: opts.Prompt}
	if opts.System != "" {
		mock.System = &opts.System
	}

	data, err := json.Marshal(mock)
	if err != nil {
		return "", fmt.Errorf("failed to encode mock payload: %w", err)
	}
	return string(data), nil
}
