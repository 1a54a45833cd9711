package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMockModeText(t *testing.T) {
	client := New("https://api.openai.com/v1", "gpt-4o-mini", "", true)

	got, err := client.Call(context.Background(), Options{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if got != "Mock LLM response" {
		t.Errorf("got %q, want canned mock text", got)
	}
}

func TestMockModeJSON(t *testing.T) {
	client := New("https://api.openai.com/v1", "gpt-4o-mini", "", true)

	got, err := client.Call(context.Background(), Options{System: "sys", Prompt: "hello", JSON: true})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	var parsed struct {
		Status string  `json:"status"`
		System *string `json:"system"`
		Prompt string  `json:"prompt"`
	}
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("mock payload is not JSON: %v", err)
	}
	if parsed.Status != "mock" || parsed.Prompt != "hello" {
		t.Errorf("unexpected payload: %+v", parsed)
	}
	if parsed.System == nil || *parsed.System != "sys" {
		t.Errorf("system not echoed: %+v", parsed.System)
	}
}

func TestMockModeJSONNullSystem(t *testing.T) {
	client := New("https://api.openai.com/v1", "gpt-4o-mini", "", true)

	got, err := client.Call(context.Background(), Options{Prompt: "hello", JSON: true})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !strings.Contains(got, `"system":null`) {
		t.Errorf("expected null system in %q", got)
	}
}

func TestMissingAPIKey(t *testing.T) {
	client := New("https://api.openai.com/v1", "gpt-4o-mini", "", false)

	if _, err := client.Call(context.Background(), Options{Prompt: "hello"}); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestCallSendsChatCompletion(t *testing.T) {
	var captured struct {
		Model          string `json:"model"`
		Messages       []struct{ Role, Content string }
		ResponseFormat *struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}
	var auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  answer  "}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "gpt-4o-mini", "secret", false)
	got, err := client.Call(context.Background(), Options{System: "sys", Prompt: "question", JSON: true})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if got != "answer" {
		t.Errorf("content = %q, want trimmed %q", got, "answer")
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if captured.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "question" {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format not requested: %+v", captured.ResponseFormat)
	}
}

func TestCallUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(server.URL, "gpt-4o-mini", "secret", false)
	_, err := client.Call(context.Background(), Options{Prompt: "question"})
	if err == nil {
		t.Fatal("expected an error for a 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestCallEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "gpt-4o-mini", "secret", false)
	if _, err := client.Call(context.Background(), Options{Prompt: "question"}); err == nil {
		t.Error("expected an error for empty choices")
	}
}
