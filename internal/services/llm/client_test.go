package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
	}
}

func TestCompleteTextReturnsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages: %+v", req.Messages)
		}
		if req.ResponseFormat != nil {
			t.Fatalf("text completion should not set response_format, got %v", req.ResponseFormat)
		}
		if err := json.NewEncoder(w).Encode(completionBody("an outline")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	content, err := client.CompleteText(context.Background(), "planner", "make an outline")
	if err != nil {
		t.Fatalf("CompleteText returned error: %v", err)
	}
	if content != "an outline" {
		t.Fatalf("content = %q", content)
	}
}

func TestCompleteJSONSetsResponseFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat["type"] != jsonResponseType {
			t.Fatalf("expected json response format, got %v", req.ResponseFormat)
		}
		if err := json.NewEncoder(w).Encode(completionBody(`{"ok":true}`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if err := json.NewEncoder(w).Encode(completionBody("recovered")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(time.Duration) {}),
	)
	content, err := client.CompleteText(context.Background(), "planner", "try again")
	if err != nil {
		t.Fatalf("CompleteText returned error: %v", err)
	}
	if content != "recovered" || calls != 2 {
		t.Fatalf("content=%q calls=%d", content, calls)
	}
}

func TestCompleteDoesNotRetryClientError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.CompleteText(context.Background(), "planner", "hello"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestCompleteRequiresPrompts(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://unused", Model: "demo"})
	if _, err := client.CompleteText(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
	if _, err := client.CompleteText(context.Background(), "sys", ""); err == nil {
		t.Fatal("expected error for empty user prompt")
	}
}

func TestDecodeLLMJSONStripsCodeFence(t *testing.T) {
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON("```json\n{\"ok\":true}\n```", &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if !parsed.OK {
		t.Fatal("expected ok=true")
	}
}

func TestDecodeLLMJSONExtractsEmbeddedObject(t *testing.T) {
	var parsed struct {
		Value string `json:"value"`
	}
	input := "Sure, here is the JSON you asked for: {\"value\":\"x\"} hope it helps"
	if err := DecodeLLMJSON(input, &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if parsed.Value != "x" {
		t.Fatalf("value = %q", parsed.Value)
	}
}

func TestDecodeLLMJSONRejectsGarbage(t *testing.T) {
	var parsed map[string]any
	err := DecodeLLMJSON("Speaker 1: hello there", &parsed)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "snippet") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
}
