package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnlab/internal/services"
)

func TestQueryDecodesAnswerAndEvidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Question != "what is attention?" || req.DocumentID != "transformers.pdf" {
			t.Fatalf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer":          "Attention weighs token relevance.",
			"relevant_chunks": []string{"chunk one", "chunk two"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	result, err := client.Query(context.Background(), "what is attention?", "transformers.pdf")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if result.Answer == "" || len(result.Evidence) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestQueryUnknownDocumentIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Query(context.Background(), "anything", "missing.pdf")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestQueryValidatesInput(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"})
	if _, err := client.Query(context.Background(), "", "doc"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := client.Query(context.Background(), "question", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
