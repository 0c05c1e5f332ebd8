package services_test

import (
	"errors"
	"strings"
	"testing"

	"learnlab/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "tts", "synthesize", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"tts", "synthesize", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "cache", "get", "lookup failed", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestContextRoundTrips(t *testing.T) {
	ctx := services.WithRunID(t.Context(), "run-1")
	ctx = services.WithStage(ctx, "retrieve_context")
	ctx = services.WithRequestID(ctx, "req-9")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("run id = %q, ok=%v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "retrieve_context" {
		t.Fatalf("stage = %q, ok=%v", stage, ok)
	}
	if id, ok := services.RequestIDFromContext(ctx); !ok || id != "req-9" {
		t.Fatalf("request id = %q, ok=%v", id, ok)
	}
}
