package logging

import (
	"path/filepath"
	"testing"

	"learnlab/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "learnlab.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithRunID(t.Context(), "run-42")
	ctx = services.WithStage(ctx, "generate_script")

	fields := ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	keys := map[string]bool{}
	for _, f := range fields {
		keys[f.Key] = true
	}
	if !keys[FieldRunID] || !keys[FieldStage] {
		t.Fatalf("missing expected keys in %v", keys)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(t.Context(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("discarded")
}
