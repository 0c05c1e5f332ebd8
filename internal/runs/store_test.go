package runs

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	run := &Run{
		ID:         "run-1",
		Question:   "What is spaced repetition?",
		DocumentID: "doc-7",
		OutputType: "podcast",
	}
	if err := store.Create(ctx, run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if run.Status != StatusProcessing {
		t.Fatalf("expected default status %q, got %q", StatusProcessing, run.Status)
	}

	fetched, err := store.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Question != run.Question || fetched.DocumentID != run.DocumentID {
		t.Fatalf("fetched run mismatch: %+v", fetched)
	}
	if fetched.CreatedAt.IsZero() || fetched.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	run := &Run{ID: "run-2", Question: "q", DocumentID: "d", OutputType: "quiz"}
	if err := store.Create(ctx, run); err != nil {
		t.Fatalf("Create: %v", err)
	}

	run.Status = StatusCompleted
	run.Stage = "synthesize"
	run.AudioURL = "https://example.com/a.wav"
	run.CacheHit = true
	if err := store.Update(ctx, run); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, "run-2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q", StatusCompleted, fetched.Status)
	}
	if !fetched.CacheHit {
		t.Fatal("expected cache hit flag to persist")
	}
	if fetched.AudioURL != run.AudioURL {
		t.Fatalf("expected audio url %q, got %q", run.AudioURL, fetched.AudioURL)
	}
}

func TestStoreUpdateMissingRun(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(t.Context(), &Run{ID: "absent", Status: StatusFailed})
	if err == nil {
		t.Fatal("expected error updating absent run")
	}
}

func TestStoreCreateRequiresID(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(t.Context(), &Run{Question: "q"}); err == nil {
		t.Fatal("expected error for run without id")
	}
	if err := store.Create(t.Context(), nil); err == nil {
		t.Fatal("expected error for nil run")
	}
}

func TestStoreListAppliesLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	for _, id := range []string{"a", "b", "c"} {
		run := &Run{ID: id, Question: "q-" + id, DocumentID: "d", OutputType: "podcast"}
		if err := store.Create(ctx, run); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	listed, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(listed))
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetByID(t.Context(), "nope"); err == nil {
		t.Fatal("expected error for missing run")
	}
}
