package cache

import (
	"bytes"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func sampleBundle() *Bundle {
	return &Bundle{
		Topic:      "what is attention?",
		Script:     "Speaker 1: Hello",
		Transcript: []string{"Create a podcast about: what is attention?"},
		DocumentID: "transformers.pdf",
		AudioURL:   "https://cdn.example.com/podcasts/abc.wav",
		Answer:     "Attention weighs token relevance.",
		Evidence:   []string{"chunk one"},
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

func TestGetMissingKey(t *testing.T) {
	store := openStore(t)
	bundle, found, err := store.Get("question", "doc")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found || bundle != nil {
		t.Fatalf("expected miss, got found=%v bundle=%+v", found, bundle)
	}
}

func TestPutThenGetRoundTrip(t *testing.T) {
	store := openStore(t)
	want := sampleBundle()
	if err := store.Put("what is attention?", "transformers.pdf", want); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, found, err := store.Get("what is attention?", "transformers.pdf")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.AudioURL != want.AudioURL || got.Topic != want.Topic || len(got.Evidence) != 1 {
		t.Fatalf("bundle = %+v", got)
	}
}

func TestKeyIsCompositeOfQuestionAndDocument(t *testing.T) {
	base := Key("q", "doc")
	if bytes.Equal(base, Key("q", "other")) {
		t.Fatal("expected different key for different document")
	}
	if bytes.Equal(base, Key("other", "doc")) {
		t.Fatal("expected different key for different question")
	}
	if !bytes.Equal(base, Key(" q ", "doc")) {
		t.Fatal("expected whitespace-insensitive key")
	}
}

func TestEntriesAndClear(t *testing.T) {
	store := openStore(t)
	if err := store.Put("q1", "doc", sampleBundle()); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put("q2", "doc", sampleBundle()); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	entries, err := store.Entries()
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}

	dropped, err := store.Clear()
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if dropped != 2 {
		t.Fatalf("dropped = %d", dropped)
	}
	if _, found, err := store.Get("q1", "doc"); err != nil || found {
		t.Fatalf("expected miss after clear, found=%v err=%v", found, err)
	}
}
