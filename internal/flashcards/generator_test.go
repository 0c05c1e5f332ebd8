package flashcards

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeModel struct {
	response string
	err      error
	prompt   string
}

func (f *fakeModel) CompleteJSON(_ context.Context, _ string, userPrompt string) (string, error) {
	f.prompt = userPrompt
	return f.response, f.err
}

func TestGeneratorParsesSet(t *testing.T) {
	model := &fakeModel{response: `{"title": "Photosynthesis", "flashcards": [
        {"front": "What pigment drives photosynthesis?", "back": "Chlorophyll", "explanation": "It absorbs red and blue light."},
        {"front": " Light reactions occur where? ", "back": " Thylakoid membranes "}
    ]}`}
	gen := NewGenerator(model)

	set, err := gen.Generate(t.Context(), "photosynthesis", "answer and evidence here", 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if set.Title != "Photosynthesis" {
		t.Fatalf("unexpected title %q", set.Title)
	}
	if len(set.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(set.Cards))
	}
	if set.Cards[1].Front != "Light reactions occur where?" {
		t.Fatalf("expected trimmed front, got %q", set.Cards[1].Front)
	}
	if !strings.Contains(model.prompt, "exactly 5 flashcards") {
		t.Fatalf("count missing from prompt: %q", model.prompt)
	}
	if !strings.Contains(model.prompt, "answer and evidence here") {
		t.Fatal("context missing from prompt")
	}
}

func TestGeneratorStripsCodeFence(t *testing.T) {
	model := &fakeModel{response: "```json\n{\"title\": \"T\", \"flashcards\": [{\"front\": \"f\", \"back\": \"b\"}]}\n```"}
	gen := NewGenerator(model)

	set, err := gen.Generate(t.Context(), "topic", "", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(set.Cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(set.Cards))
	}
}

func TestGeneratorDefaultsTitleAndCount(t *testing.T) {
	model := &fakeModel{response: `{"flashcards": [{"front": "f", "back": "b"}]}`}
	gen := NewGenerator(model)

	set, err := gen.Generate(t.Context(), "cell biology", "", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if set.Title != "cell biology" {
		t.Fatalf("expected topic as fallback title, got %q", set.Title)
	}
	if !strings.Contains(model.prompt, "exactly 5 flashcards") {
		t.Fatalf("expected default count of 5 in prompt: %q", model.prompt)
	}
}

func TestGeneratorErrors(t *testing.T) {
	gen := NewGenerator(&fakeModel{err: errors.New("boom")})
	if _, err := gen.Generate(t.Context(), "topic", "", 5); err == nil {
		t.Fatal("expected completion error")
	}

	gen = NewGenerator(&fakeModel{response: `{"title": "T", "flashcards": []}`})
	if _, err := gen.Generate(t.Context(), "topic", "", 5); err == nil {
		t.Fatal("expected error for empty card list")
	}

	gen = NewGenerator(&fakeModel{response: "not json"})
	if _, err := gen.Generate(t.Context(), "topic", "", 5); err == nil {
		t.Fatal("expected decode error")
	}

	gen = NewGenerator(&fakeModel{})
	if _, err := gen.Generate(t.Context(), "  ", "", 5); err == nil {
		t.Fatal("expected validation error for empty topic")
	}
}
