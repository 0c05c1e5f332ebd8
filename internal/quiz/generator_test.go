package quiz

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

const sampleQuizJSON = `{
    "title": "Mitosis Basics",
    "description": "Checks understanding of cell division.",
    "questions": [
        {"question": "In which phase do chromosomes align at the equator?", "options": ["Prophase", "Metaphase", "Anaphase", "Telophase"], "correct_answer": "Metaphase", "explanation": "Spindle fibers align chromosomes at the metaphase plate.", "difficulty": "easy"},
        {"question": "What separates during anaphase?", "options": ["Sister chromatids", "Nucleoli", "Centrioles", "Membranes"], "correct_answer": "Sister chromatids", "difficulty": "medium"}
    ],
    "total_points": 20,
    "recommended_time_minutes": 4
}`

func TestGeneratorParsesQuiz(t *testing.T) {
	model := &fakeModel{response: sampleQuizJSON}
	gen := NewGenerator(model)

	set, err := gen.Generate(t.Context(), "mitosis", "retrieval context", 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if set.Title != "Mitosis Basics" {
		t.Fatalf("unexpected title %q", set.Title)
	}
	if len(set.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(set.Questions))
	}
	if set.TotalPoints != 20 || set.RecommendedTime != 4 {
		t.Fatalf("unexpected points/time: %d/%d", set.TotalPoints, set.RecommendedTime)
	}
	if !strings.Contains(model.prompt, "exactly 5 questions") {
		t.Fatalf("count missing from prompt: %q", model.prompt)
	}
	if !strings.Contains(model.prompt, "retrieval context") {
		t.Fatal("context missing from prompt")
	}
}

func TestGeneratorFillsDefaults(t *testing.T) {
	model := &fakeModel{response: `{"questions": [{"question": "q?", "options": ["a", "b"], "correct_answer": "a"}]}`}
	gen := NewGenerator(model)

	set, err := gen.Generate(t.Context(), "osmosis", "", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if set.Title != "osmosis" {
		t.Fatalf("expected topic as fallback title, got %q", set.Title)
	}
	if set.TotalPoints != 10 {
		t.Fatalf("expected derived total points 10, got %d", set.TotalPoints)
	}
	if set.RecommendedTime != 1 {
		t.Fatalf("expected derived time 1, got %d", set.RecommendedTime)
	}
}

func TestGeneratorErrors(t *testing.T) {
	gen := NewGenerator(&fakeModel{err: errors.New("boom")})
	if _, err := gen.Generate(t.Context(), "topic", "", 5); err == nil {
		t.Fatal("expected completion error")
	}

	gen = NewGenerator(&fakeModel{response: `{"title": "T", "questions": []}`})
	if _, err := gen.Generate(t.Context(), "topic", "", 5); err == nil {
		t.Fatal("expected error for empty question list")
	}

	gen = NewGenerator(&fakeModel{})
	if _, err := gen.Generate(t.Context(), "", "", 5); err == nil {
		t.Fatal("expected validation error for empty topic")
	}
}
