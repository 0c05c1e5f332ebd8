// Package quiz generates multiple-choice quizzes from retrieved
// document context and grades submitted answers.
package quiz

import (
	"context"
	"fmt"
	"strings"

	"learnlab/internal/services"
	"learnlab/internal/services/llm"
)

// Question is one multiple-choice item.
type Question struct {
	Prompt      string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"correct_answer"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
}

// Set is a complete quiz ready for display or grading.
type Set struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Questions       []Question `json:"questions"`
	TotalPoints     int        `json:"total_points"`
	RecommendedTime int        `json:"recommended_time_minutes"`
}

// ModelClient is the completion surface the generator needs.
type ModelClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator produces quizzes for a topic grounded in context.
type Generator struct {
	client ModelClient
}

func NewGenerator(client ModelClient) *Generator {
	return &Generator{client: client}
}

const systemPrompt = `You are an assessment engine that writes multiple-choice quizzes.
Respond with a single JSON object of the form:
{"title": "...", "description": "...", "questions": [{"question": "...", "options": ["...", "...", "...", "..."], "correct_answer": "...", "explanation": "...", "difficulty": "easy|medium|hard"}], "total_points": 0, "recommended_time_minutes": 0}
Each question has exactly four options, correct_answer must match one option verbatim, and every question must be answerable from the provided context alone.`

// Generate produces a quiz with count questions for the topic.
func (g *Generator) Generate(ctx context.Context, topic, contextText string, count int) (*Set, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, services.Wrap(services.ErrValidation, "quiz", "generate", "topic is required", nil)
	}
	if count <= 0 {
		count = 5
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Create a quiz with exactly %d questions about: %s\n\n", count, topic)
	if strings.TrimSpace(contextText) != "" {
		fmt.Fprintf(&builder, "Base every question on this context:\n%s\n", contextText)
	}

	content, err := g.client.CompleteJSON(ctx, systemPrompt, builder.String())
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "quiz", "generate", "completion failed", err)
	}

	var set Set
	if err := llm.DecodeLLMJSON(content, &set); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "quiz", "generate", "response was not a quiz", err)
	}
	if len(set.Questions) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "quiz", "generate", "model returned no questions", nil)
	}
	if strings.TrimSpace(set.Title) == "" {
		set.Title = topic
	}
	if set.TotalPoints <= 0 {
		set.TotalPoints = len(set.Questions) * 10
	}
	if set.RecommendedTime <= 0 {
		set.RecommendedTime = len(set.Questions)
	}
	for i := range set.Questions {
		set.Questions[i].Prompt = strings.TrimSpace(set.Questions[i].Prompt)
		set.Questions[i].Answer = strings.TrimSpace(set.Questions[i].Answer)
	}
	return &set, nil
}
