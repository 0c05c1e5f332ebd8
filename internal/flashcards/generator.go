// Package flashcards generates study flashcard sets from retrieved
// document context using a JSON-mode model completion.
package flashcards

import (
	"context"
	"fmt"
	"strings"

	"learnlab/internal/services"
	"learnlab/internal/services/llm"
)

// Card is a single front/back study card.
type Card struct {
	Front       string `json:"front"`
	Back        string `json:"back"`
	Explanation string `json:"explanation,omitempty"`
}

// Set is a titled collection of cards.
type Set struct {
	Title string `json:"title"`
	Cards []Card `json:"flashcards"`
}

// ModelClient is the completion surface the generator needs.
type ModelClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator produces flashcard sets for a topic grounded in context.
type Generator struct {
	client ModelClient
}

func NewGenerator(client ModelClient) *Generator {
	return &Generator{client: client}
}

const systemPrompt = `You are an educational content engine that creates high-quality study flashcards.
Respond with a single JSON object of the form:
{"title": "...", "flashcards": [{"front": "...", "back": "...", "explanation": "..."}]}
Each front is a focused question or term, each back is a concise accurate answer, and each explanation adds one sentence of supporting detail. Ground every card in the provided context and do not invent facts.`

// Generate produces count cards for the topic. The context string should
// contain the retrieval answer and supporting evidence.
func (g *Generator) Generate(ctx context.Context, topic, contextText string, count int) (*Set, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, services.Wrap(services.ErrValidation, "flashcards", "generate", "topic is required", nil)
	}
	if count <= 0 {
		count = 5
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Create exactly %d flashcards about: %s\n\n", count, topic)
	if strings.TrimSpace(contextText) != "" {
		fmt.Fprintf(&builder, "Use this context to generate accurate flashcards:\n%s\n", contextText)
	}

	content, err := g.client.CompleteJSON(ctx, systemPrompt, builder.String())
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "flashcards", "generate", "completion failed", err)
	}

	var set Set
	if err := llm.DecodeLLMJSON(content, &set); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "flashcards", "generate", "response was not a flashcard set", err)
	}
	if len(set.Cards) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "flashcards", "generate", "model returned no cards", nil)
	}
	if strings.TrimSpace(set.Title) == "" {
		set.Title = topic
	}
	for i := range set.Cards {
		set.Cards[i].Front = strings.TrimSpace(set.Cards[i].Front)
		set.Cards[i].Back = strings.TrimSpace(set.Cards[i].Back)
	}
	return &set, nil
}
