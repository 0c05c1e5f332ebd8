package engine

import (
	"fmt"

	"learnlab/internal/cache"
	"learnlab/internal/flashcards"
	"learnlab/internal/quiz"
)

// Output types accepted by Generate.
const (
	OutputPodcast    = "podcast"
	OutputFlashcards = "flashcards"
	OutputQuiz       = "quiz"
)

// Stage identifies one node in the generation flow.
type Stage string

const (
	StageRoute              Stage = "route"
	StageCheckCache         Stage = "check_cache"
	StageRetrieveContext    Stage = "retrieve_context"
	StageExpandTopic        Stage = "expand_topic"
	StageGenerateScript     Stage = "generate_script"
	StageSynthesize         Stage = "synthesize"
	StageGenerateFlashcards Stage = "generate_flashcards"
	StageGenerateQuiz       Stage = "generate_quiz"
	StageComplete           Stage = "complete"
)

// Transcript message roles.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Message is one entry in the run's audit transcript.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// retrievalContext holds the document answer and evidence backing generation.
type retrievalContext struct {
	Question   string
	DocumentID string
	Answer     string
	Evidence   []string
}

// cacheResult records the outcome of the cache lookup.
type cacheResult struct {
	Found  bool
	Bundle *cache.Bundle
}

// requestState is the unit of work threaded through the stage flow. Each
// run owns its state exclusively; it is never shared across requests.
type requestState struct {
	Messages   []Message
	Topic      string
	OutputType string
	Retrieval  *retrievalContext
	Cache      *cacheResult
	AudioURL   string
	LocalPath  string
	Flashcards *flashcards.Set
	Quiz       *quiz.Set
	Stage      Stage
	Script     string
}

func newRequestState(question, documentID, outputType string) *requestState {
	intro := fmt.Sprintf("Create %s about: %s", outputType, question)
	if outputType == OutputPodcast {
		intro = fmt.Sprintf("Create a podcast about: %s", question)
	}
	return &requestState{
		Messages:   []Message{{Role: roleUser, Text: intro}},
		Topic:      question,
		OutputType: outputType,
		Retrieval:  &retrievalContext{Question: question, DocumentID: documentID},
		Stage:      StageRoute,
	}
}

func (s *requestState) appendAssistant(text string) {
	s.Messages = append(s.Messages, Message{Role: roleAssistant, Text: text})
}

// transcript returns the ordered message texts for response payloads and
// cache bundles.
func (s *requestState) transcript() []string {
	out := make([]string, 0, len(s.Messages))
	for _, msg := range s.Messages {
		out = append(out, msg.Text)
	}
	return out
}

// contextText renders the retrieval answer and evidence into the prompt
// form shared by the outline, script, flashcard, and quiz stages.
func (s *requestState) contextText() string {
	if s.Retrieval == nil {
		return ""
	}
	return renderContext(s.Retrieval.Answer, s.Retrieval.Evidence)
}
