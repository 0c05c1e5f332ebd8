// Package engine drives content generation: it routes a request by output
// type, short-circuits podcasts on cache hits, and sequences retrieval,
// outline expansion, script generation, speech synthesis, and publishing.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnlab/internal/cache"
	"learnlab/internal/flashcards"
	"learnlab/internal/logging"
	"learnlab/internal/quiz"
	"learnlab/internal/runs"
	"learnlab/internal/script"
	"learnlab/internal/services"
	"learnlab/internal/services/retrieval"
)

// generatorItemCount is the fixed number of cards or questions requested
// from the flashcard and quiz generators.
const generatorItemCount = 5

// Retriever answers a question against an indexed document.
type Retriever interface {
	Query(ctx context.Context, question, documentID string) (retrieval.Result, error)
}

// ModelClient is the completion surface the podcast stages need.
type ModelClient interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Synthesizer turns one segment of text into PCM audio for a voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Publisher uploads a finished audio file and returns its public URL.
type Publisher interface {
	Publish(ctx context.Context, localPath, topic, documentID string) (string, error)
}

// BundleCache stores finished podcast bundles keyed by question and document.
type BundleCache interface {
	Get(question, documentID string) (*cache.Bundle, bool, error)
	Put(question, documentID string, bundle *cache.Bundle) error
}

// FlashcardGenerator produces a flashcard set from topic and context.
type FlashcardGenerator interface {
	Generate(ctx context.Context, topic, contextText string, count int) (*flashcards.Set, error)
}

// QuizGenerator produces a quiz from topic and context.
type QuizGenerator interface {
	Generate(ctx context.Context, topic, contextText string, count int) (*quiz.Set, error)
}

// RunRecorder persists run history. A nil recorder disables persistence.
type RunRecorder interface {
	Create(ctx context.Context, run *runs.Run) error
	Update(ctx context.Context, run *runs.Run) error
}

// Dependencies wires the engine's collaborators and settings.
type Dependencies struct {
	Retriever  Retriever
	Model      ModelClient
	Synth      Synthesizer
	Publisher  Publisher
	Cache      BundleCache
	Flashcards FlashcardGenerator
	Quiz       QuizGenerator
	Runs       RunRecorder
	Logger     *slog.Logger

	// Voices maps each speaker role to a synthesis voice identifier.
	Voices map[string]string
	// SampleRate is the PCM rate requested from the synthesizer.
	SampleRate int
	// StagingDir receives assembled audio files before publishing.
	StagingDir string
	// Now overrides the clock used for staging filenames.
	Now func() time.Time
}

// Engine executes generation runs. Safe for concurrent use; each run owns
// its own state.
type Engine struct {
	retriever  Retriever
	model      ModelClient
	synth      Synthesizer
	publisher  Publisher
	cache      BundleCache
	flashcards FlashcardGenerator
	quiz       QuizGenerator
	runs       RunRecorder
	logger     *slog.Logger
	voices     map[string]string
	sampleRate int
	stagingDir string
	now        func() time.Time
}

func New(deps Dependencies) (*Engine, error) {
	if deps.Retriever == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "retriever is required", nil)
	}
	if deps.Model == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "model client is required", nil)
	}
	if deps.Synth == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "synthesizer is required", nil)
	}
	if deps.Publisher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "publisher is required", nil)
	}
	if deps.Flashcards == nil || deps.Quiz == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "flashcard and quiz generators are required", nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	voices := deps.Voices
	if voices == nil {
		voices = map[string]string{}
	}
	sampleRate := deps.SampleRate
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		retriever:  deps.Retriever,
		model:      deps.Model,
		synth:      deps.Synth,
		publisher:  deps.Publisher,
		cache:      deps.Cache,
		flashcards: deps.Flashcards,
		quiz:       deps.Quiz,
		runs:       deps.Runs,
		logger:     logging.NewComponentLogger(logger, "engine"),
		voices:     voices,
		sampleRate: sampleRate,
		stagingDir: deps.StagingDir,
		now:        now,
	}, nil
}

// Request identifies one generation run.
type Request struct {
	Question   string
	DocumentID string
	OutputType string
}

// Result is the response bundle returned to the caller. The populated
// artifact field matches the requested output type; the others stay empty.
type Result struct {
	RunID          string          `json:"run_id"`
	Topic          string          `json:"topic"`
	OutputType     string          `json:"output_type"`
	DocumentID     string          `json:"source_document"`
	Script         string          `json:"script,omitempty"`
	Transcript     []string        `json:"conversation_history"`
	AudioURL       string          `json:"audio_url,omitempty"`
	LocalAudioPath string          `json:"local_audio_path,omitempty"`
	CacheHit       bool            `json:"cached"`
	Answer         string          `json:"answer,omitempty"`
	Evidence       []string        `json:"evidence,omitempty"`
	Flashcards     *flashcards.Set `json:"flashcards,omitempty"`
	Quiz           *quiz.Set       `json:"quiz,omitempty"`
}

// Generate runs one request to completion. The output type is validated
// before any collaborator is called.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	question := strings.TrimSpace(req.Question)
	documentID := strings.TrimSpace(req.DocumentID)
	outputType := strings.TrimSpace(req.OutputType)
	if outputType == "" {
		outputType = OutputPodcast
	}
	switch outputType {
	case OutputPodcast, OutputFlashcards, OutputQuiz:
	default:
		return nil, services.Wrap(services.ErrValidation, "engine", "generate", "unknown output type "+outputType, nil)
	}
	if question == "" {
		return nil, services.Wrap(services.ErrValidation, "engine", "generate", "question is required", nil)
	}
	if documentID == "" {
		return nil, services.Wrap(services.ErrValidation, "engine", "generate", "document identifier is required", nil)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, e.logger)

	record := &runs.Run{
		ID:         runID,
		Question:   question,
		DocumentID: documentID,
		OutputType: outputType,
		Status:     runs.StatusProcessing,
	}
	if e.runs != nil {
		if err := e.runs.Create(ctx, record); err != nil {
			return nil, services.Wrap(services.ErrTransient, "engine", "generate", "persist run", err)
		}
	}

	state := newRequestState(question, documentID, outputType)
	logger.Info(
		"run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("output_type", outputType),
		logging.String("document_id", documentID),
	)

	// The flashcard and quiz branches consume retrieval context but do not
	// own a retrieval stage; the context is fetched before the flow starts.
	if outputType != OutputPodcast {
		if err := e.populateRetrieval(ctx, state); err != nil {
			e.failRun(ctx, logger, record, err)
			return nil, err
		}
	}

	for state.Stage != StageComplete {
		next, err := e.runStage(ctx, state, record)
		if err != nil {
			e.failRun(ctx, logger, record, err)
			return nil, err
		}
		state.Stage = next
	}

	result := e.buildResult(runID, documentID, state)
	e.completeRun(ctx, logger, record, result)
	logger.Info(
		"run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("output_type", outputType),
		logging.Bool("cache_hit", result.CacheHit),
	)
	return result, nil
}

func (e *Engine) runStage(ctx context.Context, state *requestState, record *runs.Run) (Stage, error) {
	stageCtx := services.WithStage(ctx, string(state.Stage))
	logger := logging.WithContext(stageCtx, e.logger)
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	record.Stage = string(state.Stage)
	e.persistRun(stageCtx, logger, record)

	var next Stage
	var err error
	switch state.Stage {
	case StageRoute:
		next = e.stageRoute(state)
	case StageCheckCache:
		next = e.stageCheckCache(stageCtx, logger, state)
	case StageRetrieveContext:
		next, err = e.stageRetrieveContext(stageCtx, state)
	case StageExpandTopic:
		next, err = e.stageExpandTopic(stageCtx, state)
	case StageGenerateScript:
		next, err = e.stageGenerateScript(stageCtx, state)
	case StageSynthesize:
		next, err = e.stageSynthesize(stageCtx, logger, state)
	case StageGenerateFlashcards:
		next = e.stageGenerateFlashcards(stageCtx, logger, state)
	case StageGenerateQuiz:
		next = e.stageGenerateQuiz(stageCtx, logger, state)
	default:
		err = services.Wrap(services.ErrValidation, "engine", "run", "unknown stage "+string(state.Stage), nil)
	}
	if err != nil {
		logger.Error("stage failed", logging.String(logging.FieldEventType, "stage_failure"), logging.Error(err))
		return "", err
	}

	logger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_stage", string(next)),
	)
	return next, nil
}

func (e *Engine) populateRetrieval(ctx context.Context, state *requestState) error {
	result, err := e.retriever.Query(ctx, state.Retrieval.Question, state.Retrieval.DocumentID)
	if err != nil {
		return err
	}
	state.Retrieval.Answer = result.Answer
	state.Retrieval.Evidence = result.Evidence
	return nil
}

func (e *Engine) buildResult(runID, documentID string, state *requestState) *Result {
	result := &Result{
		RunID:      runID,
		Topic:      state.Topic,
		OutputType: state.OutputType,
		DocumentID: documentID,
		Transcript: state.transcript(),
	}
	switch state.OutputType {
	case OutputFlashcards:
		result.Flashcards = state.Flashcards
	case OutputQuiz:
		result.Quiz = state.Quiz
	default:
		result.Script = state.Script
		result.AudioURL = state.AudioURL
		result.LocalAudioPath = state.LocalPath
		result.CacheHit = state.Cache != nil && state.Cache.Found
	}
	if state.OutputType != OutputPodcast || !result.CacheHit {
		result.Answer = state.Retrieval.Answer
		result.Evidence = state.Retrieval.Evidence
	}
	return result
}

func (e *Engine) persistRun(ctx context.Context, logger *slog.Logger, record *runs.Run) {
	if e.runs == nil {
		return
	}
	if err := e.runs.Update(ctx, record); err != nil {
		logger.Warn("failed to persist run progress", logging.Error(err))
	}
}

func (e *Engine) failRun(ctx context.Context, logger *slog.Logger, record *runs.Run, runErr error) {
	logger.Error(
		"run failed",
		logging.String(logging.FieldEventType, "run_failure"),
		logging.Error(runErr),
	)
	record.SetFailed(runErr.Error())
	e.persistRun(ctx, logger, record)
}

func (e *Engine) completeRun(ctx context.Context, logger *slog.Logger, record *runs.Run, result *Result) {
	record.Status = runs.StatusCompleted
	record.Stage = string(StageComplete)
	record.AudioURL = result.AudioURL
	record.CacheHit = result.CacheHit
	if payload, err := json.Marshal(result); err == nil {
		record.PayloadJSON = string(payload)
	} else {
		logger.Warn("failed to encode run payload", logging.Error(err))
	}
	e.persistRun(ctx, logger, record)
}

// voiceFor resolves the synthesis voice for a speaker role. Unknown roles
// fall back to the first role's voice, mirroring the fallback parser's
// attribution rule.
func (e *Engine) voiceFor(speaker string) string {
	if voice, ok := e.voices[speaker]; ok && voice != "" {
		return voice
	}
	return e.voices[script.SpeakerOne]
}
