package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"learnlab/internal/audio"
	"learnlab/internal/cache"
	"learnlab/internal/flashcards"
	"learnlab/internal/logging"
	"learnlab/internal/quiz"
	"learnlab/internal/script"
	"learnlab/internal/services"
)

func (e *Engine) stageRoute(state *requestState) Stage {
	switch state.OutputType {
	case OutputFlashcards:
		return StageGenerateFlashcards
	case OutputQuiz:
		return StageGenerateQuiz
	default:
		return StageCheckCache
	}
}

// stageCheckCache looks up a previously published bundle. A lookup error is
// treated as a miss so a degraded cache never blocks generation.
func (e *Engine) stageCheckCache(_ context.Context, logger *slog.Logger, state *requestState) Stage {
	state.Cache = &cacheResult{}
	if e.cache == nil {
		return StageRetrieveContext
	}

	bundle, found, err := e.cache.Get(state.Retrieval.Question, state.Retrieval.DocumentID)
	if err != nil {
		logger.Warn("cache lookup failed, regenerating", logging.Error(err))
		return StageRetrieveContext
	}
	if !found {
		return StageRetrieveContext
	}

	state.Cache = &cacheResult{Found: true, Bundle: bundle}
	state.AudioURL = bundle.AudioURL
	state.Script = bundle.Script
	state.appendAssistant(fmt.Sprintf("Retrieved cached podcast: %s", bundle.AudioURL))
	return StageSynthesize
}

func (e *Engine) stageRetrieveContext(ctx context.Context, state *requestState) (Stage, error) {
	if err := e.populateRetrieval(ctx, state); err != nil {
		return "", err
	}
	state.appendAssistant(fmt.Sprintf("Research Context:\n%s", state.contextText()))
	return StageExpandTopic, nil
}

func (e *Engine) stageExpandTopic(ctx context.Context, state *requestState) (Stage, error) {
	prompt := buildOutlinePrompt(state.Topic, state.contextText(), state.transcript())
	outline, err := e.model.CompleteText(ctx, OutlinePrompt, prompt)
	if err != nil {
		return "", err
	}
	state.appendAssistant(outline)
	return StageGenerateScript, nil
}

// stageGenerateScript asks the model for a structured script. A response
// that fails strict decoding is stored raw; the synthesis stage recovers it
// with the fallback parser.
func (e *Engine) stageGenerateScript(ctx context.Context, state *requestState) (Stage, error) {
	outline := state.Messages[len(state.Messages)-1].Text
	prompt := buildScriptPrompt(state.contextText(), state.transcript(), outline)
	response, err := e.model.CompleteText(ctx, ScriptPrompt, prompt)
	if err != nil {
		return "", err
	}

	if structured, decodeErr := script.Decode(response); decodeErr == nil {
		if encoded, encodeErr := structured.Encode(); encodeErr == nil {
			state.Script = encoded
		} else {
			state.Script = response
		}
	} else {
		state.Script = response
	}
	state.appendAssistant(response)
	return StageSynthesize, nil
}

// stageSynthesize turns the script into a published audio artifact. On a
// cache hit it is a no-op. A publish failure does not fail the run: the
// audio stays at its local staging path and the cache is left unwritten so
// the next identical request regenerates.
func (e *Engine) stageSynthesize(ctx context.Context, logger *slog.Logger, state *requestState) (Stage, error) {
	if state.Cache != nil && state.Cache.Found {
		return StageComplete, nil
	}
	if state.Script == "" {
		return "", services.Wrap(services.ErrValidation, "engine", "synthesize", "no script available", nil)
	}

	parsed := script.Parse(state.Script)
	clips := make([]audio.Clip, 0, len(parsed.Segments))
	for _, segment := range parsed.Segments {
		pcm, err := e.synth.Synthesize(ctx, segment.Text, e.voiceFor(segment.Speaker))
		if err != nil {
			return "", err
		}
		clip, err := audio.NewClip(pcm, e.sampleRate)
		if err != nil {
			return "", err
		}
		clips = append(clips, clip)
	}

	assembler, err := audio.NewAssembler(e.sampleRate)
	if err != nil {
		return "", err
	}
	combined, err := assembler.Concat(clips)
	if err != nil {
		return "", err
	}

	localPath, err := e.exportAudio(combined)
	if err != nil {
		return "", err
	}
	state.LocalPath = localPath

	audioURL, err := e.publisher.Publish(ctx, localPath, state.Topic, state.Retrieval.DocumentID)
	if err != nil {
		logger.Warn("publish failed, audio kept locally", logging.Error(err), logging.String("local_path", localPath))
		state.appendAssistant(fmt.Sprintf("Warning: publish failed. Podcast saved locally as %s", localPath))
		return StageComplete, nil
	}

	state.AudioURL = audioURL
	state.appendAssistant(fmt.Sprintf("Podcast audio generated and uploaded: %s", audioURL))
	e.writeCache(logger, state)
	return StageComplete, nil
}

func (e *Engine) exportAudio(clip audio.Clip) (string, error) {
	dir := e.stagingDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "engine", "synthesize", "create staging directory", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("podcast_%s.wav", e.now().UTC().Format("20060102_150405")))
	if err := audio.ExportWAV(path, clip); err != nil {
		return "", err
	}
	return path, nil
}

// writeCache stores the finished bundle. Runs only after a successful
// publish; a write error is logged and the run still succeeds.
func (e *Engine) writeCache(logger *slog.Logger, state *requestState) {
	if e.cache == nil {
		return
	}
	bundle := &cache.Bundle{
		Topic:      state.Topic,
		Script:     state.Script,
		Transcript: state.transcript(),
		DocumentID: state.Retrieval.DocumentID,
		AudioURL:   state.AudioURL,
		Answer:     state.Retrieval.Answer,
		Evidence:   state.Retrieval.Evidence,
		CreatedAt:  e.now().UTC().Format(time.RFC3339),
	}
	if err := e.cache.Put(state.Retrieval.Question, state.Retrieval.DocumentID, bundle); err != nil {
		logger.Warn("cache write failed", logging.Error(err))
	}
}

// stageGenerateFlashcards invokes the flashcard generator. A generator
// error leaves the set empty and the run still succeeds; the caller must
// treat an empty set as the failure signal.
func (e *Engine) stageGenerateFlashcards(ctx context.Context, logger *slog.Logger, state *requestState) Stage {
	contextText := buildGeneratorContext(state.Retrieval.Question, state.Retrieval.Answer, state.Retrieval.Evidence)
	set, err := e.flashcards.Generate(ctx, state.Topic, contextText, generatorItemCount)
	if err != nil {
		logger.Warn("flashcard generation failed", logging.Error(err))
		state.appendAssistant(fmt.Sprintf("Flashcard generation failed: %v", err))
		state.Flashcards = &flashcards.Set{Title: state.Topic}
		return StageComplete
	}
	state.Flashcards = set
	return StageComplete
}

// stageGenerateQuiz mirrors the flashcard branch for quizzes.
func (e *Engine) stageGenerateQuiz(ctx context.Context, logger *slog.Logger, state *requestState) Stage {
	contextText := buildGeneratorContext(state.Retrieval.Question, state.Retrieval.Answer, state.Retrieval.Evidence)
	set, err := e.quiz.Generate(ctx, state.Topic, contextText, generatorItemCount)
	if err != nil {
		logger.Warn("quiz generation failed", logging.Error(err))
		state.appendAssistant(fmt.Sprintf("Quiz generation failed: %v", err))
		state.Quiz = &quiz.Set{Title: state.Topic}
		return StageComplete
	}
	state.Quiz = set
	return StageComplete
}
