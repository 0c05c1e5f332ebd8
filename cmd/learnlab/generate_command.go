package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"learnlab/internal/cache"
	"learnlab/internal/config"
	"learnlab/internal/engine"
	"learnlab/internal/flashcards"
	"learnlab/internal/logging"
	"learnlab/internal/quiz"
	"learnlab/internal/runs"
	"learnlab/internal/script"
	"learnlab/internal/services/elevenlabs"
	"learnlab/internal/services/llm"
	"learnlab/internal/services/objectstore"
	"learnlab/internal/services/retrieval"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var outputType string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "generate <question> <document-id>",
		Short: "Generate a podcast, flashcard set, or quiz from an indexed document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire process lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another learnlab process is already generating; try again shortly")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			runStore, err := runs.Open(cfg)
			if err != nil {
				return err
			}
			defer runStore.Close()

			var bundleCache engine.BundleCache
			if cfg.Cache.Enabled {
				store, cacheErr := cache.Open(cfg.CacheDir(), time.Duration(cfg.Cache.TTLHours)*time.Hour)
				if cacheErr != nil {
					return cacheErr
				}
				defer store.Close()
				bundleCache = store
			}

			model := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
			synth := elevenlabs.NewClient(elevenlabs.Config{
				APIKey:          cfg.TTS.APIKey,
				BaseURL:         cfg.TTS.BaseURL,
				ModelID:         cfg.TTS.ModelID,
				SampleRate:      cfg.TTS.SampleRate,
				Stability:       cfg.TTS.Stability,
				SimilarityBoost: cfg.TTS.SimilarityBoost,
				TimeoutSeconds:  cfg.TTS.TimeoutSeconds,
			})
			retriever := retrieval.NewClient(retrieval.Config{
				BaseURL:        cfg.Retrieval.BaseURL,
				APIKey:         cfg.Retrieval.APIKey,
				TimeoutSeconds: cfg.Retrieval.TimeoutSeconds,
			})
			publisher := objectstore.NewPublisher(objectstore.Config{
				Endpoint:       cfg.Storage.Endpoint,
				Bucket:         cfg.Storage.Bucket,
				APIKey:         cfg.Storage.APIKey,
				PublicBaseURL:  cfg.Storage.PublicBaseURL,
				TimeoutSeconds: cfg.Storage.TimeoutSeconds,
			})

			eng, err := engine.New(engine.Dependencies{
				Retriever:  retriever,
				Model:      model,
				Synth:      synth,
				Publisher:  publisher,
				Cache:      bundleCache,
				Flashcards: flashcards.NewGenerator(model),
				Quiz:       quiz.NewGenerator(model),
				Runs:       runStore,
				Logger:     logger,
				Voices: map[string]string{
					script.SpeakerOne: cfg.TTS.VoiceSpeakerOne,
					script.SpeakerTwo: cfg.TTS.VoiceSpeakerTwo,
				},
				SampleRate: cfg.TTS.SampleRate,
				StagingDir: cfg.Paths.StagingDir,
			})
			if err != nil {
				return err
			}

			result, err := eng.Generate(cmd.Context(), engine.Request{
				Question:   args[0],
				DocumentID: args[1],
				OutputType: outputType,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				encoded, encodeErr := json.MarshalIndent(result, "", "  ")
				if encodeErr != nil {
					return encodeErr
				}
				cmd.Println(string(encoded))
				return nil
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputType, "type", "t", engine.OutputPodcast, "Output type: podcast, flashcards, or quiz")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")
	return cmd
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			"stderr",
			filepath.Join(cfg.Paths.LogDir, "learnlab.log"),
		},
	})
}

func printResult(cmd *cobra.Command, result *engine.Result) {
	cmd.Printf("Run %s (%s)\n", result.RunID, result.OutputType)
	switch result.OutputType {
	case engine.OutputFlashcards:
		printFlashcards(cmd, result.Flashcards)
	case engine.OutputQuiz:
		printQuiz(cmd, result.Quiz)
	default:
		printPodcast(cmd, result)
	}
}

func printPodcast(cmd *cobra.Command, result *engine.Result) {
	cmd.Printf("Topic: %s\n", result.Topic)
	cmd.Printf("Cache hit: %s\n", yesNo(result.CacheHit))
	if result.AudioURL != "" {
		cmd.Printf("Audio: %s\n", result.AudioURL)
	} else if result.LocalAudioPath != "" {
		cmd.Printf("Audio (local only, publish failed): %s\n", result.LocalAudioPath)
	}
	parsed := script.Parse(result.Script)
	if len(parsed.Segments) > 0 {
		cmd.Println("\nScript:")
		cmd.Println(parsed.Render())
	}
}

func printFlashcards(cmd *cobra.Command, set *flashcards.Set) {
	if set == nil || len(set.Cards) == 0 {
		cmd.Println("No flashcards were generated.")
		return
	}
	cmd.Printf("Flashcards: %s\n", set.Title)
	rows := make([][]string, 0, len(set.Cards))
	for i, card := range set.Cards {
		rows = append(rows, []string{strconv.Itoa(i + 1), card.Front, card.Back})
	}
	cmd.Println(renderTable([]string{"#", "Front", "Back"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
}

func printQuiz(cmd *cobra.Command, set *quiz.Set) {
	if set == nil || len(set.Questions) == 0 {
		cmd.Println("No quiz was generated.")
		return
	}
	cmd.Printf("Quiz: %s\n", set.Title)
	if set.Description != "" {
		cmd.Println(set.Description)
	}
	cmd.Printf("Questions: %d  Points: %d  Suggested time: %d min\n", len(set.Questions), set.TotalPoints, set.RecommendedTime)
	for i, question := range set.Questions {
		cmd.Printf("\n%d. %s\n", i+1, question.Prompt)
		for _, option := range question.Options {
			marker := "  -"
			if strings.EqualFold(option, question.Answer) {
				marker = "  *"
			}
			cmd.Printf("%s %s\n", marker, option)
		}
	}
}
