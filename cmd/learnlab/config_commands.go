package main

import (
	"strings"

	"github.com/spf13/cobra"

	"learnlab/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the learnlab configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(ctx))
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configPath()
			if err := config.WriteSample(path); err != nil {
				return err
			}
			cmd.Printf("Wrote sample configuration to %s\n", path)
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"paths.staging_dir", cfg.Paths.StagingDir},
				{"paths.data_dir", cfg.Paths.DataDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"llm.base_url", cfg.LLM.BaseURL},
				{"llm.model", cfg.LLM.Model},
				{"llm.api_key", maskSecret(cfg.LLM.APIKey)},
				{"tts.base_url", cfg.TTS.BaseURL},
				{"tts.model_id", cfg.TTS.ModelID},
				{"tts.api_key", maskSecret(cfg.TTS.APIKey)},
				{"tts.voice_speaker_one", cfg.TTS.VoiceSpeakerOne},
				{"tts.voice_speaker_two", cfg.TTS.VoiceSpeakerTwo},
				{"retrieval.base_url", cfg.Retrieval.BaseURL},
				{"storage.endpoint", cfg.Storage.Endpoint},
				{"storage.bucket", cfg.Storage.Bucket},
				{"cache.enabled", yesNo(cfg.Cache.Enabled)},
				{"logging.level", cfg.Logging.Level},
				{"logging.format", cfg.Logging.Format},
			}
			cmd.Println(renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
