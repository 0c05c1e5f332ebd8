package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Default()
	cfg.LLM.APIKey = "llm-key"
	cfg.TTS.APIKey = "tts-key"
	cfg.TTS.VoiceSpeakerOne = "voice-a"
	cfg.TTS.VoiceSpeakerTwo = "voice-b"
	cfg.Retrieval.BaseURL = "http://retrieval.local"
	cfg.Storage.Endpoint = "http://storage.local"
	cfg.Storage.Bucket = "podcasts"
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRequiresVoices(t *testing.T) {
	cfg := validConfig()
	cfg.TTS.VoiceSpeakerTwo = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing voice")
	}
	if !strings.Contains(err.Error(), "voice_speaker") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresLLMKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing llm key")
	}
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[llm]
model = "custom-model"

[tts]
voice_speaker_one = "v1"
voice_speaker_two = "v2"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LEARNLAB_LLM_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "custom-model" {
		t.Fatalf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("api key = %q, expected env override", cfg.LLM.APIKey)
	}
	if cfg.TTS.SampleRate != defaultTTSSampleRate {
		t.Fatalf("sample rate = %d, expected default preserved", cfg.TTS.SampleRate)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}

func TestEnsureDirectoriesAndDerivedPaths(t *testing.T) {
	cfg := validConfig()
	base := t.TempDir()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if got := cfg.RunsDatabasePath(); !strings.HasPrefix(got, cfg.Paths.DataDir) {
		t.Fatalf("runs db path %q outside data dir", got)
	}
	if got := cfg.CacheDir(); !strings.HasPrefix(got, cfg.Paths.DataDir) {
		t.Fatalf("cache dir %q outside data dir", got)
	}
}
