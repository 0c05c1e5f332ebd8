package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
}

// LLM contains connection settings for the chat-completion endpoint used for
// outline, script, flashcard, and quiz generation.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains settings for the speech synthesis endpoint. Exactly two voices
// are configured process-wide, one per speaker role.
type TTS struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	ModelID         string  `toml:"model_id"`
	VoiceSpeakerOne string  `toml:"voice_speaker_one"`
	VoiceSpeakerTwo string  `toml:"voice_speaker_two"`
	SampleRate      int     `toml:"sample_rate"`
	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// Retrieval contains settings for the document question-answering service.
type Retrieval struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Storage contains settings for the object-storage gateway that hosts
// published podcast audio.
type Storage struct {
	Endpoint       string `toml:"endpoint"`
	Bucket         string `toml:"bucket"`
	APIKey         string `toml:"api_key"`
	PublicBaseURL  string `toml:"public_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cache contains settings for the podcast bundle cache.
type Cache struct {
	Enabled  bool `toml:"enabled"`
	TTLHours int  `toml:"ttl_hours"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Paths     Paths     `toml:"paths"`
	LLM       LLM       `toml:"llm"`
	TTS       TTS       `toml:"tts"`
	Retrieval Retrieval `toml:"retrieval"`
	Storage   Storage   `toml:"storage"`
	Cache     Cache     `toml:"cache"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the standard location of the config file.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "learnlab", "config.toml"), nil
}

// Load reads configuration from path, falling back to the default location
// when path is empty. A missing file yields defaults plus env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		resolved = defaultPath
	}

	data, err := os.ReadFile(expandPath(resolved))
	switch {
	case err == nil:
		if decodeErr := toml.Unmarshal(data, &cfg); decodeErr != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, decodeErr)
		}
	case errors.Is(err, fs.ErrNotExist) && strings.TrimSpace(path) == "":
		// No config file at the default location; run on defaults and env.
	default:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}

	cfg.applyEnvOverrides()
	cfg.expandPaths()
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	path = expandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the staging, data, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RunsDatabasePath returns the SQLite file backing the run-history store.
func (c *Config) RunsDatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "runs.db")
}

// CacheDir returns the directory backing the podcast bundle cache.
func (c *Config) CacheDir() string {
	return filepath.Join(c.Paths.DataDir, "cache")
}

// LockPath returns the lock file guarding the data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "learnlab.lock")
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"LEARNLAB_LLM_API_KEY", &c.LLM.APIKey},
		{"ELEVENLABS_API_KEY", &c.TTS.APIKey},
		{"LEARNLAB_RETRIEVAL_API_KEY", &c.Retrieval.APIKey},
		{"LEARNLAB_STORAGE_API_KEY", &c.Storage.APIKey},
	}
	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			*o.target = value
		}
	}
}

func (c *Config) expandPaths() {
	c.Paths.StagingDir = expandPath(c.Paths.StagingDir)
	c.Paths.DataDir = expandPath(c.Paths.DataDir)
	c.Paths.LogDir = expandPath(c.Paths.LogDir)
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
