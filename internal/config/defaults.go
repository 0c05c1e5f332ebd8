package config

const (
	defaultStagingDir = "~/.local/share/learnlab/staging"
	defaultDataDir    = "~/.local/share/learnlab/data"
	defaultLogDir     = "~/.local/share/learnlab/logs"

	defaultLLMBaseURL        = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultLLMModel          = "learnlm-1.5-pro-experimental"
	defaultLLMTimeoutSeconds = 120

	defaultTTSBaseURL        = "https://api.elevenlabs.io"
	defaultTTSModelID        = "eleven_turbo_v2_5"
	defaultTTSSampleRate     = 22050
	defaultTTSStability      = 0.5
	defaultTTSSimilarity     = 0.75
	defaultTTSTimeoutSeconds = 60

	defaultRetrievalTimeoutSeconds = 30
	defaultStorageTimeoutSeconds   = 60

	defaultCacheEnabled  = true
	defaultCacheTTLHours = 0 // no expiry

	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		TTS: TTS{
			BaseURL:         defaultTTSBaseURL,
			ModelID:         defaultTTSModelID,
			SampleRate:      defaultTTSSampleRate,
			Stability:       defaultTTSStability,
			SimilarityBoost: defaultTTSSimilarity,
			TimeoutSeconds:  defaultTTSTimeoutSeconds,
		},
		Retrieval: Retrieval{
			TimeoutSeconds: defaultRetrievalTimeoutSeconds,
		},
		Storage: Storage{
			TimeoutSeconds: defaultStorageTimeoutSeconds,
		},
		Cache: Cache{
			Enabled:  defaultCacheEnabled,
			TTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
