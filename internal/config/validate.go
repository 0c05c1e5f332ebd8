package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateRetrieval(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required. Set LEARNLAB_LLM_API_KEY or edit %s (create with 'learnlab config init')", configHint())
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must be set")
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if strings.TrimSpace(c.TTS.APIKey) == "" {
		return fmt.Errorf("tts.api_key is required. Set ELEVENLABS_API_KEY or edit %s", configHint())
	}
	if strings.TrimSpace(c.TTS.VoiceSpeakerOne) == "" || strings.TrimSpace(c.TTS.VoiceSpeakerTwo) == "" {
		return errors.New("tts.voice_speaker_one and tts.voice_speaker_two must both be set")
	}
	if c.TTS.SampleRate <= 0 {
		return errors.New("tts.sample_rate must be positive")
	}
	if c.TTS.Stability < 0 || c.TTS.Stability > 1 {
		return errors.New("tts.stability must be between 0 and 1")
	}
	if c.TTS.SimilarityBoost < 0 || c.TTS.SimilarityBoost > 1 {
		return errors.New("tts.similarity_boost must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateRetrieval() error {
	if strings.TrimSpace(c.Retrieval.BaseURL) == "" {
		return errors.New("retrieval.base_url must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.Endpoint) == "" {
		return errors.New("storage.endpoint must be set")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage.bucket must be set")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTLHours < 0 {
		return errors.New("cache.ttl_hours must not be negative")
	}
	return nil
}

func configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return "~/.config/learnlab/config.toml"
	}
	return path
}
