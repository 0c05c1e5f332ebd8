package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"learnlab/internal/services"
)

const defaultHTTPTimeout = 60 * time.Second

// Config captures the runtime settings for the speech synthesis endpoint.
type Config struct {
	APIKey          string
	BaseURL         string
	ModelID         string
	SampleRate      int
	Stability       float64
	SimilarityBoost float64
	TimeoutSeconds  int
}

// Client wraps the ElevenLabs text-to-speech API. Responses are requested as
// 16-bit linear PCM so clips can be concatenated without re-decoding.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a TTS client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:          strings.TrimSpace(cfg.APIKey),
			BaseURL:         strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			ModelID:         strings.TrimSpace(cfg.ModelID),
			SampleRate:      cfg.SampleRate,
			Stability:       cfg.Stability,
			SimilarityBoost: cfg.SimilarityBoost,
			TimeoutSeconds:  cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts one script segment to raw PCM audio bytes using the
// supplied voice identifier. Any non-success response is an error; a
// partially synthesized podcast is never an acceptable output, so the caller
// treats failures as fatal.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "tts", "synthesize", "text required", nil)
	}
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tts", "synthesize", "voice id required", nil)
	}
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tts", "synthesize", "api key required", nil)
	}

	payload := synthesisRequest{
		Text:    text,
		ModelID: c.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       c.cfg.Stability,
			SimilarityBoost: c.cfg.SimilarityBoost,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts request: encode body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?output_format=pcm_%d", c.cfg.BaseURL, voiceID, c.cfg.SampleRate)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("tts request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "tts", "synthesize", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "tts", "synthesize", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(body))
		return nil, services.Wrap(services.ErrExternalTool, "tts", "synthesize", detail, nil)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "tts", "synthesize", "empty audio payload", nil)
	}
	return body, nil
}

func summarizeBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	const limit = 200
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
