package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"learnlab/internal/services"
)

const defaultHTTPTimeout = 60 * time.Second

// Config captures the runtime settings for the object-storage gateway.
type Config struct {
	Endpoint       string
	Bucket         string
	APIKey         string
	PublicBaseURL  string
	TimeoutSeconds int
}

// Publisher uploads finished podcast audio and returns a retrievable URL.
// Upload failures are surfaced as errors; the workflow engine treats them as
// non-fatal and keeps the transient local artifact instead.
type Publisher struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the publisher.
type Option func(*Publisher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithClock overrides the timestamp source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPublisher constructs a publisher using the supplied configuration.
func NewPublisher(cfg Config, opts ...Option) *Publisher {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	pub := &Publisher{
		cfg: Config{
			Endpoint:       strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
			Bucket:         strings.TrimSpace(cfg.Bucket),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			PublicBaseURL:  strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(pub)
	}
	return pub
}

// Publish uploads the local audio artifact under a key derived from the topic
// and source document and returns the public URL.
func (p *Publisher) Publish(ctx context.Context, localPath, topic, documentID string) (string, error) {
	if strings.TrimSpace(localPath) == "" {
		return "", services.Wrap(services.ErrValidation, "objectstore", "publish", "local path required", nil)
	}
	file, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "objectstore", "publish", "open artifact", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "objectstore", "publish", "stat artifact", err)
	}

	key := p.objectKey(topic, documentID, path.Ext(localPath))
	endpoint := fmt.Sprintf("%s/%s/%s", p.cfg.Endpoint, p.cfg.Bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, file)
	if err != nil {
		return "", fmt.Errorf("objectstore request: new request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "audio/wav")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "objectstore", "publish", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "objectstore", "publish", "read body", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return "", services.Wrap(services.ErrExternalTool, "objectstore", "publish", detail, nil)
	}

	// Gateways that mint their own URLs return {"url": "..."}; otherwise the
	// public URL is derived from configuration.
	var minted struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &minted); err == nil && strings.TrimSpace(minted.URL) != "" {
		return strings.TrimSpace(minted.URL), nil
	}

	base := p.cfg.PublicBaseURL
	if base == "" {
		base = p.cfg.Endpoint
	}
	return fmt.Sprintf("%s/%s/%s", base, p.cfg.Bucket, key), nil
}

func (p *Publisher) objectKey(topic, documentID, ext string) string {
	if ext == "" {
		ext = ".wav"
	}
	stamp := p.now().UTC().Format("20060102_150405")
	return path.Join(slugify(documentID), fmt.Sprintf("%s_%s%s", slugify(topic), stamp, ext))
}

func slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "untitled"
	}
	const limit = 60
	if len(slug) > limit {
		slug = strings.Trim(slug[:limit], "-")
	}
	return slug
}
