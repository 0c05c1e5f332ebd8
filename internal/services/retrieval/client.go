package retrieval

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

const defaultHTTPTimeout = 30 * time.Second

// Config captures the runtime settings for the document QA service.
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Result is the answer produced for one question against one document.
type Result struct {
	Answer   string   `json:"answer"`
	Evidence []string `json:"relevant_chunks"`
}

// Client queries the external retrieval service that indexes documents and
// answers questions about them.
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

// NewClient constructs a retrieval client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type queryRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"document_id"`
}

// Query answers a question against a previously indexed document. An unknown
// document identifier yields a not-found error.
func (c *Client) Query(ctx context.Context, question, documentID string) (Result, error) {
	var empty Result
	question = strings.TrimSpace(question)
	documentID = strings.TrimSpace(documentID)
	if question == "" {
		return empty, services.Wrap(services.ErrValidation, "retrieval", "query", "question required", nil)
	}
	if documentID == "" {
		return empty, services.Wrap(services.ErrValidation, "retrieval", "query", "document id required", nil)
	}

	encoded, err := json.Marshal(queryRequest{Question: question, DocumentID: documentID})
	if err != nil {
		return empty, fmt.Errorf("retrieval request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/query", bytes.NewReader(encoded))
	if err != nil {
		return empty, fmt.Errorf("retrieval request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "retrieval", "query", "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "retrieval", "query", "read body", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return empty, services.Wrap(services.ErrNotFound, "retrieval", "query", fmt.Sprintf("document %q is not indexed", documentID), nil)
	case resp.StatusCode != http.StatusOK:
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return empty, services.Wrap(services.ErrExternalTool, "retrieval", "query", detail, nil)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "retrieval", "query", "decode response", err)
	}
	if strings.TrimSpace(result.Answer) == "" {
		return empty, services.Wrap(services.ErrExternalTool, "retrieval", "query", "empty answer in response", nil)
	}
	return result, nil
}
