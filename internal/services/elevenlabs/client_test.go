package elevenlabs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"learnlab/internal/services"
)

func TestSynthesizeReturnsAudioBytes(t *testing.T) {
	audio := []byte{0x01, 0x02, 0x03, 0x04}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v1/text-to-speech/voice-a/stream") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("output_format"); got != "pcm_22050" {
			t.Fatalf("output_format = %q", got)
		}
		if got := r.Header.Get("xi-api-key"); got != "secret" {
			t.Fatalf("api key header = %q", got)
		}
		if _, err := w.Write(audio); err != nil {
			t.Fatalf("write audio: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, ModelID: "m", SampleRate: 22050})
	got, err := client.Synthesize(context.Background(), "Hello there", "voice-a")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !bytes.Equal(got, audio) {
		t.Fatalf("audio = %v", got)
	}
}

func TestSynthesizeNonSuccessIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"quota exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, ModelID: "m", SampleRate: 22050})
	_, err := client.Synthesize(context.Background(), "Hello", "voice-a")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSynthesizeValidatesInput(t *testing.T) {
	client := NewClient(Config{APIKey: "secret", BaseURL: "http://unused", SampleRate: 22050})
	if _, err := client.Synthesize(context.Background(), "", "voice-a"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty text, got %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "hi", ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for empty voice, got %v", err)
	}
}
