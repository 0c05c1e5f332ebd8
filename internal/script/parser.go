package script

import (
	"errors"
	"fmt"
	"strings"

	"learnlab/internal/services/llm"
)

// Decode parses script text as a structured JSON document of segments. The
// speaker label of each segment must be one of the two configured roles;
// unrecognized labels are coerced to the first role rather than rejected.
func Decode(text string) (*Script, error) {
	var parsed Script
	if err := llm.DecodeLLMJSON(text, &parsed); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if len(parsed.Segments) == 0 {
		return nil, errors.New("decode script: no segments")
	}
	for i := range parsed.Segments {
		parsed.Segments[i].Speaker = normalizeSpeaker(parsed.Segments[i].Speaker)
		parsed.Segments[i].Text = strings.TrimSpace(parsed.Segments[i].Text)
	}
	return &parsed, nil
}

// ParseFallback converts unstructured dialogue text into a script. Lines
// prefixed with a role label are attributed to that role with the prefix
// stripped; any other non-empty line is attributed to the first role. Empty
// lines are dropped. The fallback never fails; for non-empty input it always
// yields at least one segment.
func ParseFallback(text string) *Script {
	parsed := &Script{}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		speaker := SpeakerOne
		body := trimmed
		switch {
		case strings.HasPrefix(trimmed, SpeakerOne+":"):
			body = strings.TrimSpace(strings.TrimPrefix(trimmed, SpeakerOne+":"))
		case strings.HasPrefix(trimmed, SpeakerTwo+":"):
			speaker = SpeakerTwo
			body = strings.TrimSpace(strings.TrimPrefix(trimmed, SpeakerTwo+":"))
		}
		parsed.Segments = append(parsed.Segments, Segment{Speaker: speaker, Text: body})
	}
	return parsed
}

// Parse attempts the strict structured decode first and falls back to the
// tolerant line parser when the text is not well-formed JSON.
func Parse(text string) *Script {
	if parsed, err := Decode(text); err == nil {
		return parsed
	}
	return ParseFallback(text)
}

func normalizeSpeaker(speaker string) string {
	switch strings.TrimSpace(speaker) {
	case SpeakerOne:
		return SpeakerOne
	case SpeakerTwo:
		return SpeakerTwo
	default:
		return SpeakerOne
	}
}
