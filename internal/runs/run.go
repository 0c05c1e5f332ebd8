package runs

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status describes the lifecycle of one workflow run.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Run is one recorded workflow execution.
type Run struct {
	ID           string
	Question     string
	DocumentID   string
	OutputType   string
	Status       Status
	Stage        string
	AudioURL     string
	ErrorMessage string
	CacheHit     bool
	PayloadJSON  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetFailed marks the run failed with the supplied message.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = strings.TrimSpace(message)
}

// StageLabel renders a stage identifier as a human-readable label, e.g.
// "retrieve_context" becomes "Retrieve Context".
func StageLabel(stage string) string {
	if stage == "" {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(stage, "_", " "))
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
