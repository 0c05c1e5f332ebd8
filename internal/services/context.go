package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithRunID annotates context with the workflow run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the workflow run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(runIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithStage annotates context with the workflow stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(stageKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier for external calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(requestIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
