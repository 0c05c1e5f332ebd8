// Package llm provides a minimal client for OpenAI-compatible chat
// completion endpoints, with bounded retry for transient failures and a
// tolerant JSON decoder for model output.
package llm
