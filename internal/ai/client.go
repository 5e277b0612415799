// Package ai wraps the hosted chat-completion provider behind a small
// interface so services can be tested against stubs. The concrete client
// speaks the OpenAI-compatible wire format and is pointed at Groq by
// default (see config.AIConfig).
package ai

import "context"

// Schema describes an optional JSON-schema constraint applied to the
// completion output. Definition is the raw schema document.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Request is a single chat-completion invocation: one system instruction,
// one user instruction, and the sampling knobs the caller wants.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
	Schema      *Schema // nil for free-form text output
}

// Client issues chat completions. Implementations must honor ctx for
// cancellation and deadlines; a cancelled context must abort the underlying
// network call rather than letting it run to completion.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
