// Package provider implements the completion-API client used as the
// relay's reasoning engine. The wire format is the OpenAI-compatible
// chat-completions schema, which Groq serves natively.
package provider

import (
	"context"
)

// Message is one chat message in provider wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call.
type Request struct {
	// Model is the model identifier, supplied by configuration rather than
	// hardcoded by callers.
	Model string

	// Messages is the full ordered message list: system instruction first,
	// then the session transcript.
	Messages []Message

	// JSONObject requests the provider's constrained JSON output mode
	// (response_format {"type": "json_object"}), so the single text
	// response parses as a JSON object.
	JSONObject bool
}

// Response is the provider's single text completion.
type Response struct {
	Content string
}

// Provider is the completion API abstraction. Implementations must be safe
// for concurrent use.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
