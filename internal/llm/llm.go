// Package llm provides the narrow client interface to the text-generation
// service, with Anthropic and Ollama implementations. The service is
// treated as an untrusted classifier: callers get back raw response text
// and are responsible for all parsing and validation.
package llm

import "context"

// Client is the interface for interacting with the generation service.
type Client interface {
	// Complete sends a prompt and returns the raw response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
