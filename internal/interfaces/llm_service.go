package interfaces

import (
	"context"
	"time"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// CompletionOptions carries per-call completion parameters
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
	Model       string // Overrides the provider's default model when non-empty
}

// Completion is a single provider completion result
type Completion struct {
	Content          string
	FinishReason     string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

// CompletionProvider defines one external LLM vendor endpoint. The reasoner
// fans a prepared prompt out to every available provider; a provider without
// credentials reports Available() == false and is excluded before dispatch.
type CompletionProvider interface {
	// Name returns the provider identifier ("claude", "gemini")
	Name() string

	// Model returns the provider's default model name
	Model() string

	// Available reports whether the provider has credentials configured
	Available() bool

	// Complete issues one completion call. The implementation applies its own
	// per-call timeout on top of ctx.
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (*Completion, error)
}
