package interfaces

import (
	"context"
)

// Provider identifies the backing LLM provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// CompletionOptions bound a single completion call
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLMService defines the interface for language model operations:
// embedding generation and chat completions. Embeddings from different
// model versions are not comparable; the embedding model identity is
// exposed via EmbedModel.
type LLMService interface {
	// Embed generates an embedding vector for the given text. Identical
	// text and model version yield identical vectors.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Complete generates a completion for the given conversation history
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)

	// EmbedModel returns the embedding model identifier
	EmbedModel() string

	// Dimension returns the embedding vector dimensionality
	Dimension() int

	// HealthCheck verifies the service can handle requests
	HealthCheck(ctx context.Context) error

	// GetProvider returns the backing provider
	GetProvider() Provider

	// Close releases resources
	Close() error
}
