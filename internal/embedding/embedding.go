// Package embedding defines the abstract batched text-to-vector contract
// (§6 EmbeddingProvider) and its reference implementations: an
// Ollama-compatible HTTP provider and a deterministic local provider for
// tests and offline use.
package embedding

import "context"

// Provider is the abstract EmbeddingProvider contract: initialize once,
// embed batches of chunk text, embed a single query string, and dispose.
type Provider interface {
	// Initialize performs a one-shot probe embedding to confirm the
	// provider's actual output dimension equals Dimensions(); a mismatch is
	// a fatal DimensionMismatch.
	Initialize(ctx context.Context) error
	// Embed returns one vector per text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dispose releases any resources held by the provider.
	Dispose() error
	// ModelID names the underlying model, persisted to index_state.
	ModelID() string
	// Dimensions is the declared output vector width.
	Dimensions() int
}
