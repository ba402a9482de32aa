package interfaces

import "context"

// EmbeddingService defines the gateway for turning text into a fixed-dimension
// vector. Implementations may call a cloud API or compute locally; callers
// treat a failure as "zero hits" for the affected retrieval source rather than
// aborting the request.
type EmbeddingService interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector dimension produced by this service.
	Dimension() int
}
