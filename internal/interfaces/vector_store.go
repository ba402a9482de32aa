package interfaces

import "context"

// Collection names used by the retrieval and ingestion paths.
const (
	// CollectionMedicalKnowledge holds curated global knowledge entries
	CollectionMedicalKnowledge = "medical_knowledge"
	// CollectionDocumentChunks holds per-user session document chunks
	CollectionDocumentChunks = "document_chunks"
)

// SearchOptions controls a similarity search
type SearchOptions struct {
	Limit          int
	ScoreThreshold float64
	// Filter restricts results to points whose payload contains all of the
	// given key/value pairs (exact string match).
	Filter map[string]string
}

// SearchResult is one similarity search hit
type SearchResult struct {
	ID      string
	Score   float64
	Payload map[string]interface{}
}

// VectorStore defines similarity search and upsert over named collections.
// The bundled implementation persists locally in Badger; a remote vector
// database can be swapped in behind this interface.
type VectorStore interface {
	// Upsert inserts or replaces a point in a collection.
	Upsert(ctx context.Context, collection, id string, vector []float32, payload map[string]interface{}) error

	// Search returns points similar to the query vector, sorted by score
	// descending, filtered by SearchOptions.
	Search(ctx context.Context, collection string, vector []float32, opts SearchOptions) ([]SearchResult, error)
}
