package common

import (
	"fmt"

	"github.com/google/uuid"
)

// NewChunkID generates a deterministic chunk ID from the source document and
// the chunk's index within it. Chunking the same document twice yields the
// same IDs, which keeps vector upserts idempotent.
func NewChunkID(documentID string, index int) string {
	return fmt.Sprintf("chunk_%s_%04d", documentID, index)
}

// NewDocumentID generates a unique document ID with the "doc_" prefix
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewCostEntryID generates a unique cost ledger entry ID with the "cost_" prefix
func NewCostEntryID() string {
	return "cost_" + uuid.New().String()
}

// NewRequestID generates a unique workflow request ID with the "req_" prefix
func NewRequestID() string {
	return "req_" + uuid.New().String()
}
