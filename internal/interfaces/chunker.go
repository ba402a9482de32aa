package interfaces

import "github.com/galenhq/galen/internal/models"

// DocumentChunker splits a document into scored, section-labeled chunks.
// Chunks that fall below the quality threshold are dropped before return.
// Documents too short to chunk yield an empty list, not an error.
type DocumentChunker interface {
	Chunk(content, docType, documentID string) ([]models.Chunk, error)
}
