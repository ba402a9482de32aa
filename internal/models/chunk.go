package models

import "time"

// Chunk is a bounded, quality-scored slice of a document's text, the unit of
// retrieval indexing. Chunks are immutable once created and belong to the
// document that spawned them. Chunks scoring below the quality threshold are
// discarded by the chunker and never stored.
type Chunk struct {
	ID              string        `json:"id"`
	Content         string        `json:"content"`
	StartOffset     int           `json:"start_offset"`
	EndOffset       int           `json:"end_offset"`
	TokenCount      int           `json:"token_count"`
	ChunkIndex      int           `json:"chunk_index"`
	SemanticSection string        `json:"semantic_section,omitempty"`
	QualityScore    float64       `json:"quality_score"`
	SourceDocument  string        `json:"source_document_id"`
	Metadata        ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries the well-defined optional fields attached to a chunk.
// Forward-compatible additions go into Extra rather than new top-level keys.
type ChunkMetadata struct {
	DocType   string            `json:"doc_type,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// IngestResult summarizes one session document ingestion
type IngestResult struct {
	DocumentID    string `json:"document_id"`
	Chunks        int    `json:"chunks"`
	VectorsStored int    `json:"vectors_stored"`
}
