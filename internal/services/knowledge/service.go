package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/ternarybob/arbor"
)

// Service implements interfaces.KnowledgeService. Global knowledge entries
// are embedded whole; session documents go through the chunker first.
type Service struct {
	chunker     interfaces.DocumentChunker
	embedder    interfaces.EmbeddingService
	vectorStore interfaces.VectorStore
	logger      arbor.ILogger
}

// NewService creates the ingestion service
func NewService(chunker interfaces.DocumentChunker, embedder interfaces.EmbeddingService, store interfaces.VectorStore) interfaces.KnowledgeService {
	return &Service{
		chunker:     chunker,
		embedder:    embedder,
		vectorStore: store,
		logger:      common.GetLogger(),
	}
}

// IngestKnowledge embeds one global knowledge entry and upserts it into the
// medical knowledge collection. Returns the stored document id.
func (s *Service) IngestKnowledge(ctx context.Context, title, content, source string, meta map[string]string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("knowledge content cannot be empty")
	}

	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("failed to embed knowledge entry %q: %w", title, err)
	}

	id := common.NewDocumentID()
	payload := map[string]interface{}{
		"content":     content,
		"title":       title,
		"source":      source,
		"ingested_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		payload[k] = v
	}

	if err := s.vectorStore.Upsert(ctx, interfaces.CollectionMedicalKnowledge, id, vector, payload); err != nil {
		return "", fmt.Errorf("failed to store knowledge entry %q: %w", title, err)
	}

	s.logger.Info().
		Str("document_id", id).
		Str("title", title).
		Str("source", source).
		Msg("Knowledge entry ingested")
	return id, nil
}

// IngestSessionDocument chunks a user document, embeds each kept chunk, and
// upserts the vectors into the chunk collection. A chunk that fails to embed
// or store is logged and skipped; the rest of the document still lands.
func (s *Service) IngestSessionDocument(ctx context.Context, userID, sessionID string, doc models.InlineDocument) (*models.IngestResult, error) {
	documentID := doc.ID
	if documentID == "" {
		documentID = common.NewDocumentID()
	}

	chunks, err := s.chunker.Chunk(doc.Content, doc.DocType, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document %s: %w", doc.FileName, err)
	}

	stored := 0
	for _, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("chunk_id", chunk.ID).
				Msg("Chunk embedding failed, skipping")
			continue
		}

		payload := map[string]interface{}{
			"content":          chunk.Content,
			"file_name":        doc.FileName,
			"doc_type":         doc.DocType,
			"user_id":          userID,
			"session_id":       sessionID,
			"source_document":  documentID,
			"semantic_section": chunk.SemanticSection,
			"chunk_index":      fmt.Sprintf("%d", chunk.ChunkIndex),
		}
		if err := s.vectorStore.Upsert(ctx, interfaces.CollectionDocumentChunks, chunk.ID, vector, payload); err != nil {
			s.logger.Warn().
				Err(err).
				Str("chunk_id", chunk.ID).
				Msg("Chunk store failed, skipping")
			continue
		}
		stored++
	}

	s.logger.Info().
		Str("document_id", documentID).
		Str("file_name", doc.FileName).
		Str("user_id", userID).
		Int("chunks", len(chunks)).
		Int("stored", stored).
		Msg("Session document ingested")

	return &models.IngestResult{
		DocumentID:    documentID,
		Chunks:        len(chunks),
		VectorsStored: stored,
	}, nil
}
