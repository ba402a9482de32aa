package retrieval

import (
	"context"
	"sort"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/ternarybob/arbor"
)

// Service aggregates the global knowledge base, the user's session documents,
// and inline documents into one ranked hit set. A failing sub-source degrades
// the result to fewer hits rather than failing the whole retrieval.
type Service struct {
	embedder       interfaces.EmbeddingService
	vectorStore    interfaces.VectorStore
	defaultLimit   int
	scoreThreshold float64
	logger         arbor.ILogger
}

// NewService creates the retrieval aggregator
func NewService(cfg *common.Config, embedder interfaces.EmbeddingService, store interfaces.VectorStore) interfaces.RetrievalService {
	return &Service{
		embedder:       embedder,
		vectorStore:    store,
		defaultLimit:   cfg.Retrieval.Limit,
		scoreThreshold: cfg.Retrieval.ScoreThreshold,
		logger:         common.GetLogger(),
	}
}

// Retrieve embeds the query once and fans it across the enabled sources.
// Results are deduplicated by id, sorted by score with source priority
// breaking ties, and truncated to the limit.
func (s *Service) Retrieve(ctx context.Context, query string, opts interfaces.RetrieveOptions) ([]models.RetrievalHit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	threshold := opts.ScoreThreshold
	if threshold <= 0 {
		threshold = s.scoreThreshold
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Query embedding failed, retrieval degraded to empty")
		return nil, nil
	}

	var hits []models.RetrievalHit

	// each persistent source gets half the limit so neither can crowd the
	// other out of the merged set
	perSource := limit / 2
	if perSource < 1 {
		perSource = 1
	}

	if opts.UseGlobal {
		hits = append(hits, s.searchGlobal(ctx, queryVector, perSource, threshold)...)
	}
	if opts.UseSession && opts.UserID != "" {
		hits = append(hits, s.searchSession(ctx, queryVector, opts, perSource, threshold)...)
	}
	if len(opts.InlineDocs) > 0 {
		hits = append(hits, s.scoreInline(ctx, queryVector, opts.InlineDocs, threshold)...)
	}

	hits = dedupe(hits)
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Source.Priority() > hits[j].Source.Priority()
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	s.logger.Debug().
		Int("hits", len(hits)).
		Int("limit", limit).
		Bool("global", opts.UseGlobal).
		Bool("session", opts.UseSession).
		Int("inline_docs", len(opts.InlineDocs)).
		Msg("Retrieval complete")

	return hits, nil
}

func (s *Service) searchGlobal(ctx context.Context, vector []float32, limit int, threshold float64) []models.RetrievalHit {
	results, err := s.vectorStore.Search(ctx, interfaces.CollectionMedicalKnowledge, vector, interfaces.SearchOptions{
		Limit:          limit,
		ScoreThreshold: threshold,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Global knowledge search failed")
		return nil
	}
	return toHits(results, models.SourceGlobal)
}

func (s *Service) searchSession(ctx context.Context, vector []float32, opts interfaces.RetrieveOptions, limit int, threshold float64) []models.RetrievalHit {
	filter := map[string]string{"user_id": opts.UserID}
	if opts.SessionID != "" {
		filter["session_id"] = opts.SessionID
	}
	results, err := s.vectorStore.Search(ctx, interfaces.CollectionDocumentChunks, vector, interfaces.SearchOptions{
		Limit:          limit,
		ScoreThreshold: threshold,
		Filter:         filter,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", opts.UserID).Msg("Session document search failed")
		return nil
	}
	return toHits(results, models.SourceSession)
}

// scoreInline embeds each inline document and scores it directly against the
// query vector. Inline documents never touch the vector store.
func (s *Service) scoreInline(ctx context.Context, queryVector []float32, docs []models.InlineDocument, threshold float64) []models.RetrievalHit {
	var hits []models.RetrievalHit
	for _, doc := range docs {
		docVector, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			s.logger.Warn().Err(err).Str("file_name", doc.FileName).Msg("Inline document embedding failed")
			continue
		}
		score := cosineSimilarity(queryVector, docVector)
		if score < threshold {
			continue
		}
		hits = append(hits, models.RetrievalHit{
			ID:       doc.ID,
			Score:    score,
			Content:  doc.Content,
			Source:   models.SourceInline,
			FileName: doc.FileName,
			Metadata: map[string]string{"doc_type": doc.DocType},
		})
	}
	return hits
}

func toHits(results []interfaces.SearchResult, source models.RetrievalSource) []models.RetrievalHit {
	hits := make([]models.RetrievalHit, 0, len(results))
	for _, r := range results {
		hit := models.RetrievalHit{
			ID:       r.ID,
			Score:    r.Score,
			Source:   source,
			Metadata: map[string]string{},
		}
		for key, value := range r.Payload {
			str, ok := value.(string)
			if !ok {
				continue
			}
			switch key {
			case "content":
				hit.Content = str
			case "title":
				hit.Title = str
			case "file_name":
				hit.FileName = str
			default:
				hit.Metadata[key] = str
			}
		}
		hits = append(hits, hit)
	}
	return hits
}

// dedupe keeps the first occurrence of each id
func dedupe(hits []models.RetrievalHit) []models.RetrievalHit {
	seen := make(map[string]bool, len(hits))
	out := hits[:0]
	for _, h := range hits {
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		out = append(out, h)
	}
	return out
}
