package workflow

import (
	"fmt"

	"github.com/galenhq/galen/internal/models"
)

const citationSnippetLength = 200

// extractCitations derives one citation per retrieval hit, in rank order.
// Citation ids are positional so the caller can cross-reference the numbered
// knowledge entries in the prompt.
func extractCitations(hits []models.RetrievalHit) []models.Citation {
	if len(hits) == 0 {
		return nil
	}

	citations := make([]models.Citation, 0, len(hits))
	for i, hit := range hits {
		title := hit.Title
		if title == "" {
			title = hit.FileName
		}
		if title == "" {
			title = fmt.Sprintf("Source %d", i+1)
		}
		citations = append(citations, models.Citation{
			ID:             fmt.Sprintf("doc-%d", i+1),
			Title:          title,
			URL:            hit.Metadata["url"],
			Source:         string(hit.Source),
			Snippet:        truncate(hit.Content, citationSnippetLength),
			RelevanceScore: hit.Score,
		})
	}
	return citations
}
