package chunker

import (
	"regexp"
	"strings"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/ternarybob/arbor"
)

const (
	// minDocumentLength rejects content too short to carry medical meaning
	minDocumentLength = 50
	// minChunkLength drops fragments left over at window boundaries
	minChunkLength = 20
	// boundaryLookback is how far back from the window end we search for a
	// sentence terminator before accepting a mid-sentence cut
	boundaryLookback = 100
	// qualityThreshold filters out chunks not worth embedding
	qualityThreshold = 0.3
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// Service implements interfaces.DocumentChunker with a sliding window that
// prefers sentence boundaries and overlaps consecutive chunks for context.
type Service struct {
	chunkSize int
	overlap   int
	logger    arbor.ILogger
}

// NewService creates a chunker with the configured window geometry
func NewService(cfg *common.Config) interfaces.DocumentChunker {
	return &Service{
		chunkSize: cfg.Chunking.ChunkSize,
		overlap:   cfg.Chunking.Overlap,
		logger:    common.GetLogger(),
	}
}

// Chunk splits content into quality-filtered chunks. Offsets are absolute
// positions in the normalized document, so callers can map chunks back.
func (s *Service) Chunk(content, docType, documentID string) ([]models.Chunk, error) {
	normalized := normalize(content)
	if len(normalized) < minDocumentLength {
		s.logger.Debug().
			Str("document_id", documentID).
			Int("length", len(normalized)).
			Msg("Document too short to chunk, rejecting")
		return nil, nil
	}

	sections := splitSections(normalized, docType)

	var chunks []models.Chunk
	index := 0
	for _, section := range sections {
		for _, window := range s.slide(section.Content) {
			text := strings.TrimSpace(window.text)
			if len(text) < minChunkLength {
				continue
			}

			chunk := models.Chunk{
				ID:              common.NewChunkID(documentID, index),
				Content:         text,
				StartOffset:     section.Start + window.start,
				EndOffset:       section.Start + window.end,
				TokenCount:      len(strings.Fields(text)),
				ChunkIndex:      index,
				SemanticSection: section.Name,
				QualityScore:    scoreQuality(text, section.Name),
				SourceDocument:  documentID,
				Metadata: models.ChunkMetadata{
					DocType:   docType,
					CreatedAt: time.Now().UTC(),
				},
			}
			index++
			if chunk.QualityScore < qualityThreshold {
				s.logger.Debug().
					Str("chunk_id", chunk.ID).
					Float32("score", float32(chunk.QualityScore)).
					Msg("Dropping low quality chunk")
				continue
			}
			chunks = append(chunks, chunk)
		}
	}

	s.logger.Debug().
		Str("document_id", documentID).
		Str("doc_type", docType).
		Int("chunks", len(chunks)).
		Msg("Document chunked")

	return chunks, nil
}

type window struct {
	text  string
	start int
	end   int
}

// slide walks the text with a fixed-size window, snapping the cut to the
// nearest sentence terminator within boundaryLookback chars of the window
// end. The next window starts overlap chars before the chosen end.
func (s *Service) slide(text string) []window {
	if len(text) <= s.chunkSize {
		return []window{{text: text, start: 0, end: len(text)}}
	}

	var windows []window
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			windows = append(windows, window{text: text[start:], start: start, end: len(text)})
			break
		}

		if adjusted := sentenceBoundary(text, start, end); adjusted > start {
			end = adjusted
		}
		windows = append(windows, window{text: text[start:end], start: start, end: end})

		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return windows
}

// sentenceBoundary returns the position just past the last sentence
// terminator in the final boundaryLookback chars of the window, or 0 when
// none is found.
func sentenceBoundary(text string, start, end int) int {
	from := end - boundaryLookback
	if from < start {
		from = start
	}
	for i := end - 1; i >= from; i-- {
		switch text[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return 0
}

// normalize strips control characters and collapses runs of whitespace while
// preserving paragraph breaks
func normalize(content string) string {
	cleaned := controlChars.ReplaceAllString(content, "")
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = multiNewline.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
