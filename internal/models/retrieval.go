package models

// RetrievalSource identifies which of the three retrieval sources produced a hit
type RetrievalSource string

const (
	// SourceGlobal is the curated global knowledge base
	SourceGlobal RetrievalSource = "global"
	// SourceSession is the user's previously ingested session documents
	SourceSession RetrievalSource = "session"
	// SourceInline is content attached to the current request, not yet indexed
	SourceInline RetrievalSource = "inline"
)

// Priority returns the tie-break rank of a source; higher wins. Inline content
// is the most contextually certain, then session documents, then global.
func (s RetrievalSource) Priority() int {
	switch s {
	case SourceInline:
		return 3
	case SourceSession:
		return 2
	case SourceGlobal:
		return 1
	default:
		return 0
	}
}

// RetrievalHit is one ranked retrieval result. Hits are ephemeral: constructed
// per query and never persisted.
type RetrievalHit struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Content  string            `json:"content"`
	Source   RetrievalSource   `json:"source"`
	Title    string            `json:"title,omitempty"`
	FileName string            `json:"file_name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// InlineDocument is a document attached to the current request. The content
// is already extracted plain text; raw file-format extraction happens upstream.
type InlineDocument struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	DocType  string `json:"doc_type,omitempty"`
	Content  string `json:"content"`
}
