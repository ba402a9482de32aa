package interfaces

import (
	"context"
	"time"

	"github.com/galenhq/galen/internal/models"
)

// RetrieveOptions controls one retrieval aggregation pass
type RetrieveOptions struct {
	UserID         string
	SessionID      string
	UseGlobal      bool
	UseSession     bool
	InlineDocs     []models.InlineDocument
	Limit          int
	ScoreThreshold float64
}

// QueryAnalyzer classifies intent, urgency, and citation requirement
type QueryAnalyzer interface {
	Analyze(query string, medicalContext *models.MedicalContext) (*models.AnalyzedQuery, error)
}

// RetrievalService merges global, session, and inline sources into one
// ranked, deduplicated hit set. Sub-source failures degrade to fewer hits.
type RetrievalService interface {
	Retrieve(ctx context.Context, query string, opts RetrieveOptions) ([]models.RetrievalHit, error)
}

// ReasonOptions carries per-reasoning-call parameters
type ReasonOptions struct {
	Temperature float32
	MaxTokens   int
}

// Reasoner fans a prompt out to all available providers and selects a
// consensus response from the ones that succeeded.
type Reasoner interface {
	Reason(ctx context.Context, messages []Message, opts ReasonOptions) (*models.ConsensusResult, error)
}

// ResponseValidator enforces the disclaimer invariant and enriches the chosen
// response with workflow metadata.
type ResponseValidator interface {
	Validate(consensus *models.ConsensusResult, analyzed *models.AnalyzedQuery) (*models.EnrichedResponse, error)
}

// CostTracker records billable steps and aggregates spend. Record never fails
// the caller: on a persistence error it logs and returns a synthetic id.
type CostTracker interface {
	Record(ctx context.Context, entry *models.CostEntry) string
	Summarize(ctx context.Context, userID string, start, end time.Time) (*models.CostSummary, error)
}

// Workflow is the single entry point for answering a medical query. Run
// never returns a nil result alongside a nil error: fatal failures produce a
// fallback result in the error state.
type Workflow interface {
	Run(ctx context.Context, req *models.WorkflowRequest) (*models.WorkflowResult, error)
}

// KnowledgeService ingests content into the retrieval collections
type KnowledgeService interface {
	IngestKnowledge(ctx context.Context, title, content, source string, meta map[string]string) (string, error)
	IngestSessionDocument(ctx context.Context, userID, sessionID string, doc models.InlineDocument) (*models.IngestResult, error)
}
