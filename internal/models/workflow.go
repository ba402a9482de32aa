package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowRequest carries one user query and its session context into the
// orchestrator
type WorkflowRequest struct {
	Query          string           `json:"query"`
	UserID         string           `json:"user_id"`
	SessionID      string           `json:"session_id,omitempty"`
	InlineDocs     []InlineDocument `json:"inline_docs,omitempty"`
	MedicalContext *MedicalContext  `json:"medical_context,omitempty"`
	Temperature    float32          `json:"temperature,omitempty"`
	MaxTokens      int              `json:"max_tokens,omitempty"`
}

// WorkflowState is the terminal state of one workflow execution
type WorkflowState string

const (
	WorkflowCompleted WorkflowState = "completed"
	WorkflowError     WorkflowState = "error"
)

// Citation points the caller at one retrieval source backing the answer
type Citation struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	URL            string  `json:"url,omitempty"`
	Source         string  `json:"source"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// WorkflowResult is the terminal artifact of one workflow execution, returned
// to the caller and never mutated after construction.
type WorkflowResult struct {
	RequestID     string             `json:"request_id"`
	Query         string             `json:"query"`
	Analyzed      *AnalyzedQuery     `json:"analyzed,omitempty"`
	RetrievalHits []RetrievalHit     `json:"retrieval_hits,omitempty"`
	Responses     []ProviderResponse `json:"responses,omitempty"`
	Final         *EnrichedResponse  `json:"final"`
	Citations     []Citation         `json:"citations,omitempty"`
	TotalCost     decimal.Decimal    `json:"total_cost"`
	State         WorkflowState      `json:"state"`
	Error         string             `json:"error,omitempty"`
	Elapsed       time.Duration      `json:"elapsed"`
}
