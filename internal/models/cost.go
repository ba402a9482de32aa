package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cost ledger operation names
const (
	OperationChatCompletion  = "chat_completion"
	OperationMedicalAnalysis = "medical_analysis"
	OperationIngestion       = "ingestion"
	OperationWorkflowError   = "workflow_error"
)

// CostEntry is one append-only cost ledger record. Entries are written for
// every billable step, including failure paths, so failed runs stay auditable.
type CostEntry struct {
	ID        string          `json:"id" badgerhold:"key"`
	Operation string          `json:"operation"`
	Provider  string          `json:"provider,omitempty"`
	Model     string          `json:"model,omitempty"`
	Tokens    *TokenUsage     `json:"tokens,omitempty"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"user_id"`
	SessionID string          `json:"session_id,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// CostSummary aggregates ledger entries over a closed time window
type CostSummary struct {
	TotalCost   decimal.Decimal            `json:"total_cost"`
	Entries     int                        `json:"entries"`
	ByProvider  map[string]decimal.Decimal `json:"by_provider"`
	ByOperation map[string]decimal.Decimal `json:"by_operation"`
	WindowStart time.Time                  `json:"window_start"`
	WindowEnd   time.Time                  `json:"window_end"`
}

// CostAlert flags spend exceeding a threshold
type CostAlert struct {
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Severity  string          `json:"severity"`
	Spend     decimal.Decimal `json:"spend"`
	Threshold decimal.Decimal `json:"threshold"`
	Timestamp time.Time       `json:"timestamp"`
}
