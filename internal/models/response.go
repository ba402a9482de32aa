package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenUsage counts tokens consumed by one completion call
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// ProviderResponse is one successful provider completion. A provider that
// errors or times out yields no ProviderResponse at all and is dropped from
// the reasoning result.
type ProviderResponse struct {
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	Content      string          `json:"content"`
	FinishReason string          `json:"finish_reason"`
	Usage        TokenUsage      `json:"usage"`
	Latency      time.Duration   `json:"latency"`
	Cost         decimal.Decimal `json:"cost"`
}

// ConsensusResult is the outcome of multi-provider reasoning: every response
// that succeeded plus the chosen one. Chosen is always a member of Responses,
// selected by priority order, never synthesized by blending text.
type ConsensusResult struct {
	Responses  []ProviderResponse `json:"responses"`
	Chosen     *ProviderResponse  `json:"chosen"`
	Confidence float64            `json:"confidence"`
	Disclaimer string             `json:"disclaimer"`
	TotalCost  decimal.Decimal    `json:"total_cost"`
}

// EnrichedResponse is the validated, disclaimer-bearing final response
type EnrichedResponse struct {
	Content          string  `json:"content"`
	Confidence       float64 `json:"confidence"`
	Disclaimer       string  `json:"disclaimer"`
	QueryType        Intent  `json:"query_type"`
	Urgency          Urgency `json:"urgency"`
	RequiresFollowUp bool    `json:"requires_follow_up"`
}
