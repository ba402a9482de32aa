package reasoner

import (
	"strings"

	"github.com/shopspring/decimal"
)

// modelRate holds per-1000-token prices in USD
type modelRate struct {
	prompt     decimal.Decimal
	completion decimal.Decimal
}

// RateTable maps model identifiers to published per-1k-token prices. Lookups
// match on prefix so dated model revisions share their family rate.
type RateTable struct {
	rates    map[string]modelRate
	fallback modelRate
}

// NewRateTable builds the default price table. Unknown models fall back to a
// conservative estimate so cost tracking never returns zero for billed calls.
func NewRateTable() *RateTable {
	return &RateTable{
		rates: map[string]modelRate{
			"claude-3-5-sonnet": {decimal.NewFromFloat(0.003), decimal.NewFromFloat(0.015)},
			"claude-3-opus":     {decimal.NewFromFloat(0.015), decimal.NewFromFloat(0.075)},
			"claude-3-haiku":    {decimal.NewFromFloat(0.00025), decimal.NewFromFloat(0.00125)},
			"gemini-2.0-flash":  {decimal.NewFromFloat(0.0001), decimal.NewFromFloat(0.0004)},
			"gemini-1.5-pro":    {decimal.NewFromFloat(0.00125), decimal.NewFromFloat(0.005)},
		},
		fallback: modelRate{decimal.NewFromFloat(0.001), decimal.NewFromFloat(0.002)},
	}
}

var perThousand = decimal.NewFromInt(1000)

// Cost prices a call from its token usage. Decimal arithmetic keeps repeated
// small charges from accumulating float drift in the ledger.
func (rt *RateTable) Cost(model string, promptTokens, completionTokens int) decimal.Decimal {
	rate := rt.fallback
	for prefix, r := range rt.rates {
		if strings.HasPrefix(model, prefix) {
			rate = r
			break
		}
	}

	promptCost := rate.prompt.Mul(decimal.NewFromInt(int64(promptTokens))).Div(perThousand)
	completionCost := rate.completion.Mul(decimal.NewFromInt(int64(completionTokens))).Div(perThousand)
	return promptCost.Add(completionCost)
}
