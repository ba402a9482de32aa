package reasoner

import "github.com/galenhq/galen/internal/models"

// ConsensusStrategy selects one response from the successful provider
// responses and assigns a confidence to the selection
type ConsensusStrategy interface {
	Choose(responses []models.ProviderResponse) (*models.ProviderResponse, float64)
}

// PriorityStrategy picks the response from the highest priority provider
// that succeeded. It never blends content across providers: medical answers
// must be attributable to exactly one model.
type PriorityStrategy struct {
	priority []string
}

// NewPriorityStrategy creates a strategy with the configured provider order
func NewPriorityStrategy(priority []string) *PriorityStrategy {
	return &PriorityStrategy{priority: priority}
}

// Choose returns the priority pick and a confidence that grows with the
// number of providers that produced an answer
func (p *PriorityStrategy) Choose(responses []models.ProviderResponse) (*models.ProviderResponse, float64) {
	if len(responses) == 0 {
		return nil, 0
	}

	chosen := &responses[0]
	for _, name := range p.priority {
		found := false
		for i := range responses {
			if responses[i].Provider == name {
				chosen = &responses[i]
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	confidence := 0.7 + 0.15*float64(len(responses)-1)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return chosen, confidence
}
