package validator

import (
	"errors"
	"strings"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/ternarybob/arbor"
)

// ErrNoChosenResponse is returned when the consensus carries no selection
var ErrNoChosenResponse = errors.New("consensus result has no chosen response")

// disclaimerIndicators mark content that already carries safety language.
// The check is deliberately loose: a model that mentions consulting a doctor
// has covered the obligation and a second boilerplate paragraph adds noise.
var disclaimerIndicators = []string{
	"disclaimer",
	"professional",
	"doctor",
	"healthcare",
}

// Service enforces the disclaimer invariant on model output and folds the
// query analysis into the final response envelope.
type Service struct {
	logger arbor.ILogger
}

// NewService creates the response validator
func NewService() interfaces.ResponseValidator {
	return &Service{logger: common.GetLogger()}
}

// Validate appends the disclaimer when the content lacks safety language and
// derives follow-up from urgency. Validation is idempotent: validating an
// already validated response changes nothing.
func (s *Service) Validate(consensus *models.ConsensusResult, analyzed *models.AnalyzedQuery) (*models.EnrichedResponse, error) {
	if consensus == nil || consensus.Chosen == nil {
		return nil, ErrNoChosenResponse
	}

	content := consensus.Chosen.Content
	if !hasDisclaimer(content) {
		content = strings.TrimRight(content, " \n") + "\n\n" + consensus.Disclaimer
		s.logger.Debug().Str("provider", consensus.Chosen.Provider).Msg("Disclaimer appended to response")
	}

	enriched := &models.EnrichedResponse{
		Content:    content,
		Confidence: consensus.Confidence,
		Disclaimer: consensus.Disclaimer,
	}
	if analyzed != nil {
		enriched.QueryType = analyzed.Intent
		enriched.Urgency = analyzed.Urgency
		enriched.RequiresFollowUp = analyzed.Urgency == models.UrgencyHigh || analyzed.Urgency == models.UrgencyEmergency
	}
	return enriched, nil
}

func hasDisclaimer(content string) bool {
	lower := strings.ToLower(content)
	for _, indicator := range disclaimerIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
