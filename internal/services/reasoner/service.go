package reasoner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
)

// ErrNoProviderAvailable is returned when no configured provider is
// reachable or every dispatched call failed
var ErrNoProviderAvailable = errors.New("no completion provider available")

// MedicalDisclaimer is attached to every consensus result
const MedicalDisclaimer = "This information is for educational purposes only and is not a substitute for professional medical advice. Always consult a qualified healthcare provider."

// Service fans one prompt out to every available provider in parallel and
// reconciles the responses through a consensus strategy. A single slow or
// failing provider cannot block the others: each call runs under its own
// timeout and the reconciliation works with whatever succeeded.
type Service struct {
	providers []interfaces.CompletionProvider
	strategy  ConsensusStrategy
	rates     *RateTable
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewService creates the multi-provider reasoner
func NewService(cfg *common.Config, providers []interfaces.CompletionProvider, strategy ConsensusStrategy) interfaces.Reasoner {
	return &Service{
		providers: providers,
		strategy:  strategy,
		rates:     NewRateTable(),
		timeout:   common.ParseTimeout(cfg.Reasoning.Timeout, 2*time.Minute),
		logger:    common.GetLogger(),
	}
}

// Reason dispatches the messages to all available providers and waits for
// every call to finish or time out before choosing a consensus response.
func (s *Service) Reason(ctx context.Context, messages []interfaces.Message, opts interfaces.ReasonOptions) (*models.ConsensusResult, error) {
	available := make([]interfaces.CompletionProvider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.Available() {
			available = append(available, p)
		} else {
			s.logger.Warn().Str("provider", p.Name()).Msg("Provider unavailable, excluded from fan-out")
		}
	}
	if len(available) == 0 {
		return nil, ErrNoProviderAvailable
	}

	// results are slotted by provider index so output order is stable
	// regardless of completion order
	results := make([]*models.ProviderResponse, len(available))
	callErrs := make([]error, len(available))

	var wg sync.WaitGroup
	for i, provider := range available {
		wg.Add(1)
		go func(slot int, p interfaces.CompletionProvider) {
			defer wg.Done()
			results[slot], callErrs[slot] = s.callProvider(ctx, p, messages, opts)
		}(i, provider)
	}
	wg.Wait()

	var responses []models.ProviderResponse
	totalCost := decimal.Zero
	for i, r := range results {
		if r == nil {
			s.logger.Warn().
				Str("provider", available[i].Name()).
				Err(callErrs[i]).
				Msg("Provider call failed")
			continue
		}
		responses = append(responses, *r)
		totalCost = totalCost.Add(r.Cost)
	}
	if len(responses) == 0 {
		return nil, ErrNoProviderAvailable
	}

	chosen, confidence := s.strategy.Choose(responses)

	s.logger.Info().
		Int("providers", len(available)).
		Int("responses", len(responses)).
		Str("chosen", chosen.Provider).
		Str("total_cost", totalCost.String()).
		Msg("Reasoning complete")

	return &models.ConsensusResult{
		Responses:  responses,
		Chosen:     chosen,
		Confidence: confidence,
		Disclaimer: MedicalDisclaimer,
		TotalCost:  totalCost,
	}, nil
}

func (s *Service) callProvider(ctx context.Context, p interfaces.CompletionProvider, messages []interfaces.Message, opts interfaces.ReasonOptions) (*models.ProviderResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	completion, err := p.Complete(callCtx, messages, interfaces.CompletionOptions{
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Model:       p.Model(),
	})
	if err != nil {
		return nil, err
	}
	latency := completion.Latency
	if latency == 0 {
		latency = time.Since(start)
	}

	return &models.ProviderResponse{
		Provider:     p.Name(),
		Model:        completion.Model,
		Content:      completion.Content,
		FinishReason: completion.FinishReason,
		Usage: models.TokenUsage{
			Prompt:     completion.PromptTokens,
			Completion: completion.CompletionTokens,
			Total:      completion.PromptTokens + completion.CompletionTokens,
		},
		Latency: latency,
		Cost:    s.rates.Cost(completion.Model, completion.PromptTokens, completion.CompletionTokens),
	}, nil
}
