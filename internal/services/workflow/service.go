package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/galenhq/galen/internal/services/analyzer"
	"github.com/galenhq/galen/internal/services/reasoner"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
)

// FallbackMessage is returned verbatim when the workflow cannot produce an
// answer. Downstream clients key off this exact text.
const FallbackMessage = "I apologize, but I encountered an issue processing your medical query. Please try rephrasing your question or consult with a healthcare professional for immediate assistance."

const fallbackConfidence = 0.1

// errorLedgerAmount is the fixed charge recorded for a failed run so failure
// volume shows up in spend reports
var errorLedgerAmount = decimal.NewFromFloat(0.001)

// Service is the orchestrator behind interfaces.Workflow. One Run call walks
// analyze, retrieve, reason, validate, and settle-costs in order; retrieval
// failures degrade while reasoning failures end in the fallback state.
type Service struct {
	analyzer  interfaces.QueryAnalyzer
	retrieval interfaces.RetrievalService
	reasoner  interfaces.Reasoner
	validator interfaces.ResponseValidator
	costs     interfaces.CostTracker
	logger    arbor.ILogger
}

// NewService wires the workflow orchestrator
func NewService(
	queryAnalyzer interfaces.QueryAnalyzer,
	retrieval interfaces.RetrievalService,
	reason interfaces.Reasoner,
	validate interfaces.ResponseValidator,
	costs interfaces.CostTracker,
) interfaces.Workflow {
	return &Service{
		analyzer:  queryAnalyzer,
		retrieval: retrieval,
		reasoner:  reason,
		validator: validate,
		costs:     costs,
		logger:    common.GetLogger(),
	}
}

// Run executes the full pipeline for one query. It always returns a usable
// result: fatal errors produce the fallback response in the error state
// rather than a nil result.
func (s *Service) Run(ctx context.Context, req *models.WorkflowRequest) (*models.WorkflowResult, error) {
	start := time.Now()
	requestID := common.NewRequestID()

	if req == nil || req.Query == "" {
		return s.failureResult(ctx, requestID, req, nil, start, fmt.Errorf("query cannot be empty")), nil
	}

	s.logger.Info().
		Str("request_id", requestID).
		Str("user_id", req.UserID).
		Int("inline_docs", len(req.InlineDocs)).
		Msg("Workflow started")

	// identifiers are stripped before the query leaves the process
	query := analyzer.SanitizeText(req.Query)

	analyzed, err := s.analyzer.Analyze(query, req.MedicalContext)
	if err != nil {
		return s.failureResult(ctx, requestID, req, nil, start, fmt.Errorf("query analysis failed: %w", err)), nil
	}

	var hits []models.RetrievalHit
	if analyzer.IsMedicalRelated(query) || len(req.InlineDocs) > 0 {
		hits, err = s.retrieval.Retrieve(ctx, query, interfaces.RetrieveOptions{
			UserID:     req.UserID,
			SessionID:  req.SessionID,
			UseGlobal:  true,
			UseSession: req.UserID != "",
			InlineDocs: req.InlineDocs,
		})
		if err != nil {
			// degraded, not fatal: the providers still get the bare query
			s.logger.Warn().Err(err).Str("request_id", requestID).Msg("Retrieval failed, continuing without context")
			hits = nil
		}
	} else {
		s.logger.Debug().Str("request_id", requestID).Msg("Query not medical related, skipping retrieval")
	}

	messages := buildMessages(analyzed, hits, req)
	consensus, err := s.reasoner.Reason(ctx, messages, interfaces.ReasonOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return s.failureResult(ctx, requestID, req, analyzed, start, fmt.Errorf("reasoning failed: %w", err)), nil
	}

	for _, resp := range consensus.Responses {
		usage := resp.Usage
		s.costs.Record(ctx, &models.CostEntry{
			Operation: models.OperationChatCompletion,
			Provider:  resp.Provider,
			Model:     resp.Model,
			Tokens:    &usage,
			AmountUSD: resp.Cost,
			UserID:    req.UserID,
			SessionID: req.SessionID,
			RequestID: requestID,
		})
	}

	final, err := s.validator.Validate(consensus, analyzed)
	if err != nil {
		return s.failureResult(ctx, requestID, req, analyzed, start, fmt.Errorf("response validation failed: %w", err)), nil
	}

	result := &models.WorkflowResult{
		RequestID:     requestID,
		Query:         req.Query,
		Analyzed:      analyzed,
		RetrievalHits: hits,
		Responses:     consensus.Responses,
		Final:         final,
		Citations:     extractCitations(hits),
		TotalCost:     consensus.TotalCost,
		State:         models.WorkflowCompleted,
		Elapsed:       time.Since(start),
	}

	s.logger.Info().
		Str("request_id", requestID).
		Str("chosen", consensus.Chosen.Provider).
		Int("hits", len(hits)).
		Str("total_cost", result.TotalCost.String()).
		Dur("elapsed", result.Elapsed).
		Msg("Workflow completed")

	return result, nil
}

// failureResult produces the fallback response and charges the fixed error
// amount to the ledger
func (s *Service) failureResult(ctx context.Context, requestID string, req *models.WorkflowRequest, analyzed *models.AnalyzedQuery, start time.Time, cause error) *models.WorkflowResult {
	s.logger.Error().Err(cause).Str("request_id", requestID).Msg("Workflow failed")

	var userID, sessionID, query string
	if req != nil {
		userID = req.UserID
		sessionID = req.SessionID
		query = req.Query
	}

	s.costs.Record(ctx, &models.CostEntry{
		Operation: models.OperationWorkflowError,
		AmountUSD: errorLedgerAmount,
		UserID:    userID,
		SessionID: sessionID,
		RequestID: requestID,
		Extra:     map[string]string{"error": cause.Error()},
	})

	final := &models.EnrichedResponse{
		Content:    FallbackMessage,
		Confidence: fallbackConfidence,
		Disclaimer: reasoner.MedicalDisclaimer,
	}
	if analyzed != nil {
		final.QueryType = analyzed.Intent
		final.Urgency = analyzed.Urgency
		final.RequiresFollowUp = analyzed.Urgency == models.UrgencyHigh || analyzed.Urgency == models.UrgencyEmergency
	}

	return &models.WorkflowResult{
		RequestID: requestID,
		Query:     query,
		Analyzed:  analyzed,
		Final:     final,
		TotalCost: errorLedgerAmount,
		State:     models.WorkflowError,
		Error:     cause.Error(),
		Elapsed:   time.Since(start),
	}
}
