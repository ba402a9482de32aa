package costs

import (
	"context"
	"fmt"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
)

// DefaultDailyThresholdUSD is the spend level that raises an alert when no
// explicit threshold is given
var DefaultDailyThresholdUSD = decimal.NewFromFloat(5.0)

// Service implements interfaces.CostTracker on top of the ledger storage.
// Recording is deliberately non-fatal: a broken ledger must never take the
// medical workflow down with it.
type Service struct {
	storage interfaces.CostStorage
	logger  arbor.ILogger
}

// NewService creates the cost tracker
func NewService(storage interfaces.CostStorage) *Service {
	return &Service{
		storage: storage,
		logger:  common.GetLogger(),
	}
}

// Record persists a ledger entry and returns its id. On a persistence
// failure the error is logged and the generated id is still returned, so
// callers can reference the entry in their own logs.
func (s *Service) Record(ctx context.Context, entry *models.CostEntry) string {
	if entry.ID == "" {
		entry.ID = common.NewCostEntryID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.storage.Append(ctx, entry); err != nil {
		s.logger.Error().
			Err(err).
			Str("entry_id", entry.ID).
			Str("operation", entry.Operation).
			Str("amount_usd", entry.AmountUSD.String()).
			Msg("Cost entry not persisted")
		return entry.ID
	}

	s.logger.Debug().
		Str("entry_id", entry.ID).
		Str("operation", entry.Operation).
		Str("provider", entry.Provider).
		Str("amount_usd", entry.AmountUSD.String()).
		Msg("Cost entry recorded")
	return entry.ID
}

// Summarize aggregates a user's spend over the closed window [start, end]
func (s *Service) Summarize(ctx context.Context, userID string, start, end time.Time) (*models.CostSummary, error) {
	entries, err := s.storage.FindByUser(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load cost entries for user %s: %w", userID, err)
	}

	summary := &models.CostSummary{
		TotalCost:   decimal.Zero,
		Entries:     len(entries),
		ByProvider:  make(map[string]decimal.Decimal),
		ByOperation: make(map[string]decimal.Decimal),
		WindowStart: start,
		WindowEnd:   end,
	}
	for _, e := range entries {
		summary.TotalCost = summary.TotalCost.Add(e.AmountUSD)
		if e.Provider != "" {
			summary.ByProvider[e.Provider] = summary.ByProvider[e.Provider].Add(e.AmountUSD)
		}
		summary.ByOperation[e.Operation] = summary.ByOperation[e.Operation].Add(e.AmountUSD)
	}
	return summary, nil
}

// Alerts checks the user's trailing 24 hour spend against a threshold.
// A zero threshold uses the default.
func (s *Service) Alerts(ctx context.Context, userID string, threshold decimal.Decimal) ([]models.CostAlert, error) {
	if threshold.IsZero() {
		threshold = DefaultDailyThresholdUSD
	}

	now := time.Now().UTC()
	summary, err := s.Summarize(ctx, userID, now.Add(-24*time.Hour), now)
	if err != nil {
		return nil, err
	}

	if summary.TotalCost.LessThanOrEqual(threshold) {
		return nil, nil
	}

	severity := "warning"
	if summary.TotalCost.GreaterThanOrEqual(threshold.Mul(decimal.NewFromInt(2))) {
		severity = "critical"
	}
	alert := models.CostAlert{
		Type:      "daily_spend",
		Message:   fmt.Sprintf("spend %s USD in the last 24h exceeds threshold %s USD", summary.TotalCost, threshold),
		Severity:  severity,
		Spend:     summary.TotalCost,
		Threshold: threshold,
		Timestamp: now,
	}
	s.logger.Warn().
		Str("user_id", userID).
		Str("spend", summary.TotalCost.String()).
		Str("threshold", threshold.String()).
		Str("severity", severity).
		Msg("Cost alert raised")
	return []models.CostAlert{alert}, nil
}
