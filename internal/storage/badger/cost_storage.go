package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// CostStorage implements the append-only cost ledger on badgerhold
type CostStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCostStorage creates the badger-backed cost ledger
func NewCostStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CostStorage {
	return &CostStorage{db: db, logger: logger}
}

// Append stores one ledger entry. Inserting an existing id is an error: the
// ledger is append-only and entries are never rewritten.
func (c *CostStorage) Append(_ context.Context, entry *models.CostEntry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("cost entry requires an id")
	}
	if err := c.db.Store().Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to append cost entry %s: %w", entry.ID, err)
	}
	return nil
}

// FindByUser returns a user's entries within the closed window [start, end]
func (c *CostStorage) FindByUser(_ context.Context, userID string, start, end time.Time) ([]models.CostEntry, error) {
	var entries []models.CostEntry
	query := badgerhold.Where("UserID").Eq(userID).
		And("Timestamp").Ge(start).
		And("Timestamp").Le(end)
	if err := c.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to find cost entries for user %s: %w", userID, err)
	}
	return entries, nil
}
