package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/galenhq/galen/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// CostStorage persists the append-only cost ledger
type CostStorage interface {
	// Append stores one ledger entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *models.CostEntry) error

	// FindByUser returns all entries for a user within the closed time window.
	FindByUser(ctx context.Context, userID string, start, end time.Time) ([]models.CostEntry, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	VectorStore() VectorStore
	CostStorage() CostStorage
	Close() error
}
