package badger

import (
	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	vector interfaces.VectorStore
	costs  interfaces.CostStorage
	logger arbor.ILogger
}

// NewManager opens the database and wires the storage interfaces
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		vector: NewVectorStorage(db, logger),
		costs:  NewCostStorage(db, logger),
		logger: logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// VectorStore returns the vector storage interface
func (m *Manager) VectorStore() interfaces.VectorStore {
	return m.vector
}

// CostStorage returns the cost ledger interface
func (m *Manager) CostStorage() interfaces.CostStorage {
	return m.costs
}

// Close closes the underlying database
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing Badger storage manager")
	return m.db.Close()
}
