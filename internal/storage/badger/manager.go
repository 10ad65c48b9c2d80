package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/common"
	"github.com/ternarybob/advisor/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	cache   interfaces.CacheStorage
	holding interfaces.HoldingStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		cache:   NewCacheStorage(db, logger),
		holding: NewHoldingStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// CacheStorage returns the cache storage interface
func (m *Manager) CacheStorage() interfaces.CacheStorage {
	return m.cache
}

// HoldingStorage returns the holding storage interface
func (m *Manager) HoldingStorage() interfaces.HoldingStorage {
	return m.holding
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
