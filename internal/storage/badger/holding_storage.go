package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/common"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// HoldingStorage implements the HoldingStorage interface for Badger
type HoldingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHoldingStorage creates a new HoldingStorage instance
func NewHoldingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HoldingStorage {
	return &HoldingStorage{
		db:     db,
		logger: logger,
	}
}

// SaveHolding inserts or updates a holding. New holdings get an ID and a
// normalized symbol.
func (s *HoldingStorage) SaveHolding(ctx context.Context, holding *models.Holding) error {
	if holding == nil {
		return fmt.Errorf("cannot save nil holding")
	}

	if holding.ID == "" {
		holding.ID = uuid.New().String()
	}
	if holding.CreatedAt.IsZero() {
		holding.CreatedAt = time.Now()
	}
	holding.Symbol = common.NormalizeSymbol(holding.Symbol)

	if err := s.db.Store().Upsert(holding.ID, holding); err != nil {
		return fmt.Errorf("failed to save holding %s: %w", holding.ID, err)
	}

	return nil
}

// GetHolding retrieves a holding by ID
func (s *HoldingStorage) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	var holding models.Holding
	err := s.db.Store().Get(id, &holding)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding %s: %w", id, err)
	}

	return &holding, nil
}

// GetHoldingsByUser retrieves all holdings for a user
func (s *HoldingStorage) GetHoldingsByUser(ctx context.Context, userID string) ([]*models.Holding, error) {
	var holdings []*models.Holding
	query := badgerhold.Where("UserID").Eq(userID)
	if err := s.db.Store().Find(&holdings, query); err != nil {
		return nil, fmt.Errorf("failed to list holdings for user %s: %w", userID, err)
	}

	return holdings, nil
}

// DeleteHolding removes a holding by ID
func (s *HoldingStorage) DeleteHolding(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Holding{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete holding %s: %w", id, err)
	}

	return nil
}
