package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/advisor/internal/models"
)

// ErrRecordNotFound is returned by CacheStorage.GetLatest when no record
// exists for the key. Every other storage error indicates a persistence
// failure and propagates.
var ErrRecordNotFound = errors.New("cache record not found")

// CacheStorage persists cached records keyed by their cache key
type CacheStorage interface {
	// GetLatest returns the stored record for the key, or ErrRecordNotFound
	GetLatest(ctx context.Context, key models.CacheKey) (*models.CachedRecord, error)

	// Upsert replaces the record for the key atomically
	Upsert(ctx context.Context, key models.CacheKey, record *models.CachedRecord) error

	// DeleteScope removes all records for a tier/scope pair
	DeleteScope(ctx context.Context, tier models.Tier, scope string) error
}

// HoldingStorage persists user portfolio holdings
type HoldingStorage interface {
	SaveHolding(ctx context.Context, holding *models.Holding) error
	GetHolding(ctx context.Context, id string) (*models.Holding, error)
	GetHoldingsByUser(ctx context.Context, userID string) ([]*models.Holding, error)
	DeleteHolding(ctx context.Context, id string) error
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	CacheStorage() CacheStorage
	HoldingStorage() HoldingStorage
	Close() error
}
