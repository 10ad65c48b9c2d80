package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CacheStorage implements the CacheStorage interface for Badger
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

// GetLatest retrieves the stored record for the key
func (s *CacheStorage) GetLatest(ctx context.Context, key models.CacheKey) (*models.CachedRecord, error) {
	var record models.CachedRecord
	err := s.db.Store().Get(key.String(), &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached record %s: %w", key.String(), err)
	}

	return &record, nil
}

// Upsert replaces the record for the key. The record's key fields are
// stamped from the cache key so stored rows always match their lookup key.
func (s *CacheStorage) Upsert(ctx context.Context, key models.CacheKey, record *models.CachedRecord) error {
	if record == nil {
		return fmt.Errorf("cannot upsert nil record for %s", key.String())
	}

	record.Key = key.String()
	record.Tier = key.Tier
	record.Scope = key.Scope
	record.Period = key.Period
	if record.WrittenAt.IsZero() {
		record.WrittenAt = time.Now()
	}

	if err := s.db.Store().Upsert(record.Key, record); err != nil {
		return fmt.Errorf("failed to upsert cached record %s: %w", record.Key, err)
	}

	s.logger.Debug().Str("key", record.Key).Msg("Cached record upserted")
	return nil
}

// DeleteScope removes all records for a tier/scope pair
func (s *CacheStorage) DeleteScope(ctx context.Context, tier models.Tier, scope string) error {
	query := badgerhold.Where("Tier").Eq(tier).And("Scope").Eq(scope)
	if err := s.db.Store().DeleteMatching(&models.CachedRecord{}, query); err != nil {
		return fmt.Errorf("failed to delete records for %s/%s: %w", tier, scope, err)
	}

	s.logger.Debug().Str("tier", string(tier)).Str("scope", scope).Msg("Cached scope cleared")
	return nil
}
