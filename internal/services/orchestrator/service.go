// Package orchestrator routes cache lookups: serve fresh records as-is,
// regenerate expired ones through the tier pipeline, and degrade to the
// previous record or a tier default when generation fails.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/ternarybob/advisor/internal/services/expiry"
	"github.com/ternarybob/advisor/internal/services/fallback"
)

// Service implements interfaces.Orchestrator over a set of tier pipelines
type Service struct {
	storage   interfaces.CacheStorage
	policy    *expiry.Policy
	pipelines map[models.Tier]interfaces.TierPipeline
	logger    arbor.ILogger
}

// NewService creates an orchestrator over the given pipelines
func NewService(storage interfaces.CacheStorage, policy *expiry.Policy, pipelines []interfaces.TierPipeline, logger arbor.ILogger) *Service {
	byTier := make(map[models.Tier]interfaces.TierPipeline, len(pipelines))
	for _, p := range pipelines {
		byTier[p.Tier()] = p
	}
	return &Service{
		storage:   storage,
		policy:    policy,
		pipelines: byTier,
		logger:    logger,
	}
}

// Resolve returns the record for the key, regenerating it when forced or
// expired. Generation failures degrade to the previous record, or to the
// tier's empty default when there is none; neither degraded result is
// persisted. Persistence failures are the only errors surfaced.
func (s *Service) Resolve(ctx context.Context, key models.CacheKey, force bool) (*models.CachedRecord, error) {
	prev, err := s.storage.GetLatest(ctx, key)
	if err != nil && !errors.Is(err, interfaces.ErrRecordNotFound) {
		return nil, fmt.Errorf("cache lookup for %s failed: %w", key, err)
	}

	if !force && !s.policy.IsExpired(key.Tier, prev) {
		return prev, nil
	}

	pipeline, ok := s.pipelines[key.Tier]
	if !ok {
		return nil, fmt.Errorf("no pipeline registered for tier %s", key.Tier)
	}

	candidate, err := pipeline.Generate(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("Generation failed, serving degraded record")
		if prev != nil {
			return prev, nil
		}
		return defaultRecord(key), nil
	}

	// News keys share a scope across refreshes; clear the scope before
	// writing so exactly one record per category survives.
	if key.Tier == models.TierNews {
		if err := s.storage.DeleteScope(ctx, key.Tier, key.Scope); err != nil {
			return nil, fmt.Errorf("clearing %s/%s failed: %w", key.Tier, key.Scope, err)
		}
	}

	if err := s.storage.Upsert(ctx, key, candidate); err != nil {
		return nil, fmt.Errorf("persisting %s failed: %w", key, err)
	}

	s.logger.Debug().Str("key", key.String()).Bool("forced", force).Msg("Record regenerated")
	return candidate, nil
}

// defaultRecord is the tier's empty-but-complete record, served when
// generation fails with nothing cached. Never persisted.
func defaultRecord(key models.CacheKey) *models.CachedRecord {
	record := models.NewRecord(key, time.Now())
	switch key.Tier {
	case models.TierDailyReport:
		record.Report = fallback.Report(nil, key.Period)
	case models.TierPersonalAdvice:
		record.Advice = []models.AdviceAction{}
	default:
		record.News = []models.NewsItem{}
	}
	return record
}
