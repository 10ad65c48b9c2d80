package interfaces

import (
	"context"

	"github.com/ternarybob/advisor/internal/models"
)

// TierPipeline generates a candidate record for one tier. Generate is
// called only when the orchestrator decides regeneration is needed.
type TierPipeline interface {
	Tier() models.Tier
	Generate(ctx context.Context, key models.CacheKey) (*models.CachedRecord, error)
}

// Orchestrator is the single entry point for cached content. Resolve
// always returns a usable record; the only errors it surfaces are
// persistence failures.
type Orchestrator interface {
	Resolve(ctx context.Context, key models.CacheKey, force bool) (*models.CachedRecord, error)
}
