// Package expiry decides when cached records need regeneration.
package expiry

import (
	"time"

	"github.com/ternarybob/advisor/internal/models"
)

// DefaultNewsWindow is the rolling freshness window for news digests
const DefaultNewsWindow = 60 * time.Minute

// Policy evaluates record freshness per tier. News records age out on a
// rolling window; date-keyed tiers are fresh for as long as their key
// exists, since a new day produces a new key.
type Policy struct {
	newsWindow time.Duration
	now        func() time.Time
}

// Option configures a Policy
type Option func(*Policy)

// WithNewsWindow overrides the rolling window for the news tier
func WithNewsWindow(window time.Duration) Option {
	return func(p *Policy) {
		if window > 0 {
			p.newsWindow = window
		}
	}
}

// WithClock overrides the time source, used in tests
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPolicy creates a Policy with the default news window
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		newsWindow: DefaultNewsWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsExpired reports whether the record needs regeneration. A nil record
// (cache miss) is always expired. A record whose timestamp is unusable
// is treated as expired so bad data heals on the next resolve.
func (p *Policy) IsExpired(tier models.Tier, record *models.CachedRecord) bool {
	if record == nil {
		return true
	}

	switch tier {
	case models.TierNews:
		if record.WrittenAt.IsZero() {
			return true
		}
		return record.Age(p.now()) > p.newsWindow
	case models.TierDailyReport, models.TierPersonalAdvice:
		// Date-keyed tiers never expire in place. The lookup key carries
		// the date, so a new day is a cache miss rather than a stale hit.
		return false
	default:
		return true
	}
}

// NewsWindow returns the configured rolling window
func (p *Policy) NewsWindow() time.Duration {
	return p.newsWindow
}
