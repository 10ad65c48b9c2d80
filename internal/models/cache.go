package models

import (
	"strings"
	"time"
)

// Tier identifies a class of cached content with its own freshness rules
type Tier string

const (
	// TierNews uses a rolling freshness window per category
	TierNews Tier = "news"
	// TierDailyReport is keyed by calendar date; a record for today's date never expires
	TierDailyReport Tier = "daily_report"
	// TierPersonalAdvice is keyed by user and calendar date
	TierPersonalAdvice Tier = "personal_advice"
)

// DateKeyLayout is the calendar-date format used in period keys
const DateKeyLayout = "2006-01-02"

// CacheKey identifies one cached record. Scope is the news category or the
// user ID; Period is the date key for date-scoped tiers (empty for news).
type CacheKey struct {
	Tier   Tier   `json:"tier"`
	Scope  string `json:"scope,omitempty"`
	Period string `json:"period,omitempty"`
}

// NewsKey builds the key for a news category
func NewsKey(category string) CacheKey {
	return CacheKey{Tier: TierNews, Scope: category}
}

// DailyReportKey builds the key for the market report of the given day
func DailyReportKey(day time.Time) CacheKey {
	return CacheKey{Tier: TierDailyReport, Period: day.Format(DateKeyLayout)}
}

// PersonalAdviceKey builds the key for one user's advice on the given day
func PersonalAdviceKey(userID string, day time.Time) CacheKey {
	return CacheKey{Tier: TierPersonalAdvice, Scope: userID, Period: day.Format(DateKeyLayout)}
}

// String returns the stable storage key, e.g. "news/international",
// "daily_report/2025-03-01", "personal_advice/7/2025-03-01"
func (k CacheKey) String() string {
	parts := []string{string(k.Tier)}
	if k.Scope != "" {
		parts = append(parts, k.Scope)
	}
	if k.Period != "" {
		parts = append(parts, k.Period)
	}
	return strings.Join(parts, "/")
}

// CachedRecord is the unit of persistence. Exactly one payload field is
// populated, matching the tier. Records are replaced whole on upsert.
type CachedRecord struct {
	Key       string    `json:"key" badgerhold:"key"`
	Tier      Tier      `json:"tier" badgerhold:"index"`
	Scope     string    `json:"scope,omitempty" badgerhold:"index"`
	Period    string    `json:"period,omitempty"`
	WrittenAt time.Time `json:"written_at"`

	News   []NewsItem     `json:"news,omitempty"`
	Report *DailyReport   `json:"report,omitempty"`
	Advice []AdviceAction `json:"advice,omitempty"`
}

// NewRecord builds an empty record for the given key stamped at now
func NewRecord(key CacheKey, now time.Time) *CachedRecord {
	return &CachedRecord{
		Key:       key.String(),
		Tier:      key.Tier,
		Scope:     key.Scope,
		Period:    key.Period,
		WrittenAt: now,
	}
}

// Age returns how long ago the record was written. A zero WrittenAt
// (unusable timestamp) reports an age larger than any freshness window.
func (r *CachedRecord) Age(now time.Time) time.Duration {
	if r.WrittenAt.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(r.WrittenAt)
}
