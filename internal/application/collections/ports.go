package collections

import (
	"context"
	"time"

	"github.com/motoshop/backend/internal/domain/collections"
)

// Clock supplies the current instant. Services derive "today" from it so
// classification is testable against a fixed date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the business timezone
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the configured location
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.At
}

// SummaryCache stores computed collection summaries keyed by cutoff date.
// Every Invalidate starts a new generation; a summary computed under an
// older generation is never stored.
type SummaryCache interface {
	// Get returns the cached summary for the cutoff date, if any
	Get(ctx context.Context, cutoff time.Time) (*collections.CollectionSummary, bool, error)
	// Generation returns the current generation
	Generation(ctx context.Context) (int64, error)
	// Set caches summary under its cutoff date for ttl, unless the cache has
	// been invalidated since generation was read
	Set(ctx context.Context, summary collections.CollectionSummary, generation int64, ttl time.Duration) error
	// Invalidate drops every cached summary and starts a new generation
	Invalidate(ctx context.Context) error
}

// Settings are the tunable business rules of the collections services
type Settings struct {
	HorizonDays         int
	HighRiskThreshold   int
	HighRiskDaysOverdue int
	LateFee             collections.LateFeePolicy
	SummaryTTL          time.Duration
	TopAtRiskDefault    int
	StandingsLimit      int
}

// DefaultSettings returns the rules used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		HorizonDays:       collections.DefaultUpcomingHorizonDays,
		HighRiskThreshold: collections.DefaultHighRiskThreshold,
		SummaryTTL:        time.Minute,
		TopAtRiskDefault:  10,
		StandingsLimit:    200,
	}
}

// SummaryPolicy returns the thresholds used by Summarize
func (s Settings) SummaryPolicy() collections.SummaryPolicy {
	return collections.SummaryPolicy{
		HorizonDays:         s.HorizonDays,
		HighRiskThreshold:   s.HighRiskThreshold,
		HighRiskDaysOverdue: s.HighRiskDaysOverdue,
	}
}
