package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/routecost/cache"
)

// StatsFunc reports the current counters of a result cache. A
// profile.Context's Stats method satisfies it.
type StatsFunc func() cache.Stats

// CacheCheckerConfig configures the cache hit-ratio checker.
type CacheCheckerConfig struct {
	// WarningHitRatio is the hit ratio below which the cache is degraded.
	// Value should be between 0 and 1. Default: 0.5
	WarningHitRatio float64

	// CriticalHitRatio is the hit ratio below which the cache is unhealthy.
	// Value should be between 0 and 1. Default: 0.1
	CriticalHitRatio float64

	// MinRequests is the number of requests to observe before the ratio is
	// judged. Default: 1000
	MinRequests uint64
}

// CacheChecker reports a result cache as degraded or unhealthy when too few
// requests are served without re-evaluation.
type CacheChecker struct {
	name   string
	stats  StatsFunc
	config CacheCheckerConfig
}

// NewCacheChecker creates a cache checker reading counters from stats.
func NewCacheChecker(name string, stats StatsFunc, config CacheCheckerConfig) *CacheChecker {
	if config.WarningHitRatio <= 0 || config.WarningHitRatio >= 1 {
		config.WarningHitRatio = 0.5
	}
	if config.CriticalHitRatio <= 0 || config.CriticalHitRatio >= 1 {
		config.CriticalHitRatio = 0.1
	}
	if config.CriticalHitRatio > config.WarningHitRatio {
		config.CriticalHitRatio = config.WarningHitRatio
	}
	if config.MinRequests == 0 {
		config.MinRequests = 1000
	}

	return &CacheChecker{name: name, stats: stats, config: config}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return c.name
}

// Check performs the hit-ratio check.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if r, done := cancelled(ctx); done {
		return r
	}
	if c.stats == nil {
		return Unhealthy("no cache statistics", ErrNilSource)
	}

	stats := c.stats()
	ratio := stats.HitRatio()
	details := map[string]any{
		"requests":  stats.Requests,
		"lookups":   stats.Lookups,
		"misses":    stats.Misses,
		"hit_ratio": ratio,
	}

	if stats.Requests < c.config.MinRequests {
		return Healthy(
			fmt.Sprintf("warming up: %d of %d requests", stats.Requests, c.config.MinRequests),
		).WithDetails(details)
	}

	if ratio < c.config.CriticalHitRatio {
		return Unhealthy(
			fmt.Sprintf("cache hit ratio critical: %.1f%%", ratio*100),
			ErrCheckFailed,
		).WithDetails(details)
	}

	if ratio < c.config.WarningHitRatio {
		return Degraded(
			fmt.Sprintf("cache hit ratio low: %.1f%%", ratio*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("cache hit ratio normal: %.1f%%", ratio*100),
	).WithDetails(details)
}
