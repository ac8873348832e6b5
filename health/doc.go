// Package health reports the health of routing-cost evaluation state.
//
// A Checker reports a Status: Healthy, Degraded, or Unhealthy. Two checkers
// cover the evaluation core:
//
//   - CacheChecker judges a result cache by its hit ratio once enough
//     requests were seen.
//   - DomainChecker flags a lookup registry once any name has reached the
//     per-name variant cap.
//
// # Aggregating Health Checks
//
//	agg := health.NewAggregator()
//	agg.Register("cache/way", health.NewCacheChecker("cache/way", way.Stats, health.CacheCheckerConfig{}))
//	agg.Register("domain/way", health.NewDomainChecker("domain/way", way.Registry()))
//
//	report, status, err := agg.Report(ctx)
//	_ = report.WriteText(os.Stdout)
//
// Checks run in parallel by default and are bounded by the aggregator timeout.
package health
