package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricCacheRequests   = "routecost.cache.requests"
	MetricCacheMisses     = "routecost.cache.misses"
	MetricEvalWarnings    = "routecost.eval.warnings"
	MetricCompileDuration = "routecost.compile.duration_ms"
)

// Metrics records evaluation and compilation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; RecordLookup sits on the evaluation path.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records one result cache request and whether it missed.
	RecordLookup(ctx context.Context, meta ContextMeta, miss bool)

	// RecordWarning records an evaluator warning.
	RecordWarning(ctx context.Context, meta ContextMeta)

	// RecordCompile records a profile compilation with duration and error status.
	RecordCompile(ctx context.Context, meta ContextMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	requests     metric.Int64Counter
	misses       metric.Int64Counter
	warnings     metric.Int64Counter
	durationHist metric.Float64Histogram

	// attrs caches one attribute set per context.
	attrs sync.Map // ContextMeta -> metric.MeasurementOption
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	requests, err := meter.Int64Counter(
		MetricCacheRequests,
		metric.WithDescription("Total number of result cache requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		MetricCacheMisses,
		metric.WithDescription("Result cache requests that ran the cost model"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	warnings, err := meter.Int64Counter(
		MetricEvalWarnings,
		metric.WithDescription("Evaluator warnings; results were not cached"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricCompileDuration,
		metric.WithDescription("Profile compilation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		requests:     requests,
		misses:       misses,
		warnings:     warnings,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) option(meta ContextMeta) metric.MeasurementOption {
	if opt, ok := m.attrs.Load(meta); ok {
		return opt.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(meta.attributes()...))
	actual, _ := m.attrs.LoadOrStore(meta, opt)
	return actual.(metric.MeasurementOption)
}

// RecordLookup increments the request counter, and the miss counter on a miss.
func (m *metricsImpl) RecordLookup(ctx context.Context, meta ContextMeta, miss bool) {
	opt := m.option(meta)
	m.requests.Add(ctx, 1, opt)
	if miss {
		m.misses.Add(ctx, 1, opt)
	}
}

// RecordWarning increments the warning counter.
func (m *metricsImpl) RecordWarning(ctx context.Context, meta ContextMeta) {
	m.warnings.Add(ctx, 1, m.option(meta))
}

// RecordCompile records compilation duration in milliseconds.
func (m *metricsImpl) RecordCompile(ctx context.Context, meta ContextMeta, duration time.Duration, err error) {
	attrs := append(meta.attributes(), attribute.Bool("compile.error", err != nil))
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordLookup(ctx context.Context, meta ContextMeta, miss bool) {}
func (m *noopMetrics) RecordWarning(ctx context.Context, meta ContextMeta)           {}
func (m *noopMetrics) RecordCompile(ctx context.Context, meta ContextMeta, duration time.Duration, err error) {
}

// CacheRecorder forwards result cache events to Metrics for one context.
type CacheRecorder struct {
	ctx     context.Context
	metrics Metrics
	meta    ContextMeta
}

// NewCacheRecorder binds metrics to an evaluation context.
func NewCacheRecorder(ctx context.Context, metrics Metrics, meta ContextMeta) *CacheRecorder {
	return &CacheRecorder{ctx: ctx, metrics: metrics, meta: meta}
}

// RecordLookup records one cache request.
func (r *CacheRecorder) RecordLookup(miss bool) {
	r.metrics.RecordLookup(r.ctx, r.meta, miss)
}

// RecordWarning records one uncached warning result.
func (r *CacheRecorder) RecordWarning() {
	r.metrics.RecordWarning(r.ctx, r.meta)
}
