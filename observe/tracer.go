package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ContextMeta identifies an evaluation context for telemetry purposes.
type ContextMeta struct {
	Profile string // Profile name (optional)
	Context string // Evaluation context: global, way or node (required)
}

// SpanName returns the deterministic span name for compiling this context.
// Format: routecost.compile.<context>
func (m ContextMeta) SpanName() string {
	return "routecost.compile." + m.Context
}

// Label returns profile/context, or just the context without a profile.
func (m ContextMeta) Label() string {
	if m.Profile != "" {
		return m.Profile + "/" + m.Context
	}
	return m.Context
}

func (m ContextMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("profile.context", m.Context),
	}
	if m.Profile != "" {
		attrs = append(attrs, attribute.String("profile.name", m.Profile))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with compile span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for compiling one context.
	StartSpan(ctx context.Context, meta ContextMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with context metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ContextMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("compile.error", false))

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("compile.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ContextMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
