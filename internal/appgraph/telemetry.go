package appgraph

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("gridgraph.appgraph")
	meter  = otel.Meter("gridgraph.appgraph")
)

var (
	mutationTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		mutationTotal, metricsErr = meter.Int64Counter(
			"appgraph.mutations",
			metric.WithDescription("Total number of graph mutations by operation and outcome"),
		)
	})
	return metricsErr
}

// startSpan opens a span for a public mutation.
func startSpan(ctx context.Context, op string, g interface{ Name() string }, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("graph.name", g.Name()))
	return tracer.Start(ctx, "appgraph."+op, trace.WithAttributes(attrs...))
}

// endSpan records the outcome of a mutation on span and in the mutation
// counter. An empty outcome means success.
func endSpan(ctx context.Context, span trace.Span, op, outcome string) {
	if outcome == "" {
		outcome = "ok"
	} else {
		span.SetStatus(codes.Error, outcome)
	}
	span.SetAttributes(attribute.String("appgraph.outcome", outcome))
	span.End()

	if err := initMetrics(); err != nil {
		return
	}
	mutationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}
