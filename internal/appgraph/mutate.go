package appgraph

import (
	"context"

	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/failure"
	"go.opentelemetry.io/otel/attribute"
)

// mutate runs apply inside the single-writer window of g and dispatches the
// collected notifications once the window is released and apply succeeded.
func mutate[T any, D failure.Domain](ctx context.Context, g *Graph[T], op string, attrs []attribute.KeyValue, apply func(b *batch) *failure.Failure[D]) (f *failure.Failure[D]) {
	ctx, span := startSpan(ctx, op, g, attrs...)
	defer func() {
		if r := recover(); r != nil {
			endSpan(ctx, span, op, "fatal")
			panic(r)
		}
		endSpan(ctx, span, op, outcomeOf(f))
	}()

	var b batch
	f = func() *failure.Failure[D] {
		g.writer.Lock()
		defer g.writer.Unlock()
		return apply(&b)
	}()

	logger := ctxlog.FromContext(ctx)
	if f != nil {
		logger.Debug("Graph mutation rejected.", "op", op, "graph", g.name, "failure", f.Kind.String(), "reason", f.Message)
		return f
	}
	logger.Debug("Graph mutation committed.", "op", op, "graph", g.name, "notifications", len(b))
	b.mustRun(ctx, "appgraph."+op)
	return nil
}

func outcomeOf[D failure.Domain](f *failure.Failure[D]) string {
	if f == nil {
		return ""
	}
	return f.Kind.String()
}

func vertexAttr[T any](key string, v *Vertex[T]) attribute.KeyValue {
	return attribute.String(key, v.Name())
}
