package interceptor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns an interceptor that emits one span per lifecycle event of
// the node. If inner is non-nil the span covers inner's Init and Release,
// otherwise the value is passed through.
func Tracing(tracer trace.Tracer, inner Interceptor) Interceptor {
	return &tracing{tracer: tracer, inner: inner}
}

type tracing struct {
	tracer trace.Tracer
	inner  Interceptor
}

func (t *tracing) Init(ctx context.Context, value any) (any, error) {
	ctx, span := t.tracer.Start(ctx, "appgraph.node.init",
		trace.WithAttributes(
			attribute.String("node.name", Target(ctx)),
			attribute.String("value.type", fmt.Sprintf("%T", value)),
		),
	)
	defer span.End()

	if t.inner == nil {
		return value, nil
	}
	wrapped, err := t.inner.Init(ctx, value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return wrapped, nil
}

func (t *tracing) Release(ctx context.Context, wrapped any) error {
	ctx, span := t.tracer.Start(ctx, "appgraph.node.release",
		trace.WithAttributes(attribute.String("node.name", Target(ctx))),
	)
	defer span.End()

	if t.inner == nil {
		return nil
	}
	if err := t.inner.Release(ctx, wrapped); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
