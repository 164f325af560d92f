// File: internal/plugin/hooks.go
package plugin

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Hooks defines callbacks run around every statement a session sends.
// BeforeQuery may return a derived context; AfterQuery receives it.
type Hooks interface {
	BeforeQuery(ctx context.Context, op, query string, args []any) context.Context
	AfterQuery(ctx context.Context, op, query string, err error)
}

// Chain runs hooks in order before a query and in reverse order after it.
type Chain []Hooks

func (c Chain) BeforeQuery(ctx context.Context, op, query string, args []any) context.Context {
	for _, h := range c {
		ctx = h.BeforeQuery(ctx, op, query, args)
	}
	return ctx
}

func (c Chain) AfterQuery(ctx context.Context, op, query string, err error) {
	for i := len(c) - 1; i >= 0; i-- {
		c[i].AfterQuery(ctx, op, query, err)
	}
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

type startKey struct{}

// LogHooks logs each statement with its duration and outcome.
type LogHooks struct {
	Logger Logger
}

func (h LogHooks) BeforeQuery(ctx context.Context, op, query string, args []any) context.Context {
	return context.WithValue(ctx, startKey{}, time.Now())
}

func (h LogHooks) AfterQuery(ctx context.Context, op, query string, err error) {
	var elapsed time.Duration
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}
	if err != nil {
		h.Logger.Printf("%s failed after %s: %s: %v", op, elapsed, query, err)
		return
	}
	h.Logger.Printf("%s %s: %s", op, elapsed, query)
}

const tracerName = "github.com/TechXTT/sqlsrv"

// TraceHooks opens one span per statement on the global tracer provider.
type TraceHooks struct {
	// System is reported as db.system, e.g. "mssql".
	System string
}

func (h TraceHooks) BeforeQuery(ctx context.Context, op, query string, args []any) context.Context {
	ctx, _ = otel.Tracer(tracerName).Start(ctx, "sqlsrv."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", h.System),
			attribute.String("db.statement", query),
			attribute.Int("db.args", len(args)),
		),
	)
	return ctx
}

func (h TraceHooks) AfterQuery(ctx context.Context, op, query string, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
