package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/crm/pkg/correlationid"
)

const (
	CorrelationIDKey = "correlation_id"
	TraceIDKey       = "trace_id"
	SpanIDKey        = "span_id"
)

type attrsCtxKey struct{}

// ContextWithAttrs returns a copy of ctx whose log records carry attrs, on top
// of the attrs already stored in ctx. It lets a caller tag every record written
// below it, e.g. the scheduler tags records with the running job.
func ContextWithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(attrsCtxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsCtxKey{}, merged)
}

var _ slog.Handler = (*contextHandler)(nil)

// contextHandler adds the correlation ID, the active span and the attrs set
// with ContextWithAttrs to each record.
type contextHandler struct {
	next slog.Handler
}

func newContextHandler(next slog.Handler) contextHandler {
	return contextHandler{next: next}
}

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(attrsCtxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	if id, ok := correlationid.FromContext(ctx); ok {
		r.AddAttrs(slog.String(CorrelationIDKey, id))
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String(TraceIDKey, spanCtx.TraceID().String()),
			slog.String(SpanIDKey, spanCtx.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newContextHandler(h.next.WithAttrs(attrs))
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return newContextHandler(h.next.WithGroup(name))
}
