package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey string

const slogFields ctxKey = "slog_fields"

// AppendCtx returns a context carrying the given attrs in addition to any
// attrs already stored by previous AppendCtx calls.
func AppendCtx(parent context.Context, attrs ...slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if existing, ok := parent.Value(slogFields).([]slog.Attr); ok {
		merged := make([]slog.Attr, 0, len(existing)+len(attrs))
		merged = append(merged, existing...)
		merged = append(merged, attrs...)
		return context.WithValue(parent, slogFields, merged)
	}

	return context.WithValue(parent, slogFields, attrs)
}

// ContextHandler is a slog.Handler wrapper that adds attrs stored in the
// record's context by AppendCtx.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		for _, attr := range attrs {
			r.AddAttrs(attr)
		}
	}

	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}
