package security

import (
	"context"
	"log/slog"
)

// RedactingHandler is the root slog.Handler of the bot. It rewrites the
// message and every attribute through a Redactor, and hides any string
// attribute whose key names a secret (token, webhook_secret, basic_pass)
// whatever its value. HTTP client errors carry the full method URL, so
// this is what keeps the bot token out of the logs.
type RedactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

var _ slog.Handler = (*RedactingHandler)(nil)

// NewRedactingHandler wraps next.
func NewRedactingHandler(next slog.Handler, redactor *Redactor) *RedactingHandler {
	return &RedactingHandler{next: next, redactor: redactor}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.Redact(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.scrub(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		scrubbed = append(scrubbed, h.scrub(a))
	}
	return NewRedactingHandler(h.next.WithAttrs(scrubbed), h.redactor)
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return NewRedactingHandler(h.next.WithGroup(name), h.redactor)
}

// scrub returns a with secrets removed. LogValuers are resolved first.
func (h *RedactingHandler) scrub(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s != "" && secretKeyPattern.MatchString(a.Key) {
			return slog.String(a.Key, RedactPlaceholder)
		}
		return slog.String(a.Key, h.redactor.Redact(s))
	case slog.KindGroup:
		group := v.Group()
		scrubbed := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			scrubbed = append(scrubbed, h.scrub(ga))
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbed...)}
	case slog.KindAny:
		// Errors and Stringers keep their type unless something matched.
		s := v.String()
		if r := h.redactor.Redact(s); r != s {
			return slog.String(a.Key, r)
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}
