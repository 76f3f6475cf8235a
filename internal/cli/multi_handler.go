package cli

import (
	"context"
	"errors"
	"log/slog"
)

// MultiLevelHandler fans records out to several handlers, each keeping its
// own level. stderr can stay at warn while the rotating log file gets debug.
type MultiLevelHandler struct {
	handlers []slog.Handler
}

// NewMultiLevelHandler combines handlers. Nil handlers are dropped.
func NewMultiLevelHandler(handlers ...slog.Handler) *MultiLevelHandler {
	kept := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			kept = append(kept, h)
		}
	}
	return &MultiLevelHandler{handlers: kept}
}

// Enabled is true if any wrapped handler accepts level.
func (h *MultiLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes a clone of record to every handler that accepts it. A
// failing handler does not stop the others; all errors are returned joined.
func (h *MultiLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &MultiLevelHandler{handlers: handlers}
}

func (h *MultiLevelHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &MultiLevelHandler{handlers: handlers}
}
