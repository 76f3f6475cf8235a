package tracking

import (
	"log/slog"

	"runtimecue.dev/internal/cue"
)

// SlogHook logs every load attempt for debugging
type SlogHook struct {
	logger *slog.Logger
}

// NewSlogHook creates a new SlogHook with the given logger
// If logger is nil, uses the default logger
func NewSlogHook(logger *slog.Logger) *SlogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHook{
		logger: logger,
	}
}

// GetHook returns the cue.LoadHook function
func (s *SlogHook) GetHook() cue.LoadHook {
	return func(event cue.LoadEvent) {
		if event.Err != nil {
			s.logger.Debug("load attempt",
				"path", event.Path,
				"format", event.Format,
				"size_bytes", event.Size,
				"elapsed", event.Elapsed,
				"error", event.Err)
			return
		}
		s.logger.Debug("load attempt",
			"path", event.Path,
			"format", event.Format,
			"size_bytes", event.Size,
			"elapsed", event.Elapsed,
			"passthrough", event.Data.IsPassthrough())
	}
}
