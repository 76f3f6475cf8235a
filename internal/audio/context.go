package audio

import (
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// Context wraps malgo.AllocatedContext with lifecycle management and logging.
type Context struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

// NewContext initializes a new audio context. malgo's own diagnostics are
// forwarded to slog at debug level.
func NewContext() (*Context, error) {
	slog.Debug("initializing audio context")

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo internal", "message", message)
	})
	if err != nil {
		slog.Error("failed to initialize audio context", "error", err)
		return nil, err
	}

	slog.Info("audio context initialized successfully")
	return &Context{ctx: ctx}, nil
}

// Close releases the context. Closing twice is a no-op.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		slog.Debug("audio context already closed")
		return nil
	}

	// malgo requires both Uninit() and Free()
	if err := c.ctx.Uninit(); err != nil {
		slog.Error("failed to uninitialize audio context", "error", err)
		return err
	}
	c.ctx.Free()
	c.ctx = nil

	slog.Info("audio context closed successfully")
	return nil
}

// GetContext returns the underlying malgo context for device operations
func (c *Context) GetContext() *malgo.AllocatedContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// IsValid checks if the context is still valid
func (c *Context) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx != nil
}
