package cli

import (
	"io"
	"log/slog"

	"golang.org/x/term"
)

// TerminalDetector reports whether a file descriptor is a terminal
type TerminalDetector interface {
	IsTerminal(fd int) bool
}

// DefaultTerminalDetector uses golang.org/x/term
type DefaultTerminalDetector struct{}

// IsTerminal implements TerminalDetector
func (d *DefaultTerminalDetector) IsTerminal(fd int) bool {
	isTerminal := term.IsTerminal(fd)
	slog.Debug("terminal detection result", "fd", fd, "is_terminal", isTerminal)
	return isTerminal
}

type fdReader interface {
	Fd() uintptr
}

// isInteractiveInput reports whether r is a terminal. Readers without a
// file descriptor (pipes in tests, buffers) are never interactive.
func (c *CLI) isInteractiveInput(r io.Reader) bool {
	f, ok := r.(fdReader)
	if !ok {
		return false
	}
	if c.terminalDetector == nil {
		c.terminalDetector = &DefaultTerminalDetector{}
	}
	return c.terminalDetector.IsTerminal(int(f.Fd()))
}
