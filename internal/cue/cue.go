package cue

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"runtimecue.dev/internal/fs"
)

// ErrNotLoaded is returned when playing a cue with no sound.
var ErrNotLoaded = errors.New("no sound loaded")

// SoundCue holds the most recently loaded sound for a file chosen at
// runtime.
type SoundCue struct {
	mu     sync.Mutex
	loader *Loader
	sound  *Sound
	path   string
}

// NewSoundCue creates an empty cue that loads through loader.
func NewSoundCue(loader *Loader) *SoundCue {
	return &SoundCue{loader: loader}
}

// LoadFile replaces the cue's sound with the decoded contents of path.
// An empty path, a missing file or a directory leaves the cue untouched.
// Once the file is known to exist the cue is cleared first, so a read or
// decode failure leaves it empty.
func (c *SoundCue) LoadFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	content, err := c.loader.read(path, start)
	if err != nil {
		if isRejectedPath(err) {
			slog.Warn("cue load rejected", "path", path, "error", err)
			return err
		}
		c.clearLocked()
		slog.Warn("cue read failed, cue cleared", "path", path, "error", err)
		return err
	}

	c.clearLocked()

	sound, err := c.loader.decode(path, content, start)
	if err != nil {
		slog.Warn("cue load failed, cue cleared", "path", path, "error", err)
		return err
	}
	c.sound = sound
	c.path = path
	return nil
}

func isRejectedPath(err error) bool {
	return errors.Is(err, fs.ErrEmptyPath) || errors.Is(err, fs.ErrNotFound) || errors.Is(err, fs.ErrIsDirectory)
}

// Import is an alias for LoadFile.
func (c *SoundCue) Import(path string) error {
	return c.LoadFile(path)
}

// Clear releases the loaded sound, if any.
func (c *SoundCue) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *SoundCue) clearLocked() {
	if c.sound != nil {
		slog.Debug("clearing cue", "path", c.path)
		c.sound.Release()
	}
	c.sound = nil
	c.path = ""
}

// IsLoaded reports whether the cue holds a sound.
func (c *SoundCue) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sound != nil
}

// LoadedPath returns the path of the loaded sound, or "".
func (c *SoundCue) LoadedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Sound returns the loaded sound with an extra reference that the caller
// must Release, or nil when the cue is empty.
func (c *SoundCue) Sound() *Sound {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sound == nil || !c.sound.Retain() {
		return nil
	}
	return c.sound
}
