package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"
)

// Factory provides filesystem instances for production and testing
type Factory interface {
	// Production returns a filesystem that operates on the real OS filesystem
	Production() afero.Fs
	// Memory returns an in-memory filesystem for testing
	Memory() afero.Fs
}

// DefaultFactory provides the standard filesystem factory implementation
type DefaultFactory struct{}

// NewDefaultFactory creates a new filesystem factory
func NewDefaultFactory() Factory {
	return &DefaultFactory{}
}

// Production returns a filesystem that operates on the real OS filesystem
func (f *DefaultFactory) Production() afero.Fs {
	return afero.NewOsFs()
}

// Memory returns an in-memory filesystem for testing
func (f *DefaultFactory) Memory() afero.Fs {
	return afero.NewMemMapFs()
}

// Loader errors
var (
	ErrEmptyPath   = errors.New("audio file path is empty")
	ErrNotFound    = errors.New("audio file not found")
	ErrIsDirectory = errors.New("audio file path is a directory")
)

// ReadAudioFile returns the full contents of the file at path. The path is
// checked before anything is read so callers can reject bad input without
// touching their own state.
func ReadAudioFile(afs afero.Fs, path string) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	info, err := afs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("audio file not found", "path", path)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	data, err := afero.ReadFile(afs, path)
	if err != nil {
		slog.Error("failed to read audio file", "path", path, "error", err)
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	slog.Debug("audio file loaded", "path", path, "size_bytes", len(data))
	return data, nil
}
