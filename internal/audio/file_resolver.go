package audio

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultExtensions is the lookup order for cue names given without an
// extension.
var DefaultExtensions = []string{".wav", ".aiff", ".aif", ".ogg", ".mp3"}

// FileResolver finds sound files whose extension was omitted.
type FileResolver struct {
	fs                  afero.Fs
	supportedExtensions []string
}

// NewFileResolver creates a FileResolver over fs trying extensions in order.
func NewFileResolver(fs afero.Fs, extensions []string) *FileResolver {
	slog.Debug("creating file resolver",
		"extensions", extensions,
		"extension_count", len(extensions))

	return &FileResolver{
		fs:                  fs,
		supportedExtensions: extensions,
	}
}

// Resolve returns path unchanged when it exists. Otherwise, if path has no
// extension, each supported extension is tried in order.
func (f *FileResolver) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("base path cannot be empty")
	}

	if info, err := f.fs.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}
	if filepath.Ext(path) != "" {
		return path, nil
	}
	return f.ResolveWithExtensions(path)
}

// ResolveWithExtensions returns the first basePath+ext that exists.
func (f *FileResolver) ResolveWithExtensions(basePath string) (string, error) {
	if basePath == "" {
		err := fmt.Errorf("base path cannot be empty")
		slog.Error("file resolution failed", "error", err)
		return "", err
	}

	for i, ext := range f.supportedExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		candidate := basePath + ext

		info, err := f.fs.Stat(candidate)
		if err != nil || info.IsDir() {
			slog.Debug("candidate not found", "candidate", candidate, "error", err)
			continue
		}

		slog.Info("file resolved successfully",
			"base_path", basePath,
			"resolved_path", candidate,
			"extension_index", i)
		return candidate, nil
	}

	err := fmt.Errorf("no file found for base path %s with extensions %v",
		basePath, f.supportedExtensions)
	slog.Warn("file resolution failed",
		"base_path", basePath,
		"extensions_tried", f.supportedExtensions,
		"error", err)
	return "", err
}

// GetSupportedExtensions returns the list of supported extensions in priority order
func (f *FileResolver) GetSupportedExtensions() []string {
	return f.supportedExtensions
}
