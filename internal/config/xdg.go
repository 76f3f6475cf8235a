package config

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"runtimecue.dev/internal/audio"
)

const appDir = "runtimecue"

// XDGDirs provides XDG Base Directory compliant paths for runtimecue
type XDGDirs struct {
	fs afero.Fs
}

// NewXDGDirs creates a new XDG directory manager on the OS filesystem
func NewXDGDirs() *XDGDirs {
	return NewXDGDirsWithFilesystem(afero.NewOsFs())
}

// NewXDGDirsWithFilesystem creates an XDG directory manager that checks
// for files on fs
func NewXDGDirsWithFilesystem(fs afero.Fs) *XDGDirs {
	return &XDGDirs{fs: fs}
}

// GetSoundPaths returns the directories searched for sound files by
// relative name: user data dir, then system data dirs
func (x *XDGDirs) GetSoundPaths() []string {
	baseDir := filepath.Join(appDir, "sounds")

	paths := []string{filepath.Join(xdg.DataHome, baseDir)}
	for _, dataDir := range xdg.DataDirs {
		paths = append(paths, filepath.Join(dataDir, baseDir))
	}

	slog.Debug("generated sound paths", "total_paths", len(paths), "user_path", paths[0])
	return paths
}

// GetCachePath returns the cache directory path for a specific purpose
func (x *XDGDirs) GetCachePath(purpose string) string {
	baseDir := appDir
	if purpose != "" {
		baseDir = filepath.Join(baseDir, purpose)
	}
	return filepath.Join(xdg.CacheHome, baseDir)
}

// GetConfigPaths returns prioritized paths where config files can be found
// Returns paths in search order: user config dir, then system config dirs
func (x *XDGDirs) GetConfigPaths(filename string) []string {
	var paths []string

	userConfigPath := filepath.Join(xdg.ConfigHome, appDir)
	if filename != "" {
		userConfigPath = filepath.Join(userConfigPath, filename)
	}
	paths = append(paths, userConfigPath)

	for _, configDir := range xdg.ConfigDirs {
		systemConfigPath := filepath.Join(configDir, appDir)
		if filename != "" {
			systemConfigPath = filepath.Join(systemConfigPath, filename)
		}
		paths = append(paths, systemConfigPath)
	}

	slog.Debug("generated config paths",
		"filename", filename,
		"total_paths", len(paths),
		"user_path", userConfigPath)

	return paths
}

// FindSoundFile searches the sound directories for relativePath, trying
// the supported extensions when it has none. It returns the full path of
// the first match, or "".
func (x *XDGDirs) FindSoundFile(relativePath string) string {
	relativePath = sanitizePath(relativePath)
	if relativePath == "" {
		return ""
	}

	resolver := audio.NewFileResolver(x.fs, audio.DefaultExtensions)
	for i, basePath := range x.GetSoundPaths() {
		candidate := filepath.Join(basePath, relativePath)

		resolved, err := resolver.Resolve(candidate)
		if err != nil {
			continue
		}
		if info, err := x.fs.Stat(resolved); err == nil && !info.IsDir() {
			slog.Info("sound file found",
				"relative_path", relativePath,
				"full_path", resolved,
				"path_index", i)
			return resolved
		}
	}

	slog.Debug("sound file not found in any path", "relative_path", relativePath)
	return ""
}

// sanitizePath removes dangerous path components and normalizes the path
func sanitizePath(path string) string {
	// Remove null bytes and control characters
	path = strings.ReplaceAll(path, "\x00", "")
	path = strings.ReplaceAll(path, "\n", "")
	path = strings.ReplaceAll(path, "\r", "")
	if path == "" {
		return ""
	}

	path = filepath.Clean(path)

	// Only relative paths inside the search directory are allowed
	if filepath.IsAbs(path) || path == ".." || strings.HasPrefix(path, "../") || strings.Contains(path, "/../") {
		slog.Warn("rejecting potentially dangerous path", "path", path)
		return ""
	}

	return path
}
