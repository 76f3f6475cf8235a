package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"runtimecue.dev/internal/audio"
	"runtimecue.dev/internal/wav"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`      // Whether file logging is enabled
	Filename   string `json:"filename"`     // Log file path (empty = XDG cache path)
	MaxSizeMB  int    `json:"max_size_mb"`  // Max file size in MB before rotation
	MaxBackups int    `json:"max_backups"`  // Max number of backup files to keep
	MaxAgeDays int    `json:"max_age_days"` // Max age in days before deletion
	Compress   bool   `json:"compress"`     // Whether to compress rotated files
}

// Config represents runtimecue configuration
type Config struct {
	Volume       float64            `json:"volume"`                 // Audio volume (0.0 to 1.0)
	Enabled      bool               `json:"enabled"`                // Whether playback is enabled
	LogLevel     string             `json:"log_level"`              // Log level (debug, info, warn, error)
	AudioBackend string             `json:"audio_backend"`          // Audio backend (auto, malgo, oto, system_command)
	ScanMode     string             `json:"scan_mode"`              // WAV chunk scan (linear, chunked)
	DefaultFile  string             `json:"default_file"`           // Played when no file is given
	FileLogging  *FileLoggingConfig `json:"file_logging,omitempty"` // File logging configuration
	History      *HistoryConfig     `json:"history,omitempty"`      // Load history configuration
}

// XDGInterface defines the interface for XDG directory operations
type XDGInterface interface {
	GetConfigPaths(filename string) []string
	GetCachePath(purpose string) string
	FindSoundFile(relativePath string) string
}

// ConfigManager handles loading, saving, and validating configuration
type ConfigManager struct {
	xdg XDGInterface
	fs  afero.Fs
}

// NewConfigManager creates a configuration manager on the OS filesystem
func NewConfigManager() *ConfigManager {
	return NewConfigManagerWithFilesystem(afero.NewOsFs())
}

// NewConfigManagerWithFilesystem creates a configuration manager reading from fs
func NewConfigManagerWithFilesystem(fs afero.Fs) *ConfigManager {
	return NewConfigManagerWithDependencies(fs, NewXDGDirsWithFilesystem(fs))
}

// NewConfigManagerWithDependencies creates a configuration manager with injected dependencies for testing
func NewConfigManagerWithDependencies(fs afero.Fs, xdg XDGInterface) *ConfigManager {
	slog.Debug("creating new config manager")
	return &ConfigManager{
		xdg: xdg,
		fs:  fs,
	}
}

// XDG returns the directory helper used by the manager.
func (cm *ConfigManager) XDG() XDGInterface {
	return cm.xdg
}

// GetDefaultConfig returns the default configuration
func (cm *ConfigManager) GetDefaultConfig() *Config {
	defaultConfig := &Config{
		Volume:       0.5,
		Enabled:      true,
		LogLevel:     "warn",
		AudioBackend: audio.BackendAuto,
		ScanMode:     wav.ScanLinear.String(),
		FileLogging: &FileLoggingConfig{
			Enabled:    false,
			Filename:   "", // Empty = XDG cache path
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		History: GetDefaultHistoryConfig(),
	}

	slog.Debug("generated default config",
		"volume", defaultConfig.Volume,
		"enabled", defaultConfig.Enabled,
		"log_level", defaultConfig.LogLevel,
		"audio_backend", defaultConfig.AudioBackend,
		"scan_mode", defaultConfig.ScanMode)

	return defaultConfig
}

// LoadFromFile loads configuration from a specific file. Fields missing
// from the file keep their default values.
func (cm *ConfigManager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := afero.ReadFile(cm.fs, filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := cm.GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cm.ValidateConfig(config); err != nil {
		return nil, err
	}

	slog.Debug("config loaded successfully",
		"file_path", filePath,
		"volume", config.Volume,
		"enabled", config.Enabled,
		"default_file", config.DefaultFile)

	return config, nil
}

// SaveToFile saves configuration to a specific file
func (cm *ConfigManager) SaveToFile(config *Config, filePath string) error {
	slog.Debug("saving config to file", "file_path", filePath)

	if err := cm.ValidateConfig(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(filePath)
	if err := cm.fs.MkdirAll(dir, 0755); err != nil {
		slog.Error("failed to create config directory", "directory", dir, "error", err)
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(cm.fs, filePath, data, 0644); err != nil {
		slog.Error("failed to write config file", "file_path", filePath, "error", err)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved successfully", "file_path", filePath)
	return nil
}

// ErrConfigExists is returned by InitConfigFile when the target exists and
// overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// UserConfigPath returns the highest-priority config.json location
func (cm *ConfigManager) UserConfigPath() string {
	return cm.xdg.GetConfigPaths("config.json")[0]
}

// InitConfigFile writes the default configuration to filePath. On the OS
// filesystem the write holds an exclusive lock on filePath+".lock".
func (cm *ConfigManager) InitConfigFile(filePath string, overwrite bool) error {
	if err := cm.fs.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, isOS := cm.fs.(*afero.OsFs); isOS {
		lock, err := AcquireFileLock(filePath+".lock", DefaultLockTimeout)
		if err != nil {
			return err
		}
		defer lock.Unlock()
	}

	if _, err := cm.fs.Stat(filePath); err == nil && !overwrite {
		return fmt.Errorf("%w: %s", ErrConfigExists, filePath)
	}

	return cm.SaveToFile(cm.GetDefaultConfig(), filePath)
}

// LoadConfig loads configuration using XDG path discovery
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	configPaths := cm.xdg.GetConfigPaths("config.json")

	slog.Debug("searching for config file", "paths", configPaths)

	for i, configPath := range configPaths {
		if _, err := cm.fs.Stat(configPath); err == nil {
			slog.Debug("found config file", "path_index", i, "path", configPath)
			return cm.LoadFromFile(configPath)
		}
	}

	slog.Debug("no config file found, using defaults")
	return cm.GetDefaultConfig(), nil
}

// ValidateConfig reports every invalid field in a single error
func (cm *ConfigManager) ValidateConfig(config *Config) error {
	var errs []error

	if config.Volume < 0.0 || config.Volume > 1.0 {
		errs = append(errs, fmt.Errorf("volume must be between 0.0 and 1.0, got %f", config.Volume))
	}

	if config.LogLevel != "" {
		if _, err := ParseLogLevel(config.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}

	if !cm.IsValidAudioBackend(config.AudioBackend) {
		errs = append(errs, fmt.Errorf("invalid audio backend '%s', must be one of: %s",
			config.AudioBackend, strings.Join(cm.GetSupportedAudioBackends(), ", ")))
	}

	if config.ScanMode != "" {
		if _, err := wav.ParseScanMode(config.ScanMode); err != nil {
			errs = append(errs, err)
		}
	}

	if fileLogging := config.FileLogging; fileLogging != nil {
		if fileLogging.MaxSizeMB < 0 {
			errs = append(errs, fmt.Errorf("file logging max_size_mb must be >= 0, got %d", fileLogging.MaxSizeMB))
		}
		if fileLogging.MaxBackups < 0 {
			errs = append(errs, fmt.Errorf("file logging max_backups must be >= 0, got %d", fileLogging.MaxBackups))
		}
		if fileLogging.MaxAgeDays < 0 {
			errs = append(errs, fmt.Errorf("file logging max_age_days must be >= 0, got %d", fileLogging.MaxAgeDays))
		}
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
		slog.Error("config validation failed", "error", err)
		return err
	}

	slog.Debug("config validation passed")
	return nil
}

// ApplyEnvironmentOverrides applies RUNTIMECUE_* environment variables to
// a copy of config. Invalid values are logged and ignored.
func (cm *ConfigManager) ApplyEnvironmentOverrides(config *Config) *Config {
	slog.Debug("applying environment variable overrides")

	result := *config

	if volStr := os.Getenv("RUNTIMECUE_VOLUME"); volStr != "" {
		if vol, err := strconv.ParseFloat(volStr, 64); err == nil && vol >= 0 && vol <= 1 {
			result.Volume = vol
			slog.Debug("applied volume override from environment", "value", vol)
		} else {
			slog.Warn("invalid RUNTIMECUE_VOLUME environment variable", "value", volStr, "error", err)
		}
	}

	if enabledStr := os.Getenv("RUNTIMECUE_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			result.Enabled = enabled
			slog.Debug("applied enabled override from environment", "value", enabled)
		} else {
			slog.Warn("invalid RUNTIMECUE_ENABLED environment variable", "value", enabledStr, "error", err)
		}
	}

	if logLevel := os.Getenv("RUNTIMECUE_LOG_LEVEL"); logLevel != "" {
		if _, err := ParseLogLevel(logLevel); err == nil {
			result.LogLevel = logLevel
			slog.Debug("applied log level override from environment", "value", logLevel)
		} else {
			slog.Warn("invalid RUNTIMECUE_LOG_LEVEL environment variable", "value", logLevel)
		}
	}

	if audioBackend := os.Getenv("RUNTIMECUE_AUDIO_BACKEND"); audioBackend != "" {
		if cm.IsValidAudioBackend(audioBackend) {
			result.AudioBackend = audioBackend
			slog.Debug("applied audio backend override from environment", "value", audioBackend)
		} else {
			slog.Warn("invalid RUNTIMECUE_AUDIO_BACKEND environment variable", "value", audioBackend)
		}
	}

	if scanMode := os.Getenv("RUNTIMECUE_SCAN_MODE"); scanMode != "" {
		if _, err := wav.ParseScanMode(scanMode); err == nil {
			result.ScanMode = scanMode
			slog.Debug("applied scan mode override from environment", "value", scanMode)
		} else {
			slog.Warn("invalid RUNTIMECUE_SCAN_MODE environment variable", "value", scanMode)
		}
	}

	if defaultFile := os.Getenv("RUNTIMECUE_DEFAULT_FILE"); defaultFile != "" {
		result.DefaultFile = defaultFile
		slog.Debug("applied default file override from environment", "value", defaultFile)
	}

	history := config.History
	if history == nil {
		history = GetDefaultHistoryConfig()
	}
	result.History = ApplyHistoryEnvironmentOverrides(history)

	slog.Debug("environment overrides applied")
	return &result
}

// ParseLogLevel converts a config log level to a slog.Level
func ParseLogLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", logLevel)
	}
}

// ResolveLogFilePath resolves the log file path using XDG cache directory when filename is empty
func (cm *ConfigManager) ResolveLogFilePath(filename string) string {
	if filename != "" {
		return filename
	}
	return filepath.Join(cm.xdg.GetCachePath("logs"), "runtimecue.log")
}

// GetSupportedAudioBackends returns a list of all supported audio backend types
func (cm *ConfigManager) GetSupportedAudioBackends() []string {
	return audio.NewBackendFactory(nil).GetSupportedBackends()
}

// IsValidAudioBackend checks if an audio backend type is supported
func (cm *ConfigManager) IsValidAudioBackend(backend string) bool {
	// Empty string is valid (defaults to auto)
	if backend == "" {
		return true
	}
	return audio.NewBackendFactory(nil).IsValidBackendType(backend)
}
