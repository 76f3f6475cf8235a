package config

import (
	"log/slog"
	"os"
	"strconv"
)

// HistoryConfig represents load history configuration
type HistoryConfig struct {
	Enabled      bool   `json:"enabled"`       // Whether loads are recorded
	DatabasePath string `json:"database_path"` // Custom database path (empty = XDG cache path)
}

// GetDefaultHistoryConfig returns the default load history configuration
func GetDefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Enabled:      true,
		DatabasePath: "", // Empty = XDG cache path
	}
}

// ApplyHistoryEnvironmentOverrides applies RUNTIMECUE_HISTORY and
// RUNTIMECUE_HISTORY_DB to a copy of config
func ApplyHistoryEnvironmentOverrides(config *HistoryConfig) *HistoryConfig {
	result := *config

	if historyStr := os.Getenv("RUNTIMECUE_HISTORY"); historyStr != "" {
		if enabled, err := strconv.ParseBool(historyStr); err == nil {
			result.Enabled = enabled
			slog.Debug("applied history override from environment", "value", enabled)
		} else {
			slog.Warn("invalid RUNTIMECUE_HISTORY environment variable", "value", historyStr, "error", err)
		}
	}

	if dbPath := os.Getenv("RUNTIMECUE_HISTORY_DB"); dbPath != "" {
		result.DatabasePath = dbPath
		slog.Debug("applied history database override from environment", "value", dbPath)
	}

	return &result
}
