package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"runtimecue.dev/internal/audio"
	"runtimecue.dev/internal/config"
	"runtimecue.dev/internal/cue"
	"runtimecue.dev/internal/fs"
	"runtimecue.dev/internal/tracking"
	"runtimecue.dev/internal/wav"
)

const Version = "0.4.0"

// BackendFactory creates playback backends, including one for audio that
// stays encoded.
type BackendFactory interface {
	audio.BackendFactory
	cue.PassthroughFactory
}

// CLI represents the command-line interface
type CLI struct {
	rootCmd          *cobra.Command
	fs               afero.Fs
	configManager    *config.ConfigManager
	backendFactory   BackendFactory
	terminalDetector TerminalDetector
	historyDB        *sql.DB // Optional load history database
	audioBackend     audio.AudioBackend
}

type cliContextKey struct{}

// NewCLI creates a new CLI instance
func NewCLI() *CLI {
	rootCmd := &cobra.Command{
		Use:   "runtimecue",
		Short: "Load and play audio files at runtime",
		Long: `runtimecue decodes WAV, AIFF, MP3 and OGG files chosen at runtime and plays
them through a native audio backend. Every load attempt is recorded in a local
history database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			handled, err := handleVersionFlag(cmd)
			if handled || err != nil {
				return err
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("scan-mode", "", "WAV chunk scan mode (linear, chunked)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(newPlayCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newConfigCommand())

	return &CLI{rootCmd: rootCmd}
}

// contextWithCLI stores CLI instance in context for command handlers
func contextWithCLI(cli *CLI) context.Context {
	return context.WithValue(context.Background(), cliContextKey{}, cli)
}

// cliFromContext extracts CLI instance from context
func cliFromContext(ctx context.Context) *CLI {
	if cli, ok := ctx.Value(cliContextKey{}).(*CLI); ok {
		return cli
	}
	return nil
}

// handleVersionFlag checks and handles the version flag
// Returns true if version was handled and processing should stop
func handleVersionFlag(cmd *cobra.Command) (bool, error) {
	version, _ := cmd.Flags().GetBool("version")
	if version {
		cmd.Printf("runtimecue version %s\n", Version)
		return true, nil
	}
	return false, nil
}

// Run executes the command line and returns the process exit code
func (c *CLI) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c.initializeSystems()

	defer func() {
		if c.audioBackend != nil {
			if err := c.audioBackend.Close(); err != nil {
				slog.Error("error closing audio backend", "error", err)
			}
			c.audioBackend = nil
		}
		if c.historyDB != nil {
			if err := c.historyDB.Close(); err != nil {
				slog.Error("error closing history database", "error", err)
			}
			c.historyDB = nil
		}
	}()

	c.rootCmd.SetArgs(args[1:]) // Skip program name
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
	c.rootCmd.SetContext(contextWithCLI(c))

	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		slog.Debug("command failed", "error", err)
		return 1
	}

	return 0
}

// initializeSystems fills in any dependency a test has not injected
func (c *CLI) initializeSystems() {
	if c.fs == nil {
		c.fs = fs.NewDefaultFactory().Production()
	}
	if c.configManager == nil {
		c.configManager = config.NewConfigManagerWithFilesystem(c.fs)
	}
	if c.backendFactory == nil {
		c.backendFactory = audio.NewBackendFactory(nil)
	}
	if c.terminalDetector == nil {
		c.terminalDetector = &DefaultTerminalDetector{}
	}
}

// loadAndValidateConfig loads configuration from flags and files, applies overrides, and validates
func loadAndValidateConfig(cmd *cobra.Command, cli *CLI) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = cli.configManager.LoadFromFile(configFile)
	} else {
		cfg, err = cli.configManager.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	cfg = cli.configManager.ApplyEnvironmentOverrides(cfg)

	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cli.configManager.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyFlagOverrides copies explicitly set flags over cfg. Flags that a
// command does not define are skipped.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if f := flags.Lookup("scan-mode"); f != nil && f.Changed {
		cfg.ScanMode = f.Value.String()
	}
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.LogLevel = f.Value.String()
	}
	if f := flags.Lookup("backend"); f != nil && f.Changed {
		cfg.AudioBackend = f.Value.String()
	}
	if f := flags.Lookup("volume"); f != nil && f.Changed {
		vol, err := strconv.ParseFloat(f.Value.String(), 64)
		if err != nil {
			return fmt.Errorf("invalid volume value '%s': %w", f.Value.String(), err)
		}
		cfg.Volume = vol
	}
	if f := flags.Lookup("silent"); f != nil && f.Changed {
		if silent, _ := flags.GetBool("silent"); silent {
			cfg.Enabled = false
			slog.Debug("silent mode enabled")
		}
	}
	return nil
}

// setupLogging routes slog to stderr at the configured level and, when
// enabled, to a rotating log file at debug level.
func setupLogging(cfg *config.Config, stderrWriter io.Writer, configManager *config.ConfigManager) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderrWriter, &slog.HandlerOptions{Level: level}),
	}

	if cfg.FileLogging != nil && cfg.FileLogging.Enabled {
		logFilePath := configManager.ResolveLogFilePath(cfg.FileLogging.Filename)
		fileWriter := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    cfg.FileLogging.MaxSizeMB,
			MaxBackups: cfg.FileLogging.MaxBackups,
			MaxAge:     cfg.FileLogging.MaxAgeDays,
			Compress:   cfg.FileLogging.Compress,
		}
		handlers = append(handlers, slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	slog.SetDefault(slog.New(NewMultiLevelHandler(handlers...)))

	slog.Debug("logging setup completed",
		"level", level.String(),
		"handlers", len(handlers),
		"file_enabled", cfg.FileLogging != nil && cfg.FileLogging.Enabled)
}

// prepare loads config, sets up logging and opens the history database
func (c *CLI) prepare(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadAndValidateConfig(cmd, c)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, cmd.ErrOrStderr(), c.configManager)
	c.initializeHistory(cfg)
	return cfg, nil
}

// initializeHistory opens the history database. Failures are logged and
// leave history disabled.
func (c *CLI) initializeHistory(cfg *config.Config) {
	if c.historyDB != nil {
		return
	}
	if cfg.History == nil || !cfg.History.Enabled {
		slog.Debug("load history disabled")
		return
	}

	dbPath := cfg.History.DatabasePath
	if dbPath == "" {
		var err error
		dbPath, err = tracking.GetDatabasePath()
		if err != nil {
			slog.Warn("failed to resolve history database path", "error", err)
			return
		}
	}

	db, err := tracking.NewDatabase(dbPath)
	if err != nil {
		slog.Warn("failed to open history database, continuing without history", "path", dbPath, "error", err)
		return
	}
	c.historyDB = db
	slog.Debug("history database opened", "path", dbPath)
}

// newRegistry builds the decoder registry for cfg
func newRegistry(cfg *config.Config) (*audio.DecoderRegistry, error) {
	mode, err := wav.ParseScanMode(cfg.ScanMode)
	if err != nil {
		return nil, err
	}
	return audio.NewDefaultRegistry(wav.WithScanMode(mode), wav.WithLogger(slog.Default())), nil
}

// newPlayer builds a player wired to the history database. A nil backend
// gives a player that only decodes.
func (c *CLI) newPlayer(registry *audio.DecoderRegistry, backend audio.AudioBackend) *cue.Player {
	opts := []cue.Option{
		cue.WithFs(c.fs),
		cue.WithRegistry(registry),
		cue.WithLoadHook(tracking.NewSlogHook(nil).GetHook()),
	}
	if c.historyDB != nil {
		opts = append(opts, cue.WithLoadHook(tracking.NewRecorder(c.historyDB).GetHook()))
	}
	if backend != nil {
		opts = append(opts, cue.WithBackend(backend), cue.WithPassthroughFactory(c.backendFactory))
	}
	return cue.NewPlayer(opts...)
}

// startBackend creates, starts and sets the volume of the configured backend
func (c *CLI) startBackend(cfg *config.Config) (audio.AudioBackend, error) {
	if cfg.AudioBackend == "" || cfg.AudioBackend == audio.BackendAuto {
		slog.Debug("auto-selecting audio backend",
			"detected", audio.DetectOptimalBackend(),
			"system_command", audio.PreferredSystemCommand())
	}

	backend, err := c.backendFactory.CreateBackend(cfg.AudioBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio backend '%s': %w", cfg.AudioBackend, err)
	}
	c.audioBackend = backend

	if err := backend.Start(); err != nil {
		return nil, fmt.Errorf("failed to start audio backend: %w", err)
	}
	if err := backend.SetVolume(float32(cfg.Volume)); err != nil {
		return nil, fmt.Errorf("failed to set volume on backend: %w", err)
	}

	slog.Debug("audio backend initialized",
		"backend_type", fmt.Sprintf("%T", backend),
		"volume", cfg.Volume)
	return backend, nil
}

// resolveInputPath returns path if it exists, otherwise the match for a
// relative name in the XDG sound directories, otherwise path unchanged.
func (c *CLI) resolveInputPath(path string) string {
	if _, err := c.fs.Stat(path); err == nil {
		return path
	}
	if filepath.Ext(path) == "" {
		resolver := audio.NewFileResolver(c.fs, audio.DefaultExtensions)
		if resolved, err := resolver.ResolveWithExtensions(path); err == nil {
			return resolved
		}
	}
	if !filepath.IsAbs(path) {
		if found := c.configManager.XDG().FindSoundFile(path); found != "" {
			return found
		}
	}
	return path
}

var errNoInput = errors.New("no file given and no default_file configured")
