package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"runtimecue.dev/internal/audio"
)

const stdinArg = "-"

// newPlayCommand creates the play subcommand
func newPlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [file|-]",
		Short: "Load and play an audio file",
		Long: `Load an audio file and play it through the configured backend.

With no argument the configured default_file is played. "-" reads the file
from stdin. Relative names that do not exist are looked up in the XDG sound
directories, with or without an extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlayCommand,
	}

	cmd.Flags().Float64("volume", 0, "Override volume (0.0 to 1.0)")
	cmd.Flags().String("backend", "", "Audio backend (auto, malgo, oto, system_command)")
	cmd.Flags().Bool("silent", false, "Decode without playing")

	return cmd
}

func runPlayCommand(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cfg, err := cli.prepare(cmd)
	if err != nil {
		return err
	}

	target := cfg.DefaultFile
	if len(args) == 1 {
		target = args[0]
	}
	if target == "" {
		return errNoInput
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	if target == stdinArg && cli.isInteractiveInput(cmd.InOrStdin()) {
		return errors.New("refusing to read audio from an interactive terminal")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend audio.AudioBackend
	var backendErr error
	if cfg.Enabled {
		backend, backendErr = cli.startBackend(cfg)
		if backendErr != nil {
			// Still decode so the load is validated and recorded.
			slog.Error("audio backend unavailable", "error", backendErr)
			backend = nil
		}
	} else {
		slog.Info("playback disabled, decoding only")
	}
	player := cli.newPlayer(registry, backend)
	verb := "played"
	if backend == nil {
		verb = "decoded"
	}

	if target == stdinArg {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		data, err := player.PlayBytes(ctx, "stdin", content)
		if err != nil {
			return fmt.Errorf("failed to play stdin: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s stdin (%s)\n", verb, describeData(data))
		return backendErr
	}

	path := cli.resolveInputPath(target)
	data, err := player.PlayFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to play %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, path, describeData(data))
	return backendErr
}
