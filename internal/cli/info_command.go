package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"runtimecue.dev/internal/audio"
)

// fileInfo is the --json shape of one info result
type fileInfo struct {
	Path        string  `json:"path"`
	Channels    uint32  `json:"channels,omitempty"`
	SampleRate  uint32  `json:"sample_rate,omitempty"`
	SourceBits  int     `json:"source_bits,omitempty"`
	Duration    float32 `json:"duration_seconds"`
	PCMBytes    int     `json:"pcm_bytes"`
	Passthrough bool    `json:"passthrough"`
	Codec       string  `json:"codec,omitempty"`
	Title       string  `json:"title,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// newInfoCommand creates the info subcommand
func newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>...",
		Short: "Decode files and print their format",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInfoCommand,
	}
	cmd.Flags().Bool("json", false, "Print results as JSON lines")
	return cmd
}

func runInfoCommand(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cfg, err := cli.prepare(cmd)
	if err != nil {
		return err
	}
	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	loader := cli.newPlayer(registry, nil).Loader()
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	var failed []string
	for _, arg := range args {
		path := cli.resolveInputPath(arg)
		info := fileInfo{Path: path}

		sound, err := loader.Load(path)
		if err != nil {
			info.Error = err.Error()
			failed = append(failed, filepath.Base(arg))
		} else {
			fillInfo(&info, sound.Data())
			sound.Release()
		}

		if asJSON {
			if err := json.NewEncoder(out).Encode(info); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			continue
		}
		printInfo(out, info)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed to load: %s", len(failed), len(args), strings.Join(failed, ", "))
	}
	return nil
}

func fillInfo(info *fileInfo, data *audio.AudioData) {
	info.Channels = data.Channels
	info.SampleRate = data.SampleRate
	info.SourceBits = data.SourceBitDepth
	info.Duration = data.Duration
	info.PCMBytes = len(data.Samples)
	info.Passthrough = data.IsPassthrough()
	info.Codec = data.Codec
	info.Title = data.Title
}

func printInfo(w io.Writer, info fileInfo) {
	if info.Error != "" {
		fmt.Fprintf(w, "%s: error: %s\n", info.Path, info.Error)
		return
	}
	fmt.Fprintf(w, "%s:\n", info.Path)
	if info.Passthrough {
		fmt.Fprintf(w, "  codec:       %s (played undecoded)\n", info.Codec)
		if info.Title != "" {
			fmt.Fprintf(w, "  title:       %s\n", info.Title)
		}
	} else {
		fmt.Fprintf(w, "  channels:    %d\n", info.Channels)
		fmt.Fprintf(w, "  sample rate: %d Hz\n", info.SampleRate)
		fmt.Fprintf(w, "  bit depth:   %d (stored as 16)\n", info.SourceBits)
		fmt.Fprintf(w, "  pcm bytes:   %d\n", info.PCMBytes)
	}
	if info.Duration > 0 {
		fmt.Fprintf(w, "  duration:    %s\n", secondsToDuration(info.Duration))
	}
}

// describeData is the one-line summary printed after playback
func describeData(data *audio.AudioData) string {
	if data.IsPassthrough() {
		return fmt.Sprintf("%s passthrough, %d bytes", data.Codec, len(data.Encoded))
	}
	return fmt.Sprintf("%d ch, %d Hz, %s", data.Channels, data.SampleRate, secondsToDuration(data.Duration))
}

func secondsToDuration(seconds float32) time.Duration {
	return time.Duration(float64(seconds) * float64(time.Second)).Round(time.Millisecond)
}
