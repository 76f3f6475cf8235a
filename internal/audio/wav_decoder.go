package audio

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"

	"runtimecue.dev/internal/wav"
)

// WavDecoder decodes RIFF/WAVE PCM into canonical 16-bit audio.
type WavDecoder struct {
	parser *wav.Parser
}

// NewWavDecoder creates a WAV decoder. Options are passed to the
// underlying wav.Parser.
func NewWavDecoder(opts ...wav.Option) *WavDecoder {
	parser := wav.NewParser(opts...)
	slog.Debug("creating new WAV decoder instance", "scan_mode", parser.Mode().String())
	return &WavDecoder{parser: parser}
}

// Decode reads WAV audio data from reader and returns 16-bit PCM.
func (d *WavDecoder) Decode(reader io.Reader) (*AudioData, error) {
	slog.Debug("starting WAV decode operation")

	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read WAV data", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}

	decoded, err := d.parser.Decode(data)
	if err != nil {
		slog.Error("WAV decode failed", "size_bytes", len(data), "error", err)
		return nil, fmt.Errorf("decode WAV: %w", err)
	}

	audioData := &AudioData{
		Samples:        decoded.PCM16,
		Channels:       uint32(decoded.NumChannels),
		SampleRate:     decoded.SampleRate,
		Format:         malgo.FormatS16,
		SourceBitDepth: int(decoded.BitsPerSample),
		Duration:       decoded.Duration,
	}

	slog.Info("WAV decode completed successfully",
		"total_bytes", len(audioData.Samples),
		"channels", audioData.Channels,
		"sample_rate", audioData.SampleRate,
		"source_bits", audioData.SourceBitDepth,
		"duration_ms", int(audioData.Duration*1000))

	return audioData, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *WavDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	canDecode := strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".wave")

	slog.Debug("WAV decoder file check",
		"filename", filename,
		"can_decode", canDecode)

	return canDecode
}

// FormatName returns the name of the format this decoder handles
func (d *WavDecoder) FormatName() string {
	return "WAV"
}
