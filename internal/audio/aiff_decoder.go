package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"

	"runtimecue.dev/internal/wav"
)

// AiffDecoder handles AIFF audio format decoding. Output goes through the
// same 16-bit normalization as WAV.
type AiffDecoder struct{}

// NewAiffDecoder creates a new AIFF decoder instance
func NewAiffDecoder() *AiffDecoder {
	slog.Debug("creating new AIFF decoder instance")
	return &AiffDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *AiffDecoder) FormatName() string {
	return "AIFF"
}

// CanDecode checks if this decoder can handle the given filename
func (d *AiffDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	canDecode := strings.HasSuffix(lower, ".aiff") || strings.HasSuffix(lower, ".aif")

	slog.Debug("AIFF decoder file check",
		"filename", filename,
		"can_decode", canDecode)

	return canDecode
}

// Decode reads AIFF audio data from reader and returns 16-bit PCM.
func (d *AiffDecoder) Decode(reader io.Reader) (*AudioData, error) {
	slog.Debug("starting AIFF decode operation")

	// go-audio/aiff needs a ReadSeeker
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read AIFF data", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	if len(data) == 0 {
		slog.Error("empty AIFF data")
		return nil, ErrInvalidData
	}

	decoder := aiff.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		slog.Error("invalid AIFF file format")
		return nil, ErrInvalidData
	}

	sampleRate := uint32(decoder.SampleRate)
	channels := uint16(decoder.NumChans)
	bitDepth := uint16(decoder.SampleBitDepth())

	slog.Debug("AIFF format detected",
		"sample_rate", sampleRate,
		"channels", channels,
		"bits_per_sample", bitDepth)

	pcmBuffer, err := decoder.FullPCMBuffer()
	if err != nil {
		slog.Error("failed to read AIFF samples", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}

	native := packLittleEndian(pcmBuffer, int(bitDepth))
	pcm16, err := wav.To16Bit(native, bitDepth)
	if err != nil {
		slog.Error("unsupported AIFF bit depth", "bits", bitDepth, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	duration, err := wav.DurationSeconds(len(pcm16), sampleRate, channels)
	if err != nil {
		slog.Error("invalid AIFF format parameters",
			"channels", channels,
			"sample_rate", sampleRate,
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	audioData := &AudioData{
		Samples:        pcm16,
		Channels:       uint32(channels),
		SampleRate:     sampleRate,
		Format:         malgo.FormatS16,
		SourceBitDepth: int(bitDepth),
		Duration:       duration,
	}

	slog.Info("AIFF decode completed successfully",
		"total_bytes", len(pcm16),
		"channels", audioData.Channels,
		"sample_rate", audioData.SampleRate,
		"source_bits", bitDepth,
		"duration_ms", int(duration*1000))

	return audioData, nil
}

// packLittleEndian lays out integer samples as little-endian bytes at the
// given bit depth. Depths that are not a whole number of bytes yield nil.
func packLittleEndian(buf *audio.IntBuffer, bitDepth int) []byte {
	if buf == nil || bitDepth <= 0 || bitDepth%8 != 0 {
		return nil
	}
	width := bitDepth / 8
	out := make([]byte, len(buf.Data)*width)
	for i, v := range buf.Data {
		for b := 0; b < width; b++ {
			out[i*width+b] = byte(v >> (8 * b))
		}
	}
	return out
}
