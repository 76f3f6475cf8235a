package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	youpywav "github.com/youpy/go-wav"
)

// Common errors for AudioSource implementations
var (
	ErrNotSupported  = errors.New("operation not supported by this source")
	ErrInvalidFormat = errors.New("invalid audio format")
	ErrSourceClosed  = errors.New("audio source is closed")
)

// AudioSource represents a source of audio data that can be played.
// Implementations provide the data either as a file path or as a reader
// with format information.
type AudioSource interface {
	// AsFilePath returns a file path if the source can provide one
	// Returns ErrNotSupported if the source cannot provide a file path
	AsFilePath() (string, error)

	// AsReader returns a reader for the audio data along with a format
	// string like "wav" or "mp3". The caller closes the ReadCloser.
	AsReader() (io.ReadCloser, string, error)
}

// PCMSource is an AudioSource that already holds decoded audio.
type PCMSource interface {
	AudioSource
	AsAudioData() (*AudioData, error)
}

// FileSource represents an audio source backed by a file on disk
type FileSource struct {
	path     string
	registry *DecoderRegistry
}

// NewFileSource creates a new FileSource for the given file path
func NewFileSource(path string, registry *DecoderRegistry) *FileSource {
	slog.Debug("creating new FileSource", "path", path)
	return &FileSource{
		path:     path,
		registry: registry,
	}
}

// AsFilePath returns the file path directly
func (fs *FileSource) AsFilePath() (string, error) {
	if fs.path == "" {
		slog.Error("FileSource has empty path")
		return "", fmt.Errorf("file path is empty")
	}

	slog.Debug("FileSource providing file path", "path", fs.path)
	return fs.path, nil
}

// AsReader opens the file and returns a reader with format detection
func (fs *FileSource) AsReader() (io.ReadCloser, string, error) {
	if fs.path == "" {
		slog.Error("FileSource has empty path for reader")
		return nil, "", fmt.Errorf("file path is empty")
	}

	format := fs.DetectFormat()
	if format == "" {
		slog.Error("unsupported audio format", "path", fs.path)
		return nil, "", ErrInvalidFormat
	}

	file, err := os.Open(fs.path)
	if err != nil {
		slog.Error("failed to open file", "path", fs.path, "error", err)
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	slog.Debug("FileSource providing reader", "path", fs.path, "format", format)
	return file, format, nil
}

// DetectFormat determines the audio format using the registry
func (fs *FileSource) DetectFormat() string {
	if fs.registry == nil {
		slog.Warn("no registry available for format detection", "path", fs.path)
		return ""
	}

	decoder := fs.registry.DetectFormat(fs.path)
	if decoder != nil {
		format := strings.ToLower(decoder.FormatName())
		slog.Debug("format detected via registry", "path", fs.path, "format", format)
		return format
	}

	slog.Warn("unknown audio format via registry", "path", fs.path)
	return ""
}

// ReaderSource represents an audio source backed by an io.ReadCloser
type ReaderSource struct {
	reader io.ReadCloser
	format string
}

// NewReaderSource creates a new ReaderSource with the given reader and format
func NewReaderSource(reader io.ReadCloser, format string) *ReaderSource {
	slog.Debug("creating new ReaderSource", "format", format)
	return &ReaderSource{
		reader: reader,
		format: format,
	}
}

// AsFilePath returns ErrNotSupported since ReaderSource cannot provide a file path
func (rs *ReaderSource) AsFilePath() (string, error) {
	slog.Debug("ReaderSource cannot provide file path")
	return "", ErrNotSupported
}

// AsReader returns the stored reader and format
func (rs *ReaderSource) AsReader() (io.ReadCloser, string, error) {
	if rs.reader == nil {
		slog.Error("ReaderSource has nil reader")
		return nil, "", ErrSourceClosed
	}

	slog.Debug("ReaderSource providing reader", "format", rs.format)
	return rs.reader, rs.format, nil
}

// MemorySource serves already decoded audio.
type MemorySource struct {
	data *AudioData
}

// NewMemorySource wraps data as an AudioSource.
func NewMemorySource(data *AudioData) *MemorySource {
	return &MemorySource{data: data}
}

// AsFilePath returns ErrNotSupported.
func (ms *MemorySource) AsFilePath() (string, error) {
	return "", ErrNotSupported
}

// AsAudioData returns the wrapped audio.
func (ms *MemorySource) AsAudioData() (*AudioData, error) {
	if ms.data == nil {
		return nil, ErrSourceClosed
	}
	return ms.data, nil
}

// AsReader returns the encoded payload for passthrough audio. Decoded PCM
// is re-wrapped as a 16-bit WAV file.
func (ms *MemorySource) AsReader() (io.ReadCloser, string, error) {
	if ms.data == nil {
		return nil, "", ErrSourceClosed
	}
	if ms.data.IsPassthrough() {
		return io.NopCloser(bytes.NewReader(ms.data.Encoded)), ms.data.Codec, nil
	}

	encoded, err := EncodeWAV(ms.data)
	if err != nil {
		return nil, "", err
	}
	return io.NopCloser(bytes.NewReader(encoded)), "wav", nil
}

// EncodeWAV writes 16-bit PCM audio as a canonical WAV file. Only mono and
// stereo are supported.
func EncodeWAV(data *AudioData) ([]byte, error) {
	if data == nil || data.IsPassthrough() {
		return nil, fmt.Errorf("%w: no PCM to encode", ErrInvalidData)
	}
	if data.Channels == 0 || data.Channels > 2 {
		return nil, fmt.Errorf("%w: cannot write %d channels as WAV", ErrNotSupported, data.Channels)
	}

	channels := int(data.Channels)
	frames := data.FrameCount()
	samples := make([]youpywav.Sample, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			samples[i].Values[ch] = int(int16(uint16(data.Samples[off]) | uint16(data.Samples[off+1])<<8))
		}
	}

	var buf bytes.Buffer
	w := youpywav.NewWriter(&buf, uint32(frames), uint16(channels), data.SampleRate, 16)
	if err := w.WriteSamples(samples); err != nil {
		return nil, fmt.Errorf("write WAV samples: %w", err)
	}

	slog.Debug("encoded PCM as WAV",
		"frames", frames,
		"channels", channels,
		"sample_rate", data.SampleRate,
		"size_bytes", buf.Len())
	return buf.Bytes(), nil
}
