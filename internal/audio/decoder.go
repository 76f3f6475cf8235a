package audio

import (
	"errors"
	"io"

	"github.com/gen2brain/malgo"
)

// Common decoder errors
var (
	ErrInvalidData       = errors.New("invalid audio data")
	ErrReadFailure       = errors.New("failed to read audio data")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// AudioData is a decoded sound ready for a playback backend.
//
// Decoded formats carry canonical 16-bit little-endian interleaved PCM in
// Samples. Compressed formats that are handed to the system player as-is
// carry their original bytes in Encoded and leave Samples empty.
type AudioData struct {
	Samples        []byte           // 16-bit LE interleaved PCM
	Channels       uint32           // Number of audio channels
	SampleRate     uint32           // Sample rate in Hz
	Format         malgo.FormatType // Always malgo.FormatS16 for decoded PCM
	SourceBitDepth int              // Bit depth before normalization
	Duration       float32          // Seconds

	Encoded []byte // Undecoded payload for passthrough codecs
	Codec   string // "mp3", "ogg"; empty for PCM
	Title   string // From tags, when present
}

// IsPassthrough reports whether d carries an undecoded payload instead of PCM.
func (d *AudioData) IsPassthrough() bool {
	return d != nil && len(d.Encoded) > 0
}

// FrameCount returns the number of PCM frames in Samples.
func (d *AudioData) FrameCount() int {
	if d == nil || d.Channels == 0 {
		return 0
	}
	return len(d.Samples) / (int(d.Channels) * 2)
}

// Decoder interface for audio format decoding
type Decoder interface {
	// Decode reads audio data from reader and returns decoded PCM data
	Decode(reader io.Reader) (*AudioData, error)

	// CanDecode checks if this decoder can handle the given filename
	CanDecode(filename string) bool

	// FormatName returns the name of the format this decoder handles
	FormatName() string
}
