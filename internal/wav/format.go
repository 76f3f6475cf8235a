package wav

import (
	"fmt"
	"strings"
)

const (
	// MinFileSize is the smallest buffer that can hold a RIFF header, a
	// 16-byte fmt chunk and an empty data chunk.
	MinFileSize = 44

	// FormatPCM is the fmt chunk tag for integer PCM.
	FormatPCM uint16 = 1

	riffHeaderSize  = 12
	chunkHeaderSize = 8
	fmtPayloadSize  = 16
)

// FormatInfo holds the fields read from a PCM fmt chunk.
type FormatInfo struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// String returns a short human readable description.
func (f FormatInfo) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit", f.SampleRate, f.NumChannels, f.BitsPerSample)
}

// ScanMode selects how the parser locates chunks.
type ScanMode int

const (
	// ScanLinear searches byte-by-byte for each chunk tag.
	ScanLinear ScanMode = iota
	// ScanChunked walks chunk headers using their declared sizes.
	ScanChunked
)

func (m ScanMode) String() string {
	switch m {
	case ScanLinear:
		return "linear"
	case ScanChunked:
		return "chunked"
	default:
		return fmt.Sprintf("ScanMode(%d)", int(m))
	}
}

// ParseScanMode converts a config string into a ScanMode. Empty means linear.
func ParseScanMode(s string) (ScanMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return ScanLinear, nil
	case "chunked":
		return ScanChunked, nil
	default:
		return ScanLinear, fmt.Errorf("invalid scan mode '%s', must be one of: linear, chunked", s)
	}
}
