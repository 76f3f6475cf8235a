package wav

import (
	"bytes"
	"encoding/binary"
	"log/slog"
)

var (
	riffID = []byte("RIFF")
	waveID = []byte("WAVE")
	fmtID  = []byte("fmt ")
	dataID = []byte("data")
)

// Result is the output of a successful Parse.
type Result struct {
	Format FormatInfo
	PCM    []byte // native bit depth, owned by the caller
}

// Parser decodes WAV containers. A Parser is immutable once built and safe
// for concurrent use.
type Parser struct {
	logger *slog.Logger
	mode   ScanMode
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the diagnostic sink. A nil logger means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithScanMode selects the chunk location strategy.
func WithScanMode(mode ScanMode) Option {
	return func(p *Parser) {
		p.mode = mode
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{mode: ScanLinear}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the parser's scan mode.
func (p *Parser) Mode() ScanMode {
	return p.mode
}

func (p *Parser) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// Parse decodes b with a default linear-scan parser.
func Parse(b []byte) (Result, error) {
	return NewParser().Parse(b)
}

// Parse validates the container, locates the fmt and data chunks and
// returns the format together with a copy of the sample payload.
func (p *Parser) Parse(b []byte) (Result, error) {
	log := p.log()
	log.Debug("parsing WAV data", "size_bytes", len(b), "scan_mode", p.mode.String())

	if err := checkHeader(b); err != nil {
		log.Warn("WAV header rejected", "error", err)
		return Result{}, err
	}

	var (
		res Result
		err error
	)
	if p.mode == ScanChunked {
		res, err = p.parseChunked(b)
	} else {
		res, err = p.parseLinear(b)
	}
	if err != nil {
		log.Warn("WAV parse failed", "scan_mode", p.mode.String(), "error", err)
		return Result{}, err
	}

	log.Debug("WAV parsed",
		"format_tag", res.Format.AudioFormat,
		"channels", res.Format.NumChannels,
		"sample_rate", res.Format.SampleRate,
		"bits_per_sample", res.Format.BitsPerSample,
		"pcm_bytes", len(res.PCM))
	return res, nil
}

func checkHeader(b []byte) error {
	if len(b) < MinFileSize {
		return newError(ErrTooSmall, "%d bytes, need at least %d", len(b), MinFileSize)
	}
	if !bytes.Equal(b[0:4], riffID) {
		return newError(ErrNotRiff, "header tag %q", b[0:4])
	}
	if !bytes.Equal(b[8:12], waveID) {
		return newError(ErrNotWave, "form type %q", b[8:12])
	}
	return nil
}

func (p *Parser) parseLinear(b []byte) (Result, error) {
	log := p.log()

	fmtOff := findTag(b, fmtID)
	if fmtOff < 0 {
		return Result{}, newError(ErrFmtChunkNotFound, "no fmt tag in %d bytes", len(b))
	}
	if fmtOff+chunkHeaderSize+fmtPayloadSize > len(b) {
		return Result{}, newError(ErrFmtChunkNotFound, "fmt tag at offset %d leaves fewer than %d format bytes", fmtOff, fmtPayloadSize)
	}
	log.Debug("fmt chunk found", "offset", fmtOff, "declared_size", binary.LittleEndian.Uint32(b[fmtOff+4:]))

	start := fmtOff + chunkHeaderSize
	info := decodeFormat(b[start : start+fmtPayloadSize])
	if info.AudioFormat != FormatPCM {
		return Result{}, newError(ErrUnsupportedFormatTag, "format tag %d, only PCM (1) is supported", info.AudioFormat)
	}

	// Fresh pass from the RIFF header, independent of where fmt was found.
	dataOff := findTag(b, dataID)
	if dataOff < 0 {
		return Result{}, newError(ErrDataChunkNotFound, "no data tag in %d bytes", len(b))
	}
	declared := binary.LittleEndian.Uint32(b[dataOff+4 : dataOff+8])
	log.Debug("data chunk found", "offset", dataOff, "declared_size", declared)

	pcm, err := p.copyPayload(b, dataOff+chunkHeaderSize, uint64(declared))
	if err != nil {
		return Result{}, err
	}
	return Result{Format: info, PCM: pcm}, nil
}

// findTag returns the first offset at or after the RIFF header where tag
// starts with room for its 4-byte size field, or -1. A chunk header ending
// exactly at the end of b still counts so that an empty trailing data chunk
// is found.
func findTag(b []byte, tag []byte) int {
	for off := riffHeaderSize; off+chunkHeaderSize <= len(b); off++ {
		if bytes.Equal(b[off:off+len(tag)], tag) {
			return off
		}
	}
	return -1
}

// decodeFormat reads the 16-byte PCM fmt payload. Byte rate and block
// align (offsets 8-13) are not used.
func decodeFormat(payload []byte) FormatInfo {
	return FormatInfo{
		AudioFormat:   binary.LittleEndian.Uint16(payload[0:2]),
		NumChannels:   binary.LittleEndian.Uint16(payload[2:4]),
		SampleRate:    binary.LittleEndian.Uint32(payload[4:8]),
		BitsPerSample: binary.LittleEndian.Uint16(payload[14:16]),
	}
}

// copyPayload copies declared bytes starting at dataStart, clamped to the
// end of b.
func (p *Parser) copyPayload(b []byte, dataStart int, declared uint64) ([]byte, error) {
	if dataStart > len(b) {
		return nil, newError(ErrDataChunkTruncated, "payload starts at %d past end of %d-byte buffer", dataStart, len(b))
	}

	size := declared
	remaining := uint64(len(b) - dataStart)
	if size > remaining {
		p.log().Warn("data chunk size exceeds buffer, clamping",
			"declared_size", declared,
			"effective_size", remaining)
		size = remaining
	}

	pcm := make([]byte, size)
	copy(pcm, b[dataStart:dataStart+int(size)])
	return pcm, nil
}
