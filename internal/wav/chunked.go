package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/go-audio/riff"
)

// parseChunked walks the chunk list using each header's declared size.
// Chunks other than fmt and data are skipped whatever their order.
func (p *Parser) parseChunked(b []byte) (Result, error) {
	log := p.log()

	r := bytes.NewReader(b)
	walker := riff.New(r)
	if err := walker.ParseHeaders(); err != nil {
		return Result{}, newError(ErrNotRiff, "riff header: %v", err)
	}

	var (
		info    *FormatInfo
		pcm     []byte
		index   int
		stopped bool
	)

	for !stopped && (info == nil || pcm == nil) {
		// The walker ignores a short size field, so a header cut off by the
		// end of the buffer has to be caught here.
		if hdrStart := int(r.Size()) - r.Len(); hdrStart+chunkHeaderSize > len(b) {
			if hdrStart < len(b) {
				log.Debug("truncated chunk header ends walk", "offset", hdrStart, "remaining", len(b)-hdrStart)
			}
			break
		}
		chunk, err := walker.NextChunk()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debug("chunk walk ended", "chunks_seen", index, "error", err)
			}
			break
		}
		index++
		// Position just past the 8-byte chunk header.
		pos := int(r.Size()) - r.Len()

		switch chunk.ID {
		case riff.FmtID:
			log.Debug("fmt chunk found", "offset", pos-chunkHeaderSize, "declared_size", chunk.Size, "index", index)
			if chunk.Size < fmtPayloadSize {
				return Result{}, newError(ErrFmtChunkNotFound, "fmt chunk at offset %d declares %d bytes, need %d", pos-chunkHeaderSize, chunk.Size, fmtPayloadSize)
			}
			payload := make([]byte, fmtPayloadSize)
			if _, err := io.ReadFull(chunk, payload); err != nil {
				return Result{}, newError(ErrFmtChunkNotFound, "fmt chunk at offset %d: %v", pos-chunkHeaderSize, err)
			}
			decoded := decodeFormat(payload)
			if decoded.AudioFormat != FormatPCM {
				return Result{}, newError(ErrUnsupportedFormatTag, "format tag %d, only PCM (1) is supported", decoded.AudioFormat)
			}
			info = &decoded

		case riff.DataFormatID:
			// Read the size from the header bytes; the walker rounds odd sizes up to the pad byte.
			declared := binary.LittleEndian.Uint32(b[pos-4 : pos])
			log.Debug("data chunk found", "offset", pos-chunkHeaderSize, "declared_size", declared, "index", index)
			pcm, err = p.copyPayload(b, pos, uint64(declared))
			if err != nil {
				return Result{}, err
			}
			if uint64(pos)+uint64(declared) >= uint64(len(b)) {
				// Nothing can follow a payload that reaches the end of the buffer.
				stopped = true
				continue
			}

		default:
			log.Debug("skipping chunk", "id", string(chunk.ID[:]), "declared_size", chunk.Size, "index", index)
		}

		chunk.Done()
	}

	if info == nil {
		return Result{}, newError(ErrFmtChunkNotFound, "no fmt chunk among %d chunks", index)
	}
	if pcm == nil {
		return Result{}, newError(ErrDataChunkNotFound, "no data chunk among %d chunks", index)
	}
	return Result{Format: *info, PCM: pcm}, nil
}
