package wav

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
	youpywav "github.com/youpy/go-wav"
)

// rawChunk is a chunk written verbatim by buildWAV. declared overrides the
// size field when non-nil.
type rawChunk struct {
	id       string
	payload  []byte
	declared *uint32
}

func sizePtr(v uint32) *uint32 {
	return &v
}

func fmtChunk(tag, channels uint16, sampleRate uint32, bits uint16) rawChunk {
	payload := make([]byte, 16)
	blockAlign := channels * bits / 8
	binary.LittleEndian.PutUint16(payload[0:2], tag)
	binary.LittleEndian.PutUint16(payload[2:4], channels)
	binary.LittleEndian.PutUint32(payload[4:8], sampleRate)
	binary.LittleEndian.PutUint32(payload[8:12], sampleRate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(payload[12:14], blockAlign)
	binary.LittleEndian.PutUint16(payload[14:16], bits)
	return rawChunk{id: "fmt ", payload: payload}
}

func dataChunk(pcm []byte) rawChunk {
	return rawChunk{id: "data", payload: pcm}
}

// buildWAV assembles a RIFF/WAVE buffer from chunks in the given order.
func buildWAV(chunks ...rawChunk) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.WriteString(c.id)
		size := uint32(len(c.payload))
		if c.declared != nil {
			size = *c.declared
		}
		binary.Write(&body, binary.LittleEndian, size)
		body.Write(c.payload)
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// canonicalWAV is a 44-byte header followed by pcm.
func canonicalWAV(channels uint16, sampleRate uint32, bits uint16, pcm []byte) []byte {
	return buildWAV(fmtChunk(FormatPCM, channels, sampleRate, bits), dataChunk(pcm))
}

// encodeWithGoAudio writes samples through github.com/go-audio/wav and
// returns the file bytes.
func encodeWithGoAudio(t *testing.T, sampleRate, bitDepth, channels int, samples []int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := gowav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// encodeWithYoupy writes stereo 16-bit frames through github.com/youpy/go-wav.
func encodeWithYoupy(t *testing.T, sampleRate uint32, frames [][2]int) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := youpywav.NewWriter(&buf, uint32(len(frames)), 2, sampleRate, 16)
	samples := make([]youpywav.Sample, len(frames))
	for i, f := range frames {
		samples[i] = youpywav.Sample{Values: f}
	}
	require.NoError(t, w.WriteSamples(samples))
	return buf.Bytes()
}
