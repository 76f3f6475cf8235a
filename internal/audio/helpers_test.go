package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/gen2brain/malgo"
)

// MockDecoder is a configurable Decoder for registry tests.
type MockDecoder struct {
	formatName string
	extensions []string
	shouldFail bool
	returnData *AudioData
}

func (m *MockDecoder) Decode(reader io.Reader) (*AudioData, error) {
	if m.shouldFail {
		return nil, ErrUnsupportedFormat
	}
	if m.returnData != nil {
		return m.returnData, nil
	}
	return &AudioData{
		Samples:    []byte{0x00, 0x01, 0x02, 0x03},
		Channels:   2,
		SampleRate: 44100,
		Format:     malgo.FormatS16,
	}, nil
}

func (m *MockDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range m.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (m *MockDecoder) FormatName() string {
	return m.formatName
}

// makeWAV builds a canonical PCM WAV file.
func makeWAV(channels uint16, sampleRate uint32, bits uint16, pcm []byte) []byte {
	blockAlign := channels * bits / 8
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, sampleRate*uint32(blockAlign))
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, bits)
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// commandSet returns a command checker that reports only the given names.
func commandSet(names ...string) func(string) bool {
	return func(cmd string) bool {
		for _, n := range names {
			if cmd == n {
				return true
			}
		}
		return false
	}
}
