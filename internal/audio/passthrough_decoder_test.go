package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentMP3 builds frames of MPEG-1 Layer III, 128 kbit/s, 44.1 kHz stereo
// with all-zero side info and main data, optionally behind an ID3v2.3 tag.
func silentMP3(frames int, title, artist string) []byte {
	var buf bytes.Buffer
	if title != "" || artist != "" {
		var body bytes.Buffer
		for _, f := range []struct{ id, text string }{{"TIT2", title}, {"TPE1", artist}} {
			body.WriteString(f.id)
			binary.Write(&body, binary.BigEndian, uint32(len(f.text)+1))
			body.Write([]byte{0, 0, 0}) // flags, then ISO-8859-1 encoding byte
			body.WriteString(f.text)
		}
		size := body.Len()
		buf.WriteString("ID3")
		buf.Write([]byte{3, 0, 0})
		buf.Write([]byte{byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)})
		buf.Write(body.Bytes())
	}

	const frameSize = 144 * 128000 / 44100 // 417, no padding
	frame := make([]byte, frameSize)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	for i := 0; i < frames; i++ {
		buf.Write(frame)
	}
	return buf.Bytes()
}

func TestPassthroughDecoderCanDecode(t *testing.T) {
	mp3Decoder := NewMp3Decoder()
	oggDecoder := NewOggDecoder()

	testCases := []struct {
		filename string
		mp3      bool
		ogg      bool
	}{
		{"cue.mp3", true, false},
		{"CUE.MPEG", true, false},
		{"cue.ogg", false, true},
		{"cue.oga", false, true},
		{"cue.wav", false, false},
		{"", false, false},
	}

	for _, tc := range testCases {
		if got := mp3Decoder.CanDecode(tc.filename); got != tc.mp3 {
			t.Errorf("MP3 CanDecode(%q) = %v, expected %v", tc.filename, got, tc.mp3)
		}
		if got := oggDecoder.CanDecode(tc.filename); got != tc.ogg {
			t.Errorf("OGG CanDecode(%q) = %v, expected %v", tc.filename, got, tc.ogg)
		}
	}

	if mp3Decoder.FormatName() != "MP3" || oggDecoder.FormatName() != "OGG" {
		t.Errorf("unexpected format names %q, %q", mp3Decoder.FormatName(), oggDecoder.FormatName())
	}
}

func TestPassthroughDecoderKeepsPayloadWhenMetadataFails(t *testing.T) {
	payload := []byte("not really a compressed stream, but the bytes must survive")

	for _, decoder := range []*PassthroughDecoder{NewMp3Decoder(), NewOggDecoder()} {
		t.Run(decoder.FormatName(), func(t *testing.T) {
			audioData, err := decoder.Decode(bytes.NewReader(payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !audioData.IsPassthrough() {
				t.Fatal("expected passthrough audio data")
			}
			if !bytes.Equal(audioData.Encoded, payload) {
				t.Error("encoded payload was altered")
			}
			if len(audioData.Samples) != 0 {
				t.Errorf("expected no PCM, got %d bytes", len(audioData.Samples))
			}
			if audioData.SampleRate != 0 || audioData.Duration != 0 {
				t.Errorf("expected zero metadata after failed metadata read, got %d Hz, %v s", audioData.SampleRate, audioData.Duration)
			}
		})
	}

	if got, _ := NewOggDecoder().Decode(bytes.NewReader(payload)); got.Codec != "ogg" {
		t.Errorf("codec = %q, want ogg", got.Codec)
	}
}

func TestPassthroughDecoderRejectsEmpty(t *testing.T) {
	audioData, err := NewMp3Decoder().Decode(bytes.NewReader(nil))
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("error = %v, want ErrInvalidData", err)
	}
	if audioData != nil {
		t.Errorf("expected nil audio data, got %+v", audioData)
	}
}

func TestMp3DecoderReadsValidStream(t *testing.T) {
	payload := silentMP3(10, "", "")

	audioData, err := NewMp3Decoder().Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.True(t, audioData.IsPassthrough())
	assert.Equal(t, payload, audioData.Encoded)
	assert.Equal(t, "mp3", audioData.Codec)
	assert.Equal(t, uint32(2), audioData.Channels)
	assert.Equal(t, uint32(44100), audioData.SampleRate)
	assert.InDelta(t, 10*1152.0/44100.0, audioData.Duration, 1e-4)
	assert.Empty(t, audioData.Samples)
	assert.Empty(t, audioData.Title)
}

func TestMp3DecoderReadsTagTitle(t *testing.T) {
	payload := silentMP3(4, "Ding", "Runtime")

	audioData, err := NewMp3Decoder().Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "Runtime - Ding", audioData.Title)
	assert.Equal(t, uint32(44100), audioData.SampleRate)
	assert.InDelta(t, 4*1152.0/44100.0, audioData.Duration, 1e-4)
}

func TestRegistryRoutesMp3ByContent(t *testing.T) {
	payload := silentMP3(3, "Ding", "")

	audioData, err := NewDefaultRegistry().DecodeBytes("cue.bin", payload)
	require.NoError(t, err)
	assert.Equal(t, "mp3", audioData.Codec)
	assert.Equal(t, "Ding", audioData.Title)
}
