package audio

import "testing"

func TestAudioDataIsPassthrough(t *testing.T) {
	var nilData *AudioData
	if nilData.IsPassthrough() {
		t.Error("nil AudioData should not be passthrough")
	}

	pcm := &AudioData{Samples: []byte{1, 2}, Channels: 1, SampleRate: 8000}
	if pcm.IsPassthrough() {
		t.Error("PCM AudioData should not be passthrough")
	}

	encoded := &AudioData{Encoded: []byte{0xFF, 0xFB}, Codec: "mp3"}
	if !encoded.IsPassthrough() {
		t.Error("AudioData with Encoded bytes should be passthrough")
	}
}

func TestAudioDataFrameCount(t *testing.T) {
	tests := []struct {
		name string
		data *AudioData
		want int
	}{
		{"nil", nil, 0},
		{"no channels", &AudioData{Samples: make([]byte, 8)}, 0},
		{"mono", &AudioData{Samples: make([]byte, 8), Channels: 1}, 4},
		{"stereo", &AudioData{Samples: make([]byte, 8), Channels: 2}, 2},
		{"partial frame", &AudioData{Samples: make([]byte, 6), Channels: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.FrameCount(); got != tt.want {
				t.Errorf("FrameCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodersImplementInterface(t *testing.T) {
	var _ Decoder = NewWavDecoder()
	var _ Decoder = NewAiffDecoder()
	var _ Decoder = NewMp3Decoder()
	var _ Decoder = NewOggDecoder()
}
