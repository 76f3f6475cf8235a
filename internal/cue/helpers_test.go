package cue

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"runtimecue.dev/internal/audio"
)

// makeWAV builds a canonical 44-byte-header PCM WAV file.
func makeWAV(channels uint16, sampleRate uint32, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, sampleRate*uint32(channels)*2)
	binary.Write(&buf, binary.LittleEndian, channels*2)
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func writeFile(t *testing.T, afs afero.Fs, path string, content []byte) {
	t.Helper()
	if err := afero.WriteFile(afs, path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// hookRecorder collects LoadEvents.
type hookRecorder struct {
	mu     sync.Mutex
	events []LoadEvent
}

func (h *hookRecorder) hook(event LoadEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *hookRecorder) all() []LoadEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LoadEvent(nil), h.events...)
}

// mockBackend records what it was asked to play.
type mockBackend struct {
	mu       sync.Mutex
	volume   float32
	played   []*audio.AudioData
	playErr  error
	started  bool
	closed   bool
	duringFn func()
}

func (m *mockBackend) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return nil
}

func (m *mockBackend) Stop() error { return nil }

func (m *mockBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockBackend) IsPlaying() bool { return false }

func (m *mockBackend) SetVolume(volume float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	return nil
}

func (m *mockBackend) GetVolume() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *mockBackend) Play(ctx context.Context, source audio.AudioSource) error {
	pcm, ok := source.(audio.PCMSource)
	if !ok {
		return audio.ErrNotSupported
	}
	data, err := pcm.AsAudioData()
	if err != nil {
		return err
	}
	if m.duringFn != nil {
		m.duringFn()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, data)
	return nil
}

func (m *mockBackend) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.played)
}

// mockPassthroughFactory hands out a fixed backend.
type mockPassthroughFactory struct {
	backend *mockBackend
	err     error
	calls   int
}

func (f *mockPassthroughFactory) CreatePassthroughBackend() (audio.AudioBackend, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.backend, nil
}
