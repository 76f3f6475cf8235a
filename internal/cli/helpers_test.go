package cli

import (
	"bytes"
	"context"
	"encoding/binary"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"runtimecue.dev/internal/audio"
	"runtimecue.dev/internal/config"
)

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// makeWAV builds a canonical PCM WAV file.
func makeWAV(channels uint16, sampleRate uint32, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVEfmt ")
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

type mockXDG struct {
	sounds map[string]string
}

func (m *mockXDG) GetConfigPaths(filename string) []string {
	return []string{filepath.Join("/xdg/config/runtimecue", filename)}
}

func (m *mockXDG) GetCachePath(purpose string) string {
	return filepath.Join("/xdg/cache/runtimecue", purpose)
}

func (m *mockXDG) FindSoundFile(relativePath string) string {
	return m.sounds[relativePath]
}

// mockBackend records played audio. Undecoded audio is refused the way
// the PCM backends refuse it.
type mockBackend struct {
	mu      sync.Mutex
	volume  float32
	played  []*audio.AudioData
	started bool
	closed  bool
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, data)
	return nil
}

func (m *mockBackend) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.played)
}

type pcmOnlyBackend struct {
	*mockBackend
}

func (p pcmOnlyBackend) Play(ctx context.Context, source audio.AudioSource) error {
	if pcm, ok := source.(audio.PCMSource); ok {
		if data, err := pcm.AsAudioData(); err == nil && data.IsPassthrough() {
			return audio.ErrPassthroughUnsupported
		}
	}
	return p.mockBackend.Play(ctx, source)
}

type mockBackendFactory struct {
	backend     *mockBackend
	passthrough *mockBackend
	created     []string
}

func (f *mockBackendFactory) CreateBackend(backendType string) (audio.AudioBackend, error) {
	f.created = append(f.created, backendType)
	return pcmOnlyBackend{f.backend}, nil
}

func (f *mockBackendFactory) CreatePassthroughBackend() (audio.AudioBackend, error) {
	return f.passthrough, nil
}

func (f *mockBackendFactory) GetSupportedBackends() []string {
	return []string{audio.BackendAuto}
}

func (f *mockBackendFactory) IsValidBackendType(backendType string) bool {
	return backendType == audio.BackendAuto
}

type mockTerminalDetector struct {
	interactive bool
	fds         []int
}

func (m *mockTerminalDetector) IsTerminal(fd int) bool {
	m.fds = append(m.fds, fd)
	return m.interactive
}

type testCLI struct {
	*CLI
	fs       afero.Fs
	xdg      *mockXDG
	factory  *mockBackendFactory
	terminal *mockTerminalDetector
}

// newTestCLI builds a CLI on an in-memory filesystem whose history
// database lives at dbPath.
func newTestCLI(t *testing.T, dbPath string) *testCLI {
	t.Helper()
	t.Setenv("RUNTIMECUE_HISTORY_DB", dbPath)

	fs := afero.NewMemMapFs()
	xdg := &mockXDG{sounds: map[string]string{}}
	factory := &mockBackendFactory{backend: &mockBackend{}, passthrough: &mockBackend{}}
	terminal := &mockTerminalDetector{}

	c := NewCLI()
	c.fs = fs
	c.configManager = config.NewConfigManagerWithDependencies(fs, xdg)
	c.backendFactory = factory
	c.terminalDetector = terminal

	return &testCLI{CLI: c, fs: fs, xdg: xdg, factory: factory, terminal: terminal}
}

func (tc *testCLI) writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := afero.WriteFile(tc.fs, path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// run executes args and returns exit code, stdout and stderr.
func (tc *testCLI) run(stdin []byte, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := tc.Run(append([]string{"runtimecue"}, args...), bytes.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}
