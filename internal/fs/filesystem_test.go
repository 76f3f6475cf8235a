package fs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestDefaultFactory(t *testing.T) {
	factory := NewDefaultFactory()

	if _, ok := factory.Production().(*afero.OsFs); !ok {
		t.Error("Expected production filesystem to be *afero.OsFs")
	}
	if _, ok := factory.Memory().(*afero.MemMapFs); !ok {
		t.Error("Expected memory filesystem to be *afero.MemMapFs")
	}
}

func TestMemoryFilesystemIsolation(t *testing.T) {
	factory := NewDefaultFactory()
	fs1 := factory.Memory()
	fs2 := factory.Memory()

	if err := afero.WriteFile(fs1, "/cue.wav", []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if exists, _ := afero.Exists(fs2, "/cue.wav"); exists {
		t.Error("memory filesystems should be isolated")
	}
}

func TestReadAudioFile(t *testing.T) {
	mem := afero.NewMemMapFs()
	content := []byte("RIFF....WAVE")
	afero.WriteFile(mem, "/sounds/cue.wav", content, 0o644)
	mem.MkdirAll("/sounds/folder", 0o755)

	got, err := ReadAudioFile(mem, "/sounds/cue.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("got %q, want %q", got, content)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"empty path", "", ErrEmptyPath},
		{"missing file", "/sounds/missing.wav", ErrNotFound},
		{"directory", "/sounds/folder", ErrIsDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadAudioFile(mem, tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if data != nil {
				t.Errorf("expected nil data, got %d bytes", len(data))
			}
		})
	}
}

func TestReadAudioFileEmptyFile(t *testing.T) {
	mem := afero.NewMemMapFs()
	afero.WriteFile(mem, "/empty.wav", nil, 0o644)

	data, err := ReadAudioFile(mem, "/empty.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty data, got %d bytes", len(data))
	}
}
