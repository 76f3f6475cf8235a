package cue

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"runtimecue.dev/internal/audio"
	"runtimecue.dev/internal/fs"
)

// LoadEvent describes one load attempt. Data is nil when Err is set.
type LoadEvent struct {
	Path    string
	Format  string // decoder format name, empty if none matched
	Size    int    // file size in bytes
	Data    *audio.AudioData
	Err     error
	Elapsed time.Duration
}

// LoadHook is called after every load attempt, successful or not.
type LoadHook func(event LoadEvent)

// Loader reads audio files and decodes them into Sounds.
type Loader struct {
	fs       afero.Fs
	registry *audio.DecoderRegistry
	hooks    []LoadHook
}

// NewLoader creates a Loader reading from afs and decoding with registry.
func NewLoader(afs afero.Fs, registry *audio.DecoderRegistry, hooks ...LoadHook) *Loader {
	return &Loader{
		fs:       afs,
		registry: registry,
		hooks:    hooks,
	}
}

// Load reads and decodes the file at path. The returned Sound carries one
// reference owned by the caller.
func (l *Loader) Load(path string) (*Sound, error) {
	start := time.Now()
	content, err := l.read(path, start)
	if err != nil {
		return nil, err
	}
	return l.decode(path, content, start)
}

// LoadBytes decodes content already in memory. name identifies the
// source in hooks and logs and drives the extension fallback.
func (l *Loader) LoadBytes(name string, content []byte) (*Sound, error) {
	return l.decode(name, content, time.Now())
}

func (l *Loader) read(path string, start time.Time) ([]byte, error) {
	content, err := fs.ReadAudioFile(l.fs, path)
	if err != nil {
		l.fire(LoadEvent{Path: path, Err: err, Elapsed: time.Since(start)})
		return nil, err
	}
	return content, nil
}

func (l *Loader) decode(path string, content []byte, start time.Time) (*Sound, error) {
	event := LoadEvent{Path: path, Size: len(content)}
	if decoder := l.registry.DetectFormatWithContent(path, bytes.NewReader(content)); decoder != nil {
		event.Format = decoder.FormatName()
	}

	data, err := l.registry.DecodeBytes(path, content)
	event.Elapsed = time.Since(start)
	if err != nil {
		event.Err = err
		l.fire(event)
		return nil, err
	}

	event.Data = data
	l.fire(event)

	slog.Info("sound loaded",
		"path", path,
		"format", event.Format,
		"channels", data.Channels,
		"sample_rate", data.SampleRate,
		"source_bit_depth", data.SourceBitDepth,
		"duration_seconds", data.Duration,
		"passthrough", data.IsPassthrough(),
		"elapsed", event.Elapsed)
	return NewSound(path, data), nil
}

func (l *Loader) fire(event LoadEvent) {
	for _, hook := range l.hooks {
		hook(event)
	}
}
