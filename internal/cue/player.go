package cue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"runtimecue.dev/internal/audio"
)

// PassthroughFactory supplies a backend able to play undecoded audio.
type PassthroughFactory interface {
	CreatePassthroughBackend() (audio.AudioBackend, error)
}

// Player loads files on demand and plays them through a backend.
type Player struct {
	fs          afero.Fs
	registry    *audio.DecoderRegistry
	extensions  []string
	hooks       []LoadHook
	backend     audio.AudioBackend
	passthrough PassthroughFactory

	loader   *Loader
	resolver *audio.FileResolver
}

// Option configures a Player.
type Option func(*Player)

// WithFs sets the filesystem files are read from.
func WithFs(afs afero.Fs) Option {
	return func(p *Player) {
		p.fs = afs
	}
}

// WithRegistry sets the decoder registry.
func WithRegistry(registry *audio.DecoderRegistry) Option {
	return func(p *Player) {
		p.registry = registry
	}
}

// WithExtensions sets the extensions tried for paths given without one.
func WithExtensions(extensions []string) Option {
	return func(p *Player) {
		p.extensions = extensions
	}
}

// WithLoadHook adds a hook called after every load attempt.
func WithLoadHook(hook LoadHook) Option {
	return func(p *Player) {
		p.hooks = append(p.hooks, hook)
	}
}

// WithBackend sets the playback backend. Without one the player only
// loads and decodes.
func WithBackend(backend audio.AudioBackend) Option {
	return func(p *Player) {
		p.backend = backend
	}
}

// WithPassthroughFactory sets where to get a backend for audio the main
// backend cannot play undecoded.
func WithPassthroughFactory(factory PassthroughFactory) Option {
	return func(p *Player) {
		p.passthrough = factory
	}
}

// NewPlayer creates a Player. It reads from the OS filesystem and decodes
// with the default registry unless told otherwise.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		extensions: audio.DefaultExtensions,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.registry == nil {
		p.registry = audio.NewDefaultRegistry()
	}

	p.loader = NewLoader(p.fs, p.registry, p.hooks...)
	p.resolver = audio.NewFileResolver(p.fs, p.extensions)
	return p
}

// Loader returns the loader shared by the player and its cues.
func (p *Player) Loader() *Loader {
	return p.loader
}

// NewCue creates an empty cue loading through the player's loader.
func (p *Player) NewCue() *SoundCue {
	return NewSoundCue(p.loader)
}

// PlayFile loads path and plays it to completion or until ctx is done. The
// decoded audio is returned even when playback fails.
func (p *Player) PlayFile(ctx context.Context, path string) (*audio.AudioData, error) {
	resolved, err := p.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	sound, err := p.loader.Load(resolved)
	if err != nil {
		return nil, err
	}
	defer sound.Release()

	data := sound.Data()
	return data, p.play(ctx, sound)
}

// PlayBytes decodes content and plays it like PlayFile.
func (p *Player) PlayBytes(ctx context.Context, name string, content []byte) (*audio.AudioData, error) {
	sound, err := p.loader.LoadBytes(name, content)
	if err != nil {
		return nil, err
	}
	defer sound.Release()

	data := sound.Data()
	return data, p.play(ctx, sound)
}

// PlayCue plays the cue's current sound. The cue may be cleared or
// reloaded while playback is in progress.
func (p *Player) PlayCue(ctx context.Context, c *SoundCue) error {
	sound := c.Sound()
	if sound == nil {
		return ErrNotLoaded
	}
	defer sound.Release()
	return p.play(ctx, sound)
}

// play expects the caller to hold a reference on sound.
func (p *Player) play(ctx context.Context, sound *Sound) error {
	if p.backend == nil {
		slog.Debug("no backend configured, skipping playback", "path", sound.Path())
		return nil
	}

	data := sound.Data()
	if data == nil {
		return ErrNotLoaded
	}

	err := p.backend.Play(ctx, audio.NewMemorySource(data))
	if !errors.Is(err, audio.ErrPassthroughUnsupported) || p.passthrough == nil {
		return err
	}

	slog.Info("backend cannot play undecoded audio, falling back",
		"path", sound.Path(),
		"codec", data.Codec)

	fallback, ferr := p.passthrough.CreatePassthroughBackend()
	if ferr != nil {
		return fmt.Errorf("passthrough fallback: %w", ferr)
	}
	defer fallback.Close()

	if verr := fallback.SetVolume(p.backend.GetVolume()); verr != nil {
		slog.Warn("failed to copy volume to fallback backend", "error", verr)
	}
	if serr := fallback.Start(); serr != nil {
		return fmt.Errorf("passthrough fallback: %w", serr)
	}
	return fallback.Play(ctx, audio.NewMemorySource(data))
}
