package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrOtoFormatLocked is returned when a sound's rate or channel count
// differs from the format the process-wide oto context was created with.
var ErrOtoFormatLocked = errors.New("oto context already initialized with a different format")

// oto allows one context per process.
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

func sharedOtoContext(sampleRate, channels int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if sampleRate != otoRate || channels != otoChannels {
			return nil, fmt.Errorf("%w: have %d Hz/%d ch, want %d Hz/%d ch",
				ErrOtoFormatLocked, otoRate, otoChannels, sampleRate, channels)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, err)
	}
	<-ready

	otoCtx, otoRate, otoChannels = ctx, sampleRate, channels
	slog.Info("oto context initialized", "sample_rate", sampleRate, "channels", channels)
	return otoCtx, nil
}

// OtoBackend plays 16-bit PCM through an oto player.
type OtoBackend struct {
	registry *DecoderRegistry
	player   *oto.Player
	volume   float32
	closed   bool
	mutex    sync.RWMutex

	pollInterval time.Duration
}

// NewOtoBackend creates an OtoBackend. registry decodes sources that are
// not already PCM; nil means the default registry.
func NewOtoBackend(registry *DecoderRegistry) *OtoBackend {
	slog.Debug("creating new OtoBackend")
	return &OtoBackend{
		registry:     registry,
		volume:       1.0,
		pollInterval: 10 * time.Millisecond,
	}
}

// Start is a no-op; the oto context is created on first playback because
// its format is fixed at creation.
func (ob *OtoBackend) Start() error {
	ob.mutex.RLock()
	defer ob.mutex.RUnlock()

	if ob.closed {
		return ErrBackendClosed
	}
	return nil
}

// Stop pauses and discards the current player.
func (ob *OtoBackend) Stop() error {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.closed {
		return ErrBackendClosed
	}
	ob.closePlayerLocked()
	slog.Debug("OtoBackend stopped")
	return nil
}

// Close stops playback. The shared oto context outlives the backend.
func (ob *OtoBackend) Close() error {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.closed {
		return nil
	}
	ob.closed = true
	ob.closePlayerLocked()
	slog.Debug("OtoBackend closed")
	return nil
}

func (ob *OtoBackend) closePlayerLocked() {
	if ob.player == nil {
		return
	}
	ob.player.Pause()
	if err := ob.player.Close(); err != nil {
		slog.Warn("failed to close oto player", "error", err)
	}
	ob.player = nil
}

// IsPlaying reports whether the current player is producing sound.
func (ob *OtoBackend) IsPlaying() bool {
	ob.mutex.RLock()
	defer ob.mutex.RUnlock()
	return !ob.closed && ob.player != nil && ob.player.IsPlaying()
}

// SetVolume sets the volume level (0.0 to 1.0)
func (ob *OtoBackend) SetVolume(volume float32) error {
	if err := validateVolume(volume); err != nil {
		return err
	}

	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.closed {
		return ErrBackendClosed
	}
	oldVolume := ob.volume
	ob.volume = volume
	if ob.player != nil {
		ob.player.SetVolume(float64(volume))
	}
	slog.Debug("volume changed", "old_volume", oldVolume, "new_volume", volume)
	return nil
}

// GetVolume returns the current volume level
func (ob *OtoBackend) GetVolume() float32 {
	ob.mutex.RLock()
	defer ob.mutex.RUnlock()
	return ob.volume
}

// Play decodes source if needed and blocks until the player drains or ctx
// is done.
func (ob *OtoBackend) Play(ctx context.Context, source AudioSource) error {
	ob.mutex.RLock()
	closed := ob.closed
	ob.mutex.RUnlock()
	if closed {
		return ErrBackendClosed
	}

	data, err := resolvePCM(source, ob.registry)
	if err != nil {
		slog.Error("OtoBackend cannot play source", "error", err)
		return err
	}
	if data.Channels == 0 || data.SampleRate == 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidData, data.Channels, data.SampleRate)
	}

	otoContext, err := sharedOtoContext(int(data.SampleRate), int(data.Channels))
	if err != nil {
		slog.Error("oto context unavailable", "error", err)
		return err
	}

	ob.mutex.Lock()
	if ob.closed {
		ob.mutex.Unlock()
		return ErrBackendClosed
	}
	ob.closePlayerLocked()
	player := otoContext.NewPlayer(bytes.NewReader(data.Samples))
	player.SetVolume(float64(ob.volume))
	player.Play()
	ob.player = player
	ob.mutex.Unlock()

	slog.Debug("oto playback started",
		"channels", data.Channels,
		"sample_rate", data.SampleRate,
		"pcm_bytes", len(data.Samples))

	ticker := time.NewTicker(ob.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("oto playback cancelled", "error", ctx.Err())
			ob.release(player)
			return nil
		case <-ticker.C:
			if !player.IsPlaying() {
				if err := player.Err(); err != nil {
					ob.release(player)
					return fmt.Errorf("oto playback failed: %w", err)
				}
				ob.release(player)
				slog.Info("oto playback completed", "duration_ms", int(data.Duration*1000))
				return nil
			}
		}
	}
}

func (ob *OtoBackend) release(player *oto.Player) {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()
	if ob.player == player {
		ob.closePlayerLocked()
	}
}
