package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
)

// playbackTail is added to the computed duration so the device callback can
// drain its last buffer before the device is torn down.
const playbackTail = 500 * time.Millisecond

// MalgoBackend plays 16-bit PCM through a miniaudio playback device.
type MalgoBackend struct {
	registry *DecoderRegistry
	context  *Context
	device   *malgo.Device
	playing  bool
	closed   bool
	mutex    sync.RWMutex

	// Read from the device callback, which must never wait on mutex.
	volumeBits atomic.Uint32
}

// NewMalgoBackend creates a MalgoBackend. registry decodes sources that are
// not already PCM; nil means the default registry.
func NewMalgoBackend(registry *DecoderRegistry) *MalgoBackend {
	slog.Debug("creating new MalgoBackend")
	mb := &MalgoBackend{registry: registry}
	mb.volumeBits.Store(math.Float32bits(1.0))
	return mb
}

// Start initializes the audio context.
func (mb *MalgoBackend) Start() error {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()

	if mb.closed {
		return ErrBackendClosed
	}
	if mb.context != nil {
		return nil
	}

	audioCtx, err := NewContext()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendNotAvailable, err)
	}
	mb.context = audioCtx

	slog.Debug("MalgoBackend started")
	return nil
}

// Stop halts the current device, if any.
func (mb *MalgoBackend) Stop() error {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()

	if mb.closed {
		return ErrBackendClosed
	}
	mb.stopDeviceLocked()

	slog.Debug("MalgoBackend stopped")
	return nil
}

// Close stops playback and releases the audio context.
func (mb *MalgoBackend) Close() error {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()

	if mb.closed {
		slog.Debug("MalgoBackend already closed")
		return nil
	}
	mb.closed = true
	mb.stopDeviceLocked()

	if mb.context != nil {
		if err := mb.context.Close(); err != nil {
			slog.Error("error closing audio context", "error", err)
			return fmt.Errorf("error closing audio context: %w", err)
		}
		mb.context = nil
	}

	slog.Debug("MalgoBackend closed")
	return nil
}

func (mb *MalgoBackend) stopDeviceLocked() {
	if mb.device == nil {
		return
	}
	mb.device.Stop()
	mb.device.Uninit()
	mb.device = nil
	mb.playing = false
}

// IsPlaying reports whether a device is currently running.
func (mb *MalgoBackend) IsPlaying() bool {
	mb.mutex.RLock()
	defer mb.mutex.RUnlock()
	return mb.playing && !mb.closed
}

// SetVolume sets the volume level (0.0 to 1.0)
func (mb *MalgoBackend) SetVolume(volume float32) error {
	if err := validateVolume(volume); err != nil {
		return err
	}

	mb.mutex.Lock()
	defer mb.mutex.Unlock()

	if mb.closed {
		return ErrBackendClosed
	}

	oldVolume := math.Float32frombits(mb.volumeBits.Swap(math.Float32bits(volume)))
	slog.Debug("volume changed", "old_volume", oldVolume, "new_volume", volume)
	return nil
}

// GetVolume returns the current volume level
func (mb *MalgoBackend) GetVolume() float32 {
	return math.Float32frombits(mb.volumeBits.Load())
}

// Play decodes source if needed and blocks until the sound has played or
// ctx is done.
func (mb *MalgoBackend) Play(ctx context.Context, source AudioSource) error {
	mb.mutex.RLock()
	closed := mb.closed
	mb.mutex.RUnlock()
	if closed {
		return ErrBackendClosed
	}

	data, err := resolvePCM(source, mb.registry)
	if err != nil {
		slog.Error("MalgoBackend cannot play source", "error", err)
		return err
	}
	if data.Channels == 0 || data.SampleRate == 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidData, data.Channels, data.SampleRate)
	}

	select {
	case <-ctx.Done():
		slog.Debug("playback cancelled before start", "error", ctx.Err())
		return ctx.Err()
	default:
	}

	if err := mb.Start(); err != nil {
		return err
	}
	return mb.playPCM(ctx, data)
}

func (mb *MalgoBackend) playPCM(ctx context.Context, data *AudioData) error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = data.Channels
	deviceConfig.SampleRate = data.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	slog.Debug("device configuration",
		"channels", data.Channels,
		"sample_rate", data.SampleRate,
		"pcm_bytes", len(data.Samples))

	bytesPerFrame := int(data.Channels) * 2
	var frameOffset int

	onSamples := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		startByte := frameOffset * bytesPerFrame
		if startByte >= len(data.Samples) {
			clear(pOutputSample)
			return
		}

		n := copy(pOutputSample, data.Samples[startByte:])
		// The whole buffer must be written or the device plays garbage.
		clear(pOutputSample[n:])

		if volume := mb.GetVolume(); volume != 1.0 {
			applyVolume(pOutputSample[:n], volume)
		}
		frameOffset += int(framecount)
	}

	mb.mutex.Lock()
	if mb.closed || mb.context == nil {
		mb.mutex.Unlock()
		return ErrBackendClosed
	}
	device, err := malgo.InitDevice(mb.context.GetContext().Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		mb.mutex.Unlock()
		slog.Error("failed to initialize playback device", "error", err)
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		mb.mutex.Unlock()
		slog.Error("failed to start playback", "error", err)
		return fmt.Errorf("failed to start playback: %w", err)
	}
	mb.stopDeviceLocked()
	mb.device = device
	mb.playing = true
	mb.mutex.Unlock()

	duration := time.Duration(float64(data.Duration) * float64(time.Second))
	timer := time.NewTimer(duration + playbackTail)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		slog.Debug("playback context cancelled")
	case <-timer.C:
		slog.Debug("playback duration elapsed", "duration_ms", duration.Milliseconds())
	}

	mb.mutex.Lock()
	if mb.device == device {
		mb.stopDeviceLocked()
	}
	mb.mutex.Unlock()

	slog.Info("malgo playback completed", "duration_ms", duration.Milliseconds())
	return nil
}
