package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Common errors for AudioBackend implementations
var (
	ErrBackendNotAvailable = errors.New("audio backend not available")
	ErrBackendClosed       = errors.New("audio backend is closed")
	// ErrPassthroughUnsupported is returned by PCM-only backends when handed
	// undecoded audio.
	ErrPassthroughUnsupported = errors.New("backend cannot play undecoded audio")
)

// AudioBackend represents a system for playing audio from various sources
type AudioBackend interface {
	// Lifecycle management
	Start() error
	Stop() error
	Close() error

	// State management
	IsPlaying() bool
	SetVolume(volume float32) error
	GetVolume() float32

	// Playback - unified interface supporting both file paths and readers
	Play(ctx context.Context, source AudioSource) error
}

func validateVolume(volume float32) error {
	if volume < 0.0 || volume > 1.0 {
		err := fmt.Errorf("invalid volume level: %f (must be 0.0-1.0)", volume)
		slog.Error("invalid volume setting", "volume", volume, "error", err)
		return err
	}
	return nil
}

// resolvePCM turns any source into decoded audio for PCM backends.
func resolvePCM(source AudioSource, registry *DecoderRegistry) (*AudioData, error) {
	var (
		data *AudioData
		err  error
	)
	if pcm, ok := source.(PCMSource); ok {
		data, err = pcm.AsAudioData()
	} else {
		data, err = decodeSource(source, registry)
	}
	if err != nil {
		return nil, err
	}

	if data.IsPassthrough() {
		return nil, fmt.Errorf("%w: %s", ErrPassthroughUnsupported, data.Codec)
	}
	return data, nil
}

func decodeSource(source AudioSource, registry *DecoderRegistry) (*AudioData, error) {
	if registry == nil {
		registry = NewDefaultRegistry()
	}

	if path, err := source.AsFilePath(); err == nil {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		return registry.DecodeFile(path, f)
	}

	reader, format, err := source.AsReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get audio data from source: %w", err)
	}
	defer reader.Close()
	return registry.DecodeFile("stream."+format, reader)
}

// applyVolume scales 16-bit little-endian samples in place.
func applyVolume(samples []byte, volume float32) {
	for i := 0; i+1 < len(samples); i += 2 {
		sample := int16(samples[i]) | int16(samples[i+1])<<8
		sample = int16(float32(sample) * volume)
		samples[i] = byte(sample)
		samples[i+1] = byte(sample >> 8)
	}
}
