package audio

import (
	"errors"
	"fmt"
	"log/slog"
)

// Backend type names accepted by CreateBackend.
const (
	BackendAuto          = "auto"
	BackendMalgo         = "malgo"
	BackendOto           = "oto"
	BackendSystemCommand = "system_command"
)

// BackendFactory creates AudioBackend instances based on configuration
type BackendFactory interface {
	CreateBackend(backendType string) (AudioBackend, error)
	GetSupportedBackends() []string
	IsValidBackendType(backendType string) bool
}

// DefaultBackendFactory implements BackendFactory with platform detection
type DefaultBackendFactory struct {
	registry      *DecoderRegistry
	isWSLFunc     func() bool
	commandExists func(string) bool
}

// Factory errors
var (
	ErrInvalidBackendType    = errors.New("invalid backend type")
	ErrBackendCreationFailed = errors.New("backend creation failed")
)

// NewBackendFactory creates a factory with real platform detection. The
// registry is handed to PCM backends for decoding file sources.
func NewBackendFactory(registry *DecoderRegistry) *DefaultBackendFactory {
	return &DefaultBackendFactory{
		registry:      registry,
		isWSLFunc:     IsWSL,
		commandExists: CommandExists,
	}
}

// NewBackendFactoryWithDependencies creates a factory with injected dependencies for testing
func NewBackendFactoryWithDependencies(registry *DecoderRegistry, isWSLFunc func() bool, commandExists func(string) bool) *DefaultBackendFactory {
	return &DefaultBackendFactory{
		registry:      registry,
		isWSLFunc:     isWSLFunc,
		commandExists: commandExists,
	}
}

// CreateBackend creates an AudioBackend instance based on the specified type
func (f *DefaultBackendFactory) CreateBackend(backendType string) (AudioBackend, error) {
	if backendType == "" {
		backendType = BackendAuto
	}

	slog.Debug("creating audio backend", "type", backendType)

	switch backendType {
	case BackendAuto:
		return f.createAutoBackend()
	case BackendSystemCommand:
		return f.createSystemCommandBackend()
	case BackendMalgo:
		return f.createMalgoBackend(), nil
	case BackendOto:
		return f.createOtoBackend(), nil
	default:
		slog.Error("invalid backend type requested", "type", backendType)
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackendType, backendType)
	}
}

// CreatePassthroughBackend returns a backend able to play undecoded audio.
func (f *DefaultBackendFactory) CreatePassthroughBackend() (AudioBackend, error) {
	slog.Debug("creating backend for passthrough audio")
	return f.createSystemCommandBackend()
}

// GetSupportedBackends returns a list of all supported backend types
func (f *DefaultBackendFactory) GetSupportedBackends() []string {
	return []string{BackendAuto, BackendSystemCommand, BackendMalgo, BackendOto}
}

// IsValidBackendType checks if a backend type is supported
func (f *DefaultBackendFactory) IsValidBackendType(backendType string) bool {
	// Empty string is valid (defaults to auto)
	if backendType == "" {
		return true
	}

	for _, supportedType := range f.GetSupportedBackends() {
		if backendType == supportedType {
			return true
		}
	}
	return false
}

// createAutoBackend automatically selects the best backend for the current platform
func (f *DefaultBackendFactory) createAutoBackend() (AudioBackend, error) {
	optimalType := detectOptimalBackendWithChecker(f.isWSLFunc(), f.commandExists)
	slog.Debug("auto-detection result", "selected_type", optimalType)

	switch optimalType {
	case BackendSystemCommand:
		return f.createSystemCommandBackend()
	case BackendMalgo:
		return f.createMalgoBackend(), nil
	default:
		slog.Error("auto-detection returned invalid backend type", "type", optimalType)
		return nil, fmt.Errorf("%w: auto-detection failed", ErrBackendCreationFailed)
	}
}

// createSystemCommandBackend creates a SystemCommandBackend with the best available command
func (f *DefaultBackendFactory) createSystemCommandBackend() (AudioBackend, error) {
	preferredCommand := getPreferredSystemCommandWithChecker(f.commandExists)
	if preferredCommand == "" {
		slog.Error("no system audio commands available")
		return nil, fmt.Errorf("%w: no system audio commands found", ErrBackendNotAvailable)
	}

	slog.Debug("system command backend created", "command", preferredCommand)
	return NewSystemCommandBackend(preferredCommand), nil
}

func (f *DefaultBackendFactory) createMalgoBackend() AudioBackend {
	slog.Debug("creating malgo backend")
	return NewMalgoBackend(f.registry)
}

func (f *DefaultBackendFactory) createOtoBackend() AudioBackend {
	slog.Debug("creating oto backend")
	return NewOtoBackend(f.registry)
}
