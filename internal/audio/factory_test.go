package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestBackendFactoryInterface(t *testing.T) {
	var _ BackendFactory = (*DefaultBackendFactory)(nil)
}

func TestBackendFactory_CreateBackend(t *testing.T) {
	tests := []struct {
		name              string
		backendType       string
		isWSL             bool
		availableCommands []string
		expectedType      string
		expectError       error
	}{
		{"auto - WSL with paplay", "auto", true, []string{"paplay"}, "*audio.SystemCommandBackend", nil},
		{"auto - WSL without commands", "auto", true, nil, "*audio.MalgoBackend", nil},
		{"auto - native", "auto", false, []string{"paplay"}, "*audio.MalgoBackend", nil},
		{"empty defaults to auto", "", false, nil, "*audio.MalgoBackend", nil},
		{"malgo", "malgo", true, []string{"paplay"}, "*audio.MalgoBackend", nil},
		{"oto", "oto", false, nil, "*audio.OtoBackend", nil},
		{"system_command with ffplay", "system_command", false, []string{"ffplay"}, "*audio.SystemCommandBackend", nil},
		{"system_command without commands", "system_command", false, nil, "", ErrBackendNotAvailable},
		{"invalid", "pulseaudio", false, nil, "", ErrInvalidBackendType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := NewBackendFactoryWithDependencies(nil, func() bool { return tt.isWSL }, commandSet(tt.availableCommands...))

			backend, err := factory.CreateBackend(tt.backendType)
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("error = %v, want %v", err, tt.expectError)
				}
				if backend != nil {
					t.Errorf("expected nil backend, got %T", backend)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer backend.Close()

			if got := fmt.Sprintf("%T", backend); got != tt.expectedType {
				t.Errorf("backend type = %s, want %s", got, tt.expectedType)
			}
		})
	}
}

func TestBackendFactory_PassthroughBackend(t *testing.T) {
	factory := NewBackendFactoryWithDependencies(nil, func() bool { return false }, commandSet("aplay", "ffplay"))

	backend, err := factory.CreatePassthroughBackend()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scb, ok := backend.(*SystemCommandBackend)
	if !ok {
		t.Fatalf("expected *SystemCommandBackend, got %T", backend)
	}
	if scb.command != "ffplay" {
		t.Errorf("command = %q, want ffplay", scb.command)
	}

	none := NewBackendFactoryWithDependencies(nil, func() bool { return false }, commandSet())
	if _, err := none.CreatePassthroughBackend(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestBackendFactory_IsValidBackendType(t *testing.T) {
	factory := NewBackendFactory(nil)

	for _, valid := range []string{"", "auto", "malgo", "oto", "system_command"} {
		if !factory.IsValidBackendType(valid) {
			t.Errorf("%q should be valid", valid)
		}
	}
	for _, invalid := range []string{"beep", "AUTO", "system-command"} {
		if factory.IsValidBackendType(invalid) {
			t.Errorf("%q should be invalid", invalid)
		}
	}
}
