package cue

import (
	"sync"

	"runtimecue.dev/internal/audio"
)

// Sound is decoded audio with an explicit owner count.
type Sound struct {
	mu   sync.Mutex
	path string
	data *audio.AudioData
	refs int
}

// NewSound wraps data with a single reference held by the caller.
func NewSound(path string, data *audio.AudioData) *Sound {
	return &Sound{path: path, data: data, refs: 1}
}

// Retain adds a reference. It returns false once the sound has been
// released, in which case no reference was taken.
func (s *Sound) Retain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return false
	}
	s.refs++
	return true
}

// Release drops a reference. The sample buffers are dropped with the last
// one. Extra calls are no-ops.
func (s *Sound) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.data = nil
	}
}

// Released reports whether every reference has been dropped.
func (s *Sound) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs == 0
}

// Data returns the decoded audio, or nil after the last Release.
func (s *Sound) Data() *audio.AudioData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Path returns the file the sound was loaded from.
func (s *Sound) Path() string {
	return s.path
}
