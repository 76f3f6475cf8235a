// Package cue loads audio files at runtime and plays them through an
// audio backend.
//
// A SoundCue holds at most one decoded Sound. Sounds are reference counted:
// the cue owns one reference and playback takes another for as long as the
// backend is using the samples, so a cue can be cleared or reloaded while a
// previous sound is still playing.
package cue
