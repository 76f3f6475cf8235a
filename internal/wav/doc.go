// Package wav decodes RIFF/WAVE integer PCM held in memory.
//
// Parse locates the "fmt " and "data" chunks, extracts the format
// parameters and copies the sample payload into a new buffer. To16Bit
// truncates 24 and 32-bit samples to canonical 16-bit little-endian PCM,
// and DurationSeconds computes playback length from a 16-bit buffer.
//
// The default scan is a byte-by-byte search for each chunk tag starting
// after the RIFF header. It tolerates unknown or reordered chunks but
// will also match a tag literal that appears inside an earlier chunk's
// payload. ScanChunked walks chunk headers by their declared sizes
// instead.
//
// Nothing in this package retains the caller's input slice.
package wav
