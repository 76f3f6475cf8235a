package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// streamInfo is the header metadata a header scan can recover without decoding.
type streamInfo struct {
	channels   uint32
	sampleRate uint32
	duration   float32
}

// PassthroughDecoder keeps compressed audio undecoded. It only scans the
// stream headers so the metadata can be reported; playback goes through a
// backend that accepts the encoded file directly.
type PassthroughDecoder struct {
	formatName string
	codec      string
	extensions []string
	readInfo   func(data []byte) (streamInfo, error)
}

// NewMp3Decoder creates a passthrough decoder for MP3.
func NewMp3Decoder() *PassthroughDecoder {
	slog.Debug("creating new MP3 passthrough decoder instance")
	return &PassthroughDecoder{
		formatName: "MP3",
		codec:      "mp3",
		extensions: []string{".mp3", ".mpeg"},
		readInfo:   readMp3Info,
	}
}

// NewOggDecoder creates a passthrough decoder for Ogg Vorbis.
func NewOggDecoder() *PassthroughDecoder {
	slog.Debug("creating new OGG passthrough decoder instance")
	return &PassthroughDecoder{
		formatName: "OGG",
		codec:      "ogg",
		extensions: []string{".ogg", ".oga"},
		readInfo:   readOggInfo,
	}
}

// Decode reads the whole payload and returns it as passthrough AudioData.
// Header read failures leave the metadata zero but do not fail the decode.
func (d *PassthroughDecoder) Decode(reader io.Reader) (*AudioData, error) {
	slog.Debug("starting passthrough decode", "format", d.formatName)

	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read encoded data", "format", d.formatName, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	if len(data) == 0 {
		slog.Error("empty encoded data", "format", d.formatName)
		return nil, ErrInvalidData
	}

	audioData := &AudioData{
		Encoded: data,
		Codec:   d.codec,
	}

	info, err := d.readInfo(data)
	if err != nil {
		slog.Warn("stream header read failed, metadata unavailable",
			"format", d.formatName,
			"error", err)
	} else {
		audioData.Channels = info.channels
		audioData.SampleRate = info.sampleRate
		audioData.Duration = info.duration
	}

	if meta, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		audioData.Title = strings.TrimSpace(meta.Title())
		if artist := strings.TrimSpace(meta.Artist()); artist != "" && audioData.Title != "" {
			audioData.Title = artist + " - " + audioData.Title
		}
	} else {
		slog.Debug("no tag metadata", "format", d.formatName, "error", err)
	}

	slog.Info("passthrough decode completed",
		"format", d.formatName,
		"encoded_bytes", len(data),
		"channels", audioData.Channels,
		"sample_rate", audioData.SampleRate,
		"duration_ms", int(audioData.Duration*1000),
		"title", audioData.Title)

	return audioData, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *PassthroughDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	canDecode := false
	for _, ext := range d.extensions {
		if strings.HasSuffix(lower, ext) {
			canDecode = true
			break
		}
	}

	slog.Debug("passthrough decoder file check",
		"format", d.formatName,
		"filename", filename,
		"can_decode", canDecode)

	return canDecode
}

// FormatName returns the name of the format this decoder handles
func (d *PassthroughDecoder) FormatName() string {
	return d.formatName
}

// readMp3Info reads the frame index. go-mp3 always reports 16-bit stereo.
func readMp3Info(data []byte) (streamInfo, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return streamInfo{}, fmt.Errorf("mp3 header: %w", err)
	}
	info := streamInfo{channels: 2, sampleRate: uint32(dec.SampleRate())}
	if length := dec.Length(); length > 0 && dec.SampleRate() > 0 {
		info.duration = float32(float64(length) / float64(dec.SampleRate()*4))
	}
	return info, nil
}

// readOggInfo scans the Ogg pages for the final granule position.
func readOggInfo(data []byte) (streamInfo, error) {
	length, format, err := oggvorbis.GetLength(bytes.NewReader(data))
	if err != nil {
		return streamInfo{}, fmt.Errorf("ogg header: %w", err)
	}
	info := streamInfo{
		channels:   uint32(format.Channels),
		sampleRate: uint32(format.SampleRate),
	}
	if format.SampleRate > 0 {
		info.duration = float32(float64(length) / float64(format.SampleRate))
	}
	return info, nil
}
