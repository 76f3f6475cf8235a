package wav

import (
	"errors"
	"fmt"
)

// Decode errors. Every error returned by this package wraps exactly one of these.
var (
	ErrTooSmall                = errors.New("wav data too small")
	ErrNotRiff                 = errors.New("not a RIFF container")
	ErrNotWave                 = errors.New("not a WAVE file")
	ErrFmtChunkNotFound        = errors.New("fmt chunk not found")
	ErrUnsupportedFormatTag    = errors.New("unsupported format tag")
	ErrDataChunkNotFound       = errors.New("data chunk not found")
	ErrDataChunkTruncated      = errors.New("data chunk truncated")
	ErrUnsupportedBitDepth     = errors.New("unsupported bit depth")
	ErrInvalidFormatParameters = errors.New("invalid format parameters")
)

// DecodeError pairs a decode error kind with a diagnostic message.
type DecodeError struct {
	Kind   error
	Detail string
}

func newError(kind error, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

// Unwrap lets errors.Is match the kind sentinel.
func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// KindOf returns the sentinel kind of err, or nil if err did not come from this package.
func KindOf(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return nil
}
