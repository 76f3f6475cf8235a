package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type failingHandler struct {
	calls int
}

func (f *failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (f *failingHandler) Handle(context.Context, slog.Record) error {
	f.calls++
	return errors.New("disk full")
}
func (f *failingHandler) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f *failingHandler) WithGroup(string) slog.Handler      { return f }

func TestMultiLevelHandlerSeparatesLevels(t *testing.T) {
	var stderrBuf, fileBuf bytes.Buffer
	stderrHandler := slog.NewTextHandler(&stderrBuf, &slog.HandlerOptions{Level: slog.LevelWarn})
	fileHandler := slog.NewTextHandler(&fileBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(NewMultiLevelHandler(stderrHandler, fileHandler))
	logger.Debug("decoder selected")
	logger.Info("sound loaded")
	logger.Warn("data chunk size exceeds buffer")
	logger.Error("decode failed")

	stderrOutput := stderrBuf.String()
	for _, msg := range []string{"decoder selected", "sound loaded"} {
		if strings.Contains(stderrOutput, msg) {
			t.Errorf("stderr should not contain %q, got: %s", msg, stderrOutput)
		}
	}
	for _, msg := range []string{"data chunk size exceeds buffer", "decode failed"} {
		if !strings.Contains(stderrOutput, msg) {
			t.Errorf("stderr should contain %q, got: %s", msg, stderrOutput)
		}
	}

	fileOutput := fileBuf.String()
	for _, msg := range []string{"decoder selected", "sound loaded", "data chunk size exceeds buffer", "decode failed"} {
		if !strings.Contains(fileOutput, msg) {
			t.Errorf("file should contain %q, got: %s", msg, fileOutput)
		}
	}
}

func TestMultiLevelHandlerEnabled(t *testing.T) {
	var buf bytes.Buffer
	warnOnly := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	errorOnly := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})
	h := NewMultiLevelHandler(warnOnly, errorOnly)
	ctx := context.Background()

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(ctx, tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestMultiLevelHandlerContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	failing := &failingHandler{}
	h := NewMultiLevelHandler(failing, slog.NewTextHandler(&buf, nil))

	r := slog.NewRecord(testTime, slog.LevelError, "history write failed", 0)
	err := h.Handle(context.Background(), r)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected joined handler error, got %v", err)
	}
	if failing.calls != 1 {
		t.Errorf("failing handler called %d times, want 1", failing.calls)
	}
	if !strings.Contains(buf.String(), "history write failed") {
		t.Errorf("second handler should still receive the record, got: %s", buf.String())
	}
}

func TestMultiLevelHandlerAttrsAndGroups(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := NewMultiLevelHandler(
		slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("backend", "malgo")}).WithGroup("cue"))
	logger.Error("playback failed", "path", "ding.wav")

	for i, out := range []string{buf1.String(), buf2.String()} {
		if !strings.Contains(out, "backend=malgo") {
			t.Errorf("handler %d missing attribute, got: %s", i, out)
		}
		if !strings.Contains(out, "cue.path=ding.wav") {
			t.Errorf("handler %d missing grouped attribute, got: %s", i, out)
		}
	}
}

func TestMultiLevelHandlerNoHandlers(t *testing.T) {
	h := NewMultiLevelHandler(nil, nil)
	if h.Enabled(context.Background(), slog.LevelError) {
		t.Error("handler without children should not be enabled")
	}
	slog.New(h).Error("dropped")
}
