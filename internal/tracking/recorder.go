package tracking

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"runtimecue.dev/internal/cue"
)

// Recorder writes load attempts to the history database. After the first
// database error it disables itself so a broken history never affects
// playback.
type Recorder struct {
	mu       sync.Mutex
	db       *sql.DB
	disabled bool
	now      func() time.Time
}

// NewRecorder creates a Recorder writing to db.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{
		db:  db,
		now: time.Now,
	}
}

// Record inserts one row for event.
func (r *Recorder) Record(event cue.LoadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disabled {
		return
	}

	var (
		channels, sampleRate, bits int
		durationMs, pcmBytes       int64
		passthrough                int
		errText                    sql.NullString
	)
	if data := event.Data; data != nil {
		channels = int(data.Channels)
		sampleRate = int(data.SampleRate)
		bits = data.SourceBitDepth
		durationMs = int64(data.Duration * 1000)
		pcmBytes = int64(len(data.Samples))
		if data.IsPassthrough() {
			passthrough = 1
		}
	}
	if event.Err != nil {
		errText = sql.NullString{String: event.Err.Error(), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO load_events (timestamp, path, format, channels, sample_rate, bits_per_sample,
			duration_ms, pcm_bytes, file_bytes, elapsed_us, passthrough, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.now().Unix(),
		event.Path,
		event.Format,
		channels,
		sampleRate,
		bits,
		durationMs,
		pcmBytes,
		event.Size,
		event.Elapsed.Microseconds(),
		passthrough,
		errText)
	if err != nil {
		slog.Warn("load history disabled after write failure", "error", err, "path", event.Path)
		r.disabled = true
		return
	}

	slog.Debug("load recorded", "path", event.Path, "failed", event.Err != nil)
}

// Disabled reports whether recording stopped after an error.
func (r *Recorder) Disabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled
}

// GetHook returns Record as a cue.LoadHook.
func (r *Recorder) GetHook() cue.LoadHook {
	return r.Record
}
