package tracking

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

// DefaultLimit caps history listings when no limit is given.
const DefaultLimit = 20

// ErrInvalidSince is returned by ParseSince for input it cannot interpret.
var ErrInvalidSince = errors.New("invalid since value")

// QueryFilter selects rows from the load history
type QueryFilter struct {
	Since      time.Time // Lower bound (inclusive), zero means no bound
	Path       string    // Exact path match
	Format     string    // Decoder format name, e.g. "WAV"
	FailedOnly bool      // Only loads that returned an error

	Limit int // Maximum results (default: DefaultLimit)
}

// BuildWhereClause constructs SQL WHERE clause and arguments from QueryFilter
func (q *QueryFilter) BuildWhereClause() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if !q.Since.IsZero() {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, q.Since.Unix())
	}

	if q.Path != "" {
		clauses = append(clauses, "path = ?")
		args = append(args, q.Path)
	}

	if q.Format != "" {
		clauses = append(clauses, "format = ? COLLATE NOCASE")
		args = append(args, q.Format)
	}

	if q.FailedOnly {
		clauses = append(clauses, "error IS NOT NULL")
	}

	whereClause := strings.Join(clauses, " AND ")
	slog.Debug("built where clause", "clause", whereClause, "arg_count", len(args))
	return whereClause, args
}

func (q *QueryFilter) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// ParseSince turns a --since value into a lower time bound. It accepts Go
// durations ("90m"), day counts ("7d"), the presets understood by
// ParseDatePreset and natural language ("last monday"). Empty input means
// no bound.
func ParseSince(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	if d, err := time.ParseDuration(input); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("%w: negative duration %q", ErrInvalidSince, input)
		}
		return now.Add(-d), nil
	}

	if days, ok := strings.CutSuffix(input, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			if n < 0 {
				return time.Time{}, fmt.Errorf("%w: negative day count %q", ErrInvalidSince, input)
			}
			return now.AddDate(0, 0, -n), nil
		}
	}

	if start, _, err := ParseDatePreset(input, now); err == nil {
		return start, nil
	}

	result, err := naturaldate.Parse(input, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidSince, input, err)
	}
	// go-naturaldate returns the reference time for text it does not recognise.
	if !result.Before(now) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSince, input)
	}

	slog.Debug("parsed natural language date", "input", input, "result", result)
	return result, nil
}

// ParseDatePreset converts date preset strings to time ranges
func ParseDatePreset(preset string, now time.Time) (start, end time.Time, err error) {
	switch preset {
	case "today":
		start = beginningOfDay(now)
		end = now
	case "yesterday":
		yesterday := now.AddDate(0, 0, -1)
		start = beginningOfDay(yesterday)
		end = beginningOfDay(now)
	case "week", "this-week":
		start = beginningOfWeek(now)
		end = now
	case "last-week":
		start = beginningOfWeek(now).AddDate(0, 0, -7)
		end = beginningOfWeek(now)
	case "month", "this-month":
		start = beginningOfMonth(now)
		end = now
	case "all", "all-time":
		start = time.Time{} // Zero value = no lower bound
		end = now
	default:
		err = fmt.Errorf("unknown preset: %s", preset)
		return
	}

	slog.Debug("parsed date preset", "preset", preset, "start", start, "end", end)
	return
}

// beginningOfDay returns time at start of day (00:00:00)
func beginningOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// beginningOfWeek returns time at start of week (Monday 00:00:00)
func beginningOfWeek(t time.Time) time.Time {
	weekday := t.Weekday()
	if weekday == time.Sunday {
		weekday = 7 // Treat Sunday as 7 to make Monday = 1
	}
	monday := t.AddDate(0, 0, -int(weekday-1))
	return beginningOfDay(monday)
}

// beginningOfMonth returns time at start of month (1st day 00:00:00)
func beginningOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
