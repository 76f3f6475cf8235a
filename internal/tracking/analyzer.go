package tracking

import (
	"database/sql"
	"fmt"
	"time"
)

// LoadRecord is one row of the load history
type LoadRecord struct {
	ID            int64         `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Path          string        `json:"path"`
	Format        string        `json:"format,omitempty"`
	Channels      int           `json:"channels"`
	SampleRate    int           `json:"sample_rate"`
	BitsPerSample int           `json:"bits_per_sample"`
	Duration      time.Duration `json:"duration"`
	PCMBytes      int64         `json:"pcm_bytes"`
	FileBytes     int64         `json:"file_bytes"`
	Elapsed       time.Duration `json:"elapsed"`
	Passthrough   bool          `json:"passthrough"`
	Error         string        `json:"error,omitempty"`
}

// Failed reports whether the load returned an error.
func (r LoadRecord) Failed() bool {
	return r.Error != ""
}

// FailedFile groups failed loads of one path
type FailedFile struct {
	Path      string    `json:"path"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	LastSeen  time.Time `json:"last_seen"`
}

// LoadSummary provides overall history statistics
type LoadSummary struct {
	TotalLoads         int            `json:"total_loads"`
	FailedLoads        int            `json:"failed_loads"`
	UniqueFiles        int            `json:"unique_files"`
	FormatDistribution map[string]int `json:"format_distribution"` // Format -> successful loads
}

// RecentLoads returns matching loads, newest first
func RecentLoads(db *sql.DB, filter QueryFilter) ([]LoadRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT id, timestamp, path, format, channels, sample_rate, bits_per_sample,
			duration_ms, pcm_bytes, file_bytes, elapsed_us, passthrough, error
		FROM load_events`

	whereClause, args := filter.BuildWhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT %d", filter.limit())

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query load history: %w", err)
	}
	defer rows.Close()

	var results []LoadRecord
	for rows.Next() {
		var (
			rec         LoadRecord
			ts          int64
			durationMs  int64
			elapsedUs   int64
			passthrough int
			errText     sql.NullString
		)
		err := rows.Scan(&rec.ID, &ts, &rec.Path, &rec.Format, &rec.Channels, &rec.SampleRate,
			&rec.BitsPerSample, &durationMs, &rec.PCMBytes, &rec.FileBytes, &elapsedUs, &passthrough, &errText)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load history row: %w", err)
		}

		rec.Timestamp = time.Unix(ts, 0)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.Elapsed = time.Duration(elapsedUs) * time.Microsecond
		rec.Passthrough = passthrough == 1
		if errText.Valid {
			rec.Error = errText.String
		}
		results = append(results, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load history rows: %w", err)
	}

	return results, nil
}

// GetFailedFiles returns paths whose loads failed, most attempts first
func GetFailedFiles(db *sql.DB, filter QueryFilter) ([]FailedFile, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	filter.FailedOnly = true
	whereClause, args := filter.BuildWhereClause()

	query := `
		SELECT
			path,
			COUNT(*) as attempts,
			MAX(timestamp) as last_seen,
			(SELECT e2.error FROM load_events e2
				WHERE e2.path = e.path AND e2.error IS NOT NULL
				ORDER BY e2.timestamp DESC, e2.id DESC LIMIT 1) as last_error
		FROM load_events e
		WHERE ` + whereClause + `
		GROUP BY path
		ORDER BY attempts DESC, last_seen DESC`
	query += fmt.Sprintf(" LIMIT %d", filter.limit())

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed files: %w", err)
	}
	defer rows.Close()

	var results []FailedFile
	for rows.Next() {
		var (
			f        FailedFile
			lastSeen int64
		)
		if err := rows.Scan(&f.Path, &f.Attempts, &lastSeen, &f.LastError); err != nil {
			return nil, fmt.Errorf("failed to scan failed file row: %w", err)
		}
		f.LastSeen = time.Unix(lastSeen, 0)
		results = append(results, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failed file rows: %w", err)
	}

	return results, nil
}

// GetLoadSummary returns overall history statistics
func GetLoadSummary(db *sql.DB, filter QueryFilter) (*LoadSummary, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	whereClause, args := filter.BuildWhereClause()
	where := ""
	if whereClause != "" {
		where = " WHERE " + whereClause
	}

	summaryQuery := `
		SELECT
			COUNT(*) as total_loads,
			COALESCE(SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END), 0) as failed_loads,
			COUNT(DISTINCT path) as unique_files
		FROM load_events` + where

	var summary LoadSummary
	err := db.QueryRow(summaryQuery, args...).Scan(&summary.TotalLoads, &summary.FailedLoads, &summary.UniqueFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to query load summary: %w", err)
	}

	distributionQuery := `
		SELECT format, COUNT(*) as count
		FROM load_events`
	if whereClause != "" {
		distributionQuery += " WHERE " + whereClause + " AND error IS NULL"
	} else {
		distributionQuery += " WHERE error IS NULL"
	}
	distributionQuery += `
		GROUP BY format
		ORDER BY count DESC`

	rows, err := db.Query(distributionQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query format distribution: %w", err)
	}
	defer rows.Close()

	summary.FormatDistribution = make(map[string]int)
	for rows.Next() {
		var format string
		var count int
		if err := rows.Scan(&format, &count); err != nil {
			return nil, fmt.Errorf("failed to scan format distribution: %w", err)
		}
		summary.FormatDistribution[format] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating format distribution rows: %w", err)
	}

	return &summary, nil
}
