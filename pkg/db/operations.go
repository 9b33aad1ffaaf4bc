package db

import (
	"fmt"
	"time"
)

// Resolution statuses.
const (
	StatusResolved    = "resolved"
	StatusCached      = "cached"
	StatusBlacklisted = "blacklisted"
	StatusSkipped     = "skipped"
	StatusError       = "error"
)

// Resolution is one recorded Resolve call.
type Resolution struct {
	ResolutionID    int64
	Name            string
	URL             string
	Status          string
	CandidatesTried int
	Duration        time.Duration
	Error           string
	CreatedAt       time.Time
	Probes          []Probe
}

// Probe is one candidate URL checked during a resolution.
type Probe struct {
	Position int
	URL      string
	Valid    bool
	Error    string
}

// RecordResolution stores r and its probes, returning the resolution_id.
func (db *DB) RecordResolution(r Resolution) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
		INSERT INTO resolutions (name, url, status, candidates_tried, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.Name, r.URL, r.Status, r.CandidatesTried, r.Duration.Milliseconds(), r.Error)
	if err != nil {
		return 0, fmt.Errorf("failed to insert resolution: %w", err)
	}

	resolutionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get resolution ID: %w", err)
	}

	for _, p := range r.Probes {
		if _, err := tx.Exec(`
			INSERT INTO candidate_probes (resolution_id, position, url, valid, error)
			VALUES (?, ?, ?, ?, ?)
		`, resolutionID, p.Position, p.URL, p.Valid, p.Error); err != nil {
			return 0, fmt.Errorf("failed to insert probe: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit resolution: %w", err)
	}
	return resolutionID, nil
}

// ListResolutions returns the most recent resolutions, newest first,
// without their probes.
func (db *DB) ListResolutions(limit int) ([]Resolution, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT resolution_id, name, url, status, candidates_tried, duration_ms, error, created_at
		FROM resolutions
		ORDER BY resolution_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		var r Resolution
		var durationMs int64
		if err := rows.Scan(&r.ResolutionID, &r.Name, &r.URL, &r.Status, &r.CandidatesTried, &durationMs, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resolution: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetProbes returns the probes of one resolution in probe order.
func (db *DB) GetProbes(resolutionID int64) ([]Probe, error) {
	rows, err := db.Query(`
		SELECT position, url, valid, error
		FROM candidate_probes
		WHERE resolution_id = ?
		ORDER BY position
	`, resolutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query probes: %w", err)
	}
	defer rows.Close()

	var out []Probe
	for rows.Next() {
		var p Probe
		if err := rows.Scan(&p.Position, &p.URL, &p.Valid, &p.Error); err != nil {
			return nil, fmt.Errorf("failed to scan probe: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResolutionStats counts resolutions per status.
func (db *DB) ResolutionStats() (map[string]int, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM resolutions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
