package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"minkowski3d/internal/models"
)

// RecordMeasurement appends one measurement to the log under runID.
func (db *DB) RecordMeasurement(runID uuid.UUID, m models.Measurement) error {
	_, err := db.Exec(`
		INSERT INTO measurements (
			run_id, name, width, height, depth, voxels, method,
			volume, surface, breadth, euler, elapsed_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID.String(), m.Name, m.Shape.X, m.Shape.Y, m.Shape.Z, m.Voxels, string(m.Method),
		m.Features.V, m.Features.S, m.Features.B, m.Features.Xi, m.Elapsed.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record measurement %s: %w", m.Name, err)
	}
	return nil
}

// Measurements returns the measurements of one run in insertion order.
func (db *DB) Measurements(runID uuid.UUID) ([]models.Measurement, error) {
	rows, err := db.Query(`
		SELECT name, width, height, depth, voxels, method,
		       volume, surface, breadth, euler, elapsed_ns
		FROM measurements
		WHERE run_id = ?
		ORDER BY measurement_id`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var out []models.Measurement
	for rows.Next() {
		var m models.Measurement
		var method string
		var elapsed int64
		if err := rows.Scan(
			&m.Name, &m.Shape.X, &m.Shape.Y, &m.Shape.Z, &m.Voxels, &method,
			&m.Features.V, &m.Features.S, &m.Features.B, &m.Features.Xi, &elapsed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		m.Method = models.Method(method)
		m.Elapsed = time.Duration(elapsed)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Runs returns the distinct run IDs in the log, oldest first.
func (db *DB) Runs() ([]uuid.UUID, error) {
	rows, err := db.Query(`
		SELECT run_id FROM measurements
		GROUP BY run_id
		ORDER BY MIN(measurement_id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", s, err)
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}
