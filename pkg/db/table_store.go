package db

import (
	"database/sql"
	"errors"
	"fmt"

	"minkowski3d/pkg/minkowski"
)

// TableStore keeps one lookup table in the database. It satisfies
// cache.Store.
type TableStore struct {
	db *DB
}

// TableStore returns the lookup table store backed by db.
func (db *DB) TableStore() *TableStore {
	return &TableStore{db: db}
}

// Load returns the stored table, or nil when none has been saved.
func (s *TableStore) Load() (*minkowski.Table, error) {
	var shapeText string
	err := s.db.QueryRow(`SELECT value FROM lookup_meta WHERE key = 'shape'`).Scan(&shapeText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table shape: %w", err)
	}

	var shape minkowski.Shape
	if _, err := fmt.Sscanf(shapeText, "%dx%dx%d", &shape.X, &shape.Y, &shape.Z); err != nil {
		return nil, fmt.Errorf("failed to parse table shape %q: %w", shapeText, err)
	}
	if shape != minkowski.WindowShape {
		return nil, fmt.Errorf("%w: stored table is for %s, classifier expects %s",
			minkowski.ErrConfigurationMismatch, shape, minkowski.WindowShape)
	}

	rows, err := s.db.Query(`SELECT pattern, dn3, dn2, dn1, dn0 FROM lookup_entries ORDER BY pattern`)
	if err != nil {
		return nil, fmt.Errorf("failed to query table entries: %w", err)
	}
	defer rows.Close()

	entries := make([]minkowski.Increments, 1<<shape.Cells())
	count := 0
	for rows.Next() {
		var pattern int64
		var inc minkowski.Increments
		if err := rows.Scan(&pattern, &inc.N3, &inc.N2, &inc.N1, &inc.N0); err != nil {
			return nil, fmt.Errorf("failed to scan table entry: %w", err)
		}
		if pattern < 0 || pattern >= int64(len(entries)) {
			return nil, fmt.Errorf("%w: pattern %d out of range", minkowski.ErrConfigurationMismatch, pattern)
		}
		entries[pattern] = inc
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table entries: %w", err)
	}
	if count != len(entries) {
		return nil, fmt.Errorf("%w: stored table has %d entries, want %d",
			minkowski.ErrConfigurationMismatch, count, len(entries))
	}
	return minkowski.NewTable(shape, entries)
}

// Save replaces the stored table in a single transaction.
func (s *TableStore) Save(table *minkowski.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM lookup_entries`); err != nil {
		return fmt.Errorf("failed to clear table entries: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO lookup_meta (key, value) VALUES ('shape', ?)`, table.Shape().String()); err != nil {
		return fmt.Errorf("failed to store table shape: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO lookup_entries (pattern, dn3, dn2, dn1, dn0) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var insertErr error
	table.Range(func(p minkowski.Pattern, inc minkowski.Increments) bool {
		_, insertErr = stmt.Exec(int64(p), inc.N3, inc.N2, inc.N1, inc.N0)
		return insertErr == nil
	})
	if insertErr != nil {
		return fmt.Errorf("failed to insert table entry: %w", insertErr)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table: %w", err)
	}
	return nil
}
