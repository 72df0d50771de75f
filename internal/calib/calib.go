// Package calib stores per-sensor bias/gain calibration constants in
// a small SQLite-backed table read at init, grounded on the teacher's
// own sqlx-backed receiver options store.
package calib

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Row is one sensor's bias/gain calibration, keyed by sensor name and
// axis. Axis is 0 for single-axis sensors (pressure) and 0..3 for the
// accelerometer's four axes.
type Row struct {
	Sensor string  `db:"sensor"`
	Axis   int     `db:"axis"`
	Bias   float64 `db:"bias"`
	Gain   float64 `db:"gain"`
}

const schema = `
CREATE TABLE IF NOT EXISTS calibration (
	sensor TEXT NOT NULL,
	axis   INTEGER NOT NULL,
	bias   REAL NOT NULL,
	gain   REAL NOT NULL,
	PRIMARY KEY (sensor, axis)
);`

// Store wraps a sqlite-backed calibration table.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures the calibration table exists.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "calib: open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "calib: create schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Upsert writes one calibration row, replacing any existing row for
// the same (sensor, axis) key.
func (s *Store) Upsert(r Row) error {
	_, err := s.db.NamedExec(
		`INSERT INTO calibration (sensor, axis, bias, gain) VALUES (:sensor, :axis, :bias, :gain)
		 ON CONFLICT(sensor, axis) DO UPDATE SET bias=excluded.bias, gain=excluded.gain`,
		r,
	)
	if err != nil {
		return errors.Wrapf(err, "calib: upsert %s axis %d", r.Sensor, r.Axis)
	}
	return nil
}

// Load returns every calibration row for the named sensor, ordered by
// axis.
func (s *Store) Load(sensor string) ([]Row, error) {
	var rows []Row
	err := s.db.Select(&rows, `SELECT sensor, axis, bias, gain FROM calibration WHERE sensor = ? ORDER BY axis`, sensor)
	if err != nil {
		return nil, errors.Wrapf(err, "calib: load %s", sensor)
	}
	return rows, nil
}
