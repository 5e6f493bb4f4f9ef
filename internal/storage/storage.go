// Package storage keeps the per-day distance history in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// KeyLastSave is the settings key holding the RFC 3339 timestamp of the
// most recent state snapshot.
const KeyLastSave = "last_save"

// Store wraps SQLite access for distance history and settings.
type Store struct {
	db *sql.DB
}

// DayDistance is one day's accumulated distance.
type DayDistance struct {
	Date       string
	DistanceMM float64
}

// New opens or creates the database at path and applies the schema.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_distance (
			date TEXT PRIMARY KEY,
			distance_mm REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddDailyDistance adds mm to the rollup for the given date (2006-01-02).
func (s *Store) AddDailyDistance(date string, mm float64) error {
	if mm <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO daily_distance (date, distance_mm) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET distance_mm = distance_mm + excluded.distance_mm`,
		date, mm)
	return err
}

// GetDayDistance returns the rollup for one date, zero when absent.
func (s *Store) GetDayDistance(date string) (float64, error) {
	var mm float64
	err := s.db.QueryRow(
		`SELECT distance_mm FROM daily_distance WHERE date = ?`, date).Scan(&mm)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return mm, nil
}

// GetWeekDistances returns the last 7 days, oldest first, with zero
// entries for days that have no recorded movement.
func (s *Store) GetWeekDistances() ([]DayDistance, error) {
	days := make([]DayDistance, 0, 7)
	now := time.Now()
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		mm, err := s.GetDayDistance(date)
		if err != nil {
			return nil, err
		}
		days = append(days, DayDistance{Date: date, DistanceMM: mm})
	}
	return days, nil
}

// GetBusiestDays returns the days with the most travel, descending.
func (s *Store) GetBusiestDays(limit int) ([]DayDistance, error) {
	rows, err := s.db.Query(`
		SELECT date, distance_mm FROM daily_distance
		WHERE distance_mm > 0
		ORDER BY distance_mm DESC, date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DayDistance
	for rows.Next() {
		var d DayDistance
		if err := rows.Scan(&d.Date, &d.DistanceMM); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SetSetting stores a settings value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// GetSetting returns a settings value, empty string when absent.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
