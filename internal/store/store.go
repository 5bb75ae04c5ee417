// Package store provides SQLite persistence for ledger records, forecast
// history and import file tracking.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/fincast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// SaveRecords inserts records, ignoring any that duplicate an existing
// (period, flow_type, category, note) entry. It returns how many were new.
func (s *Store) SaveRecords(records []model.Record, source string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO ledger_records
		(period, flow_type, category, amount, note, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	saved := 0
	for _, r := range records {
		res, err := stmt.Exec(r.Period, string(r.FlowType), r.Category, r.Amount.String(), r.Note, source, now)
		if err != nil {
			return 0, fmt.Errorf("inserting %s %s %s: %w", r.Period, r.FlowType, r.Category, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		saved += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return saved, nil
}

// AllRecords returns every stored record ordered by period.
func (s *Store) AllRecords() ([]model.Record, error) {
	rows, err := s.db.Query(`SELECT period, flow_type, category, amount, note
		FROM ledger_records ORDER BY period, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var flow, amount string
		if err := rows.Scan(&r.Period, &flow, &r.Category, &amount, &r.Note); err != nil {
			return nil, err
		}
		r.FlowType = model.FlowType(flow)
		r.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("decoding amount %q: %w", amount, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecordCount returns the number of stored ledger records.
func (s *Store) RecordCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ledger_records").Scan(&count)
	return count, err
}

// LatestPeriod returns the most recent period on record, or "" when empty.
func (s *Store) LatestPeriod() (string, error) {
	var p sql.NullString
	if err := s.db.QueryRow("SELECT MAX(period) FROM ledger_records").Scan(&p); err != nil {
		return "", err
	}
	return p.String, nil
}

// LastUpdate returns when the most recent record was stored. The zero time
// means no records.
func (s *Store) LastUpdate() (time.Time, error) {
	var ts sql.NullString
	if err := s.db.QueryRow("SELECT MAX(created_at) FROM ledger_records").Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.Valid || ts.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, ts.String)
}

// SavePredictions stores one forecast run. A later run for the same base
// period, flow type and horizon replaces the earlier one.
func (s *Store) SavePredictions(f model.Forecast) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	created := f.GeneratedAt.UTC().Format(time.RFC3339)
	for _, p := range f.Predictions {
		_, err = tx.Exec(`INSERT INTO prediction_history
			(run_id, base_period, flow_type, horizon_days, predicted, lower_bound, upper_bound,
			 r2, mape, model, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (base_period, flow_type, horizon_days) DO UPDATE SET
			 run_id = excluded.run_id,
			 predicted = excluded.predicted,
			 lower_bound = excluded.lower_bound,
			 upper_bound = excluded.upper_bound,
			 r2 = excluded.r2,
			 mape = excluded.mape,
			 model = excluded.model,
			 created_at = excluded.created_at`,
			f.RunID, f.BasePeriod, string(p.FlowType), p.HorizonDays, p.Predicted,
			p.Confidence.Lower, p.Confidence.Upper, p.Accuracy.R2, p.Accuracy.MAPE, p.Model, created,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// PredictionCount returns the number of stored predictions.
func (s *Store) PredictionCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM prediction_history").Scan(&count)
	return count, err
}

// RecentPredictions returns up to limit predictions, newest first.
func (s *Store) RecentPredictions(limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT run_id, base_period, flow_type, horizon_days, predicted,
		lower_bound, upper_bound, r2, mape, model, created_at
		FROM prediction_history
		ORDER BY created_at DESC, base_period DESC, flow_type DESC, horizon_days
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.HistoryEntry
	for rows.Next() {
		var h model.HistoryEntry
		var flow, created string
		err := rows.Scan(&h.RunID, &h.BasePeriod, &flow, &h.HorizonDays, &h.Predicted,
			&h.Confidence.Lower, &h.Confidence.Upper, &h.Accuracy.R2, &h.Accuracy.MAPE,
			&h.Model, &created)
		if err != nil {
			return nil, err
		}
		h.FlowType = model.FlowType(flow)
		h.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, h)
	}
	return out, rows.Err()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile stores the records parsed from one import file, then its
// tracking info.
func (s *Store) SaveFile(path string, records []model.Record, mtimeNs, sizeBytes int64) (int, error) {
	saved, err := s.SaveRecords(records, path)
	if err != nil {
		return 0, err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, path, mtimeNs, sizeBytes)
	if err != nil {
		return saved, err
	}
	return saved, nil
}

// DeleteFileTracker removes a file tracking entry.
func (s *Store) DeleteFileTracker(filePath string) error {
	_, err := s.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}
