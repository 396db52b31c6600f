package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var _ MetricStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the financial dataset in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database at path and ensures
// the financial_metrics table exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS financial_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_file TEXT,
		firm TEXT,
		ticker TEXT,
		date TEXT,
		metric TEXT,
		value REAL,
		last_updated TEXT
	)`)
	if err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// LoadCSV appends the unpivoted contents of the CSV file at path.
func (s *SQLiteStore) LoadCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("store: open csv: %w", err)
	}
	defer f.Close()

	records, err := unpivot(f, filepath.Base(path), time.Now())
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO financial_metrics
		(source_file, firm, ticker, date, metric, value, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.SourceFile, rec.Firm, rec.Ticker,
			rec.Date, rec.Metric, rec.Value, rec.LastUpdated); err != nil {
			return 0, fmt.Errorf("store: insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit load: %w", err)
	}
	return len(records), nil
}

// Lookup returns the first matching row for ticker and metric.
func (s *SQLiteStore) Lookup(ctx context.Context, ticker, metric string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT source_file, firm, ticker, date, metric, value, last_updated
		FROM financial_metrics WHERE ticker = ? AND metric = ? LIMIT 1`, ticker, metric)

	var rec Record
	err := row.Scan(&rec.SourceFile, &rec.Firm, &rec.Ticker, &rec.Date,
		&rec.Metric, &rec.Value, &rec.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("store: lookup %s/%s: %w", ticker, metric, ErrNoData)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: lookup %s/%s: %w", ticker, metric, err)
	}
	return rec, nil
}

// Companies lists the distinct firms known to the store.
func (s *SQLiteStore) Companies(ctx context.Context) ([]Company, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT firm, ticker
		FROM financial_metrics ORDER BY firm`)
	if err != nil {
		return nil, fmt.Errorf("store: list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.Firm, &c.Ticker); err != nil {
			return nil, fmt.Errorf("store: scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list companies: %w", err)
	}
	return companies, nil
}

func (s *SQLiteStore) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_file, firm, ticker, date, metric, value, last_updated
		FROM financial_metrics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.SourceFile, &r.Firm, &r.Ticker, &r.Date, &r.Metric, &r.Value, &r.LastUpdated); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
