package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ MetricStore = (*PostgresStore)(nil)

// PostgresStore keeps the financial dataset in PostgreSQL. It exists
// for deployments that already run Postgres for the semantic index so
// that a single database serves both.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database at dsn and ensures the
// financial_metrics table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS financial_metrics (
		id BIGSERIAL PRIMARY KEY,
		source_file TEXT,
		firm TEXT,
		ticker TEXT,
		date TEXT,
		metric TEXT,
		value DOUBLE PRECISION,
		last_updated TEXT
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// LoadCSV appends the unpivoted contents of the CSV file at path.
func (s *PostgresStore) LoadCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("store: open csv: %w", err)
	}
	defer f.Close()

	records, err := unpivot(f, filepath.Base(path), time.Now())
	if err != nil {
		return 0, err
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{rec.SourceFile, rec.Firm, rec.Ticker, rec.Date,
			rec.Metric, rec.Value, rec.LastUpdated}
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"financial_metrics"},
		[]string{"source_file", "firm", "ticker", "date", "metric", "value", "last_updated"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("store: copy rows: %w", err)
	}
	return int(n), nil
}

// Lookup returns the first matching row for ticker and metric.
func (s *PostgresStore) Lookup(ctx context.Context, ticker, metric string) (Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT source_file, firm, ticker, date, metric, value, last_updated
		FROM financial_metrics WHERE ticker = $1 AND metric = $2 ORDER BY id LIMIT 1`, ticker, metric)

	var rec Record
	err := row.Scan(&rec.SourceFile, &rec.Firm, &rec.Ticker, &rec.Date,
		&rec.Metric, &rec.Value, &rec.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("store: lookup %s/%s: %w", ticker, metric, ErrNoData)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: lookup %s/%s: %w", ticker, metric, err)
	}
	return rec, nil
}

// Companies lists the distinct firms known to the store.
func (s *PostgresStore) Companies(ctx context.Context) ([]Company, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT firm, ticker
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

func (s *PostgresStore) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT source_file, firm, ticker, date, metric, value, last_updated
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
