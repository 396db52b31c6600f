package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testDSN returns the test database DSN from the environment, or skips
// when FINVOX_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("FINVOX_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FINVOX_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := testDSN(t)
	ctx := context.Background()

	s, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.pool.Exec(ctx, `TRUNCATE financial_metrics`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	csvPath := filepath.Join(t.TempDir(), "financial_data.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := s.LoadCSV(ctx, csvPath)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 rows loaded, got %d", n)
	}

	rec, err := s.Lookup(ctx, "MSFT", "revenue")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Firm != "Microsoft" {
		t.Errorf("unexpected record %+v", rec)
	}

	if _, err := s.Lookup(ctx, "MSFT", "noSuchMetric"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	companies, err := s.Companies(ctx)
	if err != nil {
		t.Fatalf("Companies: %v", err)
	}
	if len(companies) != 3 {
		t.Errorf("expected 3 companies, got %d", len(companies))
	}
}
