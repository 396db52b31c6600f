// Package retriever is the optional semantic tier of the fallback
// chain: store records are embedded into a pgvector table and the
// nearest documents answer queries that miss the exact-match store.
package retriever

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/finvox/finvox/internal/store"
	"github.com/finvox/finvox/pkg/provider/embeddings"
)

// Document is one indexed store record with its similarity distance.
type Document struct {
	Ticker   string
	Metric   string
	Content  string
	Distance float64
}

// Index is a pgvector-backed nearest-neighbour index over the local
// financial dataset. Safe for concurrent use after BuildIndex.
type Index struct {
	pool     *pgxpool.Pool
	embedder embeddings.Provider
}

// Open connects to the database at dsn and ensures the documents table
// exists with the embedder's dimensionality.
func Open(ctx context.Context, dsn string, embedder embeddings.Provider) (*Index, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("retriever: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("retriever: create pool: %w", err)
	}

	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("retriever: create extension: %w", err)
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS financial_documents (
		id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		metric TEXT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d)
	)`, embedder.Dimensions())
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("retriever: create schema: %w", err)
	}

	return &Index{pool: pool, embedder: embedder}, nil
}

// BuildIndex embeds and upserts every record. Documents are keyed by
// (ticker, metric) so a rebuild replaces rather than duplicates.
func (ix *Index) BuildIndex(ctx context.Context, records []store.Record) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = documentText(rec)
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("retriever: embed documents: %w", err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("retriever: embedder returned %d vectors for %d documents", len(vectors), len(records))
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(`INSERT INTO financial_documents (id, ticker, metric, content, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
			    content = EXCLUDED.content,
			    embedding = EXCLUDED.embedding`,
			rec.Ticker+"|"+rec.Metric, rec.Ticker, rec.Metric, texts[i],
			pgvector.NewVector(vectors[i]))
	}
	if err := ix.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("retriever: index documents: %w", err)
	}
	return nil
}

// Nearest returns the k documents closest to text by cosine distance,
// most similar first.
func (ix *Index) Nearest(ctx context.Context, text string, k int) ([]Document, error) {
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("retriever: embed query: %w", err)
	}

	rows, err := ix.pool.Query(ctx, `
		SELECT ticker, metric, content, embedding <=> $1 AS distance
		FROM   financial_documents
		ORDER  BY distance
		LIMIT  $2`, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, fmt.Errorf("retriever: search: %w", err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		err := row.Scan(&d.Ticker, &d.Metric, &d.Content, &d.Distance)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("retriever: scan rows: %w", err)
	}
	return docs, nil
}

// Retrieve satisfies the fallback chain's retriever contract: the
// nearest document's content, or "" when the index is empty.
func (ix *Index) Retrieve(ctx context.Context, text string, k int) (string, error) {
	docs, err := ix.Nearest(ctx, text, k)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", nil
	}
	return docs[0].Content, nil
}

// Close releases the underlying connection pool.
func (ix *Index) Close() {
	ix.pool.Close()
}

// documentText renders one record as the sentence that gets embedded
// and, on retrieval, surfaced to the user.
func documentText(rec store.Record) string {
	period := rec.Date
	if period == "" {
		period = "the latest year"
	}
	return fmt.Sprintf("%s's %s for %s was $%.2f billion.", rec.Ticker, rec.Metric, period, rec.Value/1e9)
}
