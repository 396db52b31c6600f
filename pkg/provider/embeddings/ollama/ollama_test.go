package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedBatch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q, want /api/embed", r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Input) != 2 {
			t.Errorf("got %d inputs, want 2", len(req.Input))
		}
		_ = json.NewEncoder(w).Encode(embedResponse{
			Model:      req.Model,
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer srv.Close()

	p, err := New(srv.URL, "all-minilm")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vecs, err := p.EmbedBatch(context.Background(), []string{"AAPL netIncome", "MSFT revenue"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 2 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	t.Parallel()
	p, err := New("http://localhost:1", "all-minilm")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vecs, err := p.EmbedBatch(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("EmbedBatch(nil) = %v, %v; want nil, nil", vecs, err)
	}
}

func TestKnownDimensions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		model string
		want  int
	}{
		{"all-minilm", 384},
		{"nomic-embed-text", 768},
		{"nomic-embed-text:latest", 768},
		{"some-custom-model", 0},
	}
	for _, tt := range tests {
		if got := knownDimensions(tt.model); got != tt.want {
			t.Errorf("knownDimensions(%q) = %d, want %d", tt.model, got, tt.want)
		}
	}
}
