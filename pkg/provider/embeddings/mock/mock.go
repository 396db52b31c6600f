// Package mock provides a test double for the embeddings package interface.
//
// Vectors are derived deterministically from the input text so that identical
// texts embed identically, which is all the retriever tests need.
package mock

import (
	"context"
	"hash/fnv"
	"sync"
)

// Provider is a mock implementation of embeddings.Provider.
type Provider struct {
	mu sync.Mutex

	// Dim is the vector length produced. Defaults to 4 when zero.
	Dim int

	// Err, if non-nil, is returned from Embed and EmbedBatch.
	Err error

	// Texts records every text passed to Embed or EmbedBatch.
	Texts []string
}

// Embed returns a deterministic pseudo-vector for text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns deterministic pseudo-vectors for texts.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Texts = append(p.Texts, texts...)
	if p.Err != nil {
		return nil, p.Err
	}
	dim := p.Dim
	if dim == 0 {
		dim = 4
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		h := fnv.New32a()
		_, _ = h.Write([]byte(t))
		seed := h.Sum32()
		vec := make([]float32, dim)
		for j := range vec {
			seed = seed*1664525 + 1013904223
			vec[j] = float32(seed%1000) / 1000
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns Dim (default 4).
func (p *Provider) Dimensions() int {
	if p.Dim == 0 {
		return 4
	}
	return p.Dim
}

// ModelID returns a fixed identifier.
func (p *Provider) ModelID() string { return "mock-embed" }
