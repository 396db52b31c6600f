// Package embeddings defines the Provider interface for vector embedding
// backends. The semantic retriever uses these vectors to index company/metric
// rows from the local store and rank them against a free-text query when the
// exact-match lookup misses.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality (Dimensions). Vectors from different Provider instances must
// not be mixed in one similarity computation unless both use the same model.
type Provider interface {
	// Embed computes the embedding vector for a single text string. Returns
	// a float32 slice of length Dimensions() or an error if the request
	// fails or ctx is cancelled.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes vectors for a slice of texts in a single provider
	// call. The returned slice has the same length as texts, i-th element
	// corresponding to texts[i]. On error the entire result is nil; partial
	// results are not returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider, constant for the lifetime of the instance.
	Dimensions() int

	// ModelID returns the provider-specific model identifier, for logging
	// and for ensuring a consistent model across an index.
	ModelID() string
}
