// Package nlp defines the provider interfaces for the two language
// capabilities the query pipeline consumes: zero-shot intent classification
// and named-entity extraction.
//
// Both capabilities are opaque to the core pipeline. The pipeline only
// depends on these interfaces; concrete backends live in sub-packages
// (anyllm for LLM-backed classification and NER, mock for tests) and the
// keyword classifier in internal/query/intent.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation: a cancelled or expired context is an ordinary error result,
// never a hang.
package nlp

import "context"

// Classification is the ranked output of a zero-shot classifier.
// Labels are ordered best-first; Scores[i] belongs to Labels[i]. Callers that
// only need the top label use Labels[0].
type Classification struct {
	Labels []string
	Scores []float64
}

// IntentClassifier ranks a fixed candidate-label set against free text using
// a hypothesis template (e.g. "This text is requesting {} information.").
type IntentClassifier interface {
	// Classify ranks labels against text. The returned Classification must
	// contain at least one label on success; implementations return an error
	// rather than an empty ranking.
	Classify(ctx context.Context, text string, labels []string, template string) (Classification, error)
}

// Mentions holds the raw organisation and date mentions found in a text.
// Values are verbatim substrings of the input; normalisation is the caller's
// concern.
type Mentions struct {
	Orgs  []string
	Dates []string
}

// EntityExtractor finds organisation and date mentions in free text.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (Mentions, error)
}
