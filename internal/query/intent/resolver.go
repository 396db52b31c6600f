package intent

import (
	"context"
	"fmt"

	"github.com/finvox/finvox/pkg/provider/nlp"
)

// hypothesisTemplate is handed to the zero-shot classifier verbatim;
// "{}" is replaced by each candidate label.
const hypothesisTemplate = "This text is requesting {} information."

// Resolver classifies text with an injected zero-shot classifier and
// returns the top-ranked label. It does not retry: a classifier
// failure or an empty label list is returned as an error and the
// caller short-circuits the query.
type Resolver struct {
	classifier nlp.IntentClassifier
}

// NewResolver returns a Resolver backed by classifier.
func NewResolver(classifier nlp.IntentClassifier) *Resolver {
	return &Resolver{classifier: classifier}
}

// Resolve returns the intent the classifier ranks highest for text.
func (r *Resolver) Resolve(ctx context.Context, text string) (Intent, error) {
	result, err := r.classifier.Classify(ctx, text, Labels(), hypothesisTemplate)
	if err != nil {
		return "", fmt.Errorf("intent: classify: %w", err)
	}
	if len(result.Labels) == 0 {
		return "", fmt.Errorf("intent: classifier returned no labels")
	}
	return Intent(result.Labels[0]), nil
}
