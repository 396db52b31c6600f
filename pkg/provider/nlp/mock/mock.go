// Package mock provides test doubles for the nlp package interfaces.
//
// Use Classifier to script a classification ranking and inspect the text and
// label set the caller passed in. Use Extractor to feed controlled mentions
// into the entity normaliser.
package mock

import (
	"context"
	"sync"

	"github.com/finvox/finvox/pkg/provider/nlp"
)

// ClassifyCall records a single invocation of Classifier.Classify.
type ClassifyCall struct {
	Text     string
	Labels   []string
	Template string
}

// Classifier is a mock implementation of nlp.IntentClassifier.
type Classifier struct {
	mu sync.Mutex

	// Result is returned from Classify when Err is nil.
	Result nlp.Classification

	// Err, if non-nil, is returned as the error from Classify.
	Err error

	// Calls records every invocation of Classify.
	Calls []ClassifyCall
}

// Classify records the call and returns Result, Err.
func (c *Classifier) Classify(ctx context.Context, text string, labels []string, template string) (nlp.Classification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, ClassifyCall{Text: text, Labels: labels, Template: template})
	if c.Err != nil {
		return nlp.Classification{}, c.Err
	}
	return c.Result, nil
}

// Extractor is a mock implementation of nlp.EntityExtractor.
type Extractor struct {
	mu sync.Mutex

	// Result is returned from Extract when Err is nil.
	Result nlp.Mentions

	// Err, if non-nil, is returned as the error from Extract.
	Err error

	// Texts records the text argument of every Extract call.
	Texts []string
}

// Extract records the call and returns Result, Err.
func (e *Extractor) Extract(ctx context.Context, text string) (nlp.Mentions, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Texts = append(e.Texts, text)
	if e.Err != nil {
		return nlp.Mentions{}, e.Err
	}
	return e.Result, nil
}
