// Package anyllm provides LLM-backed implementations of the nlp provider
// interfaces using github.com/mozilla-ai/any-llm-go, a unified multi-provider
// interface that supports OpenAI, Anthropic, Gemini, Ollama, DeepSeek,
// Mistral, Groq, and more.
//
// Zero-shot classification and NER are expressed as JSON-mode prompts: the
// model is asked to rank the candidate labels (or list organisation/date
// mentions) and reply with a single JSON object. Malformed replies surface as
// errors, which the pipeline treats the same as a classifier outage.
//
// Usage:
//
//	p, err := anyllm.New("openai", "gpt-4o-mini", anyllmlib.WithAPIKey("sk-..."))
//	cls, err := p.Classify(ctx, text, labels, "This text is requesting {} information.")
package anyllm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/finvox/finvox/pkg/provider/nlp"
)

// Compile-time interface assertions.
var (
	_ nlp.IntentClassifier = (*Provider)(nil)
	_ nlp.EntityExtractor  = (*Provider)(nil)
)

const classifySystemPrompt = `You are a zero-shot text classifier. You will be given a text, a list of candidate labels, and a hypothesis template containing a {} placeholder. Rank every candidate label by how well the hypothesis formed from it fits the text. Respond with only a JSON object of the form {"labels": [...], "scores": [...]} where labels is every candidate ordered best first and scores are the matching probabilities in [0,1]. No prose, no code fences.`

const extractSystemPrompt = `You are a named-entity extractor. Given a text, list every organisation mention and every date mention exactly as they appear in the text. Respond with only a JSON object of the form {"orgs": [...], "dates": [...]}. Use empty arrays when nothing is found. No prose, no code fences.`

// Provider implements nlp.IntentClassifier and nlp.EntityExtractor by
// prompting an LLM through any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a Provider backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "deepseek", "mistral", "groq", "llamacpp", "llamafile". model is the
// specific model to use (e.g. "gpt-4o-mini"). opts are any-llm-go options
// (e.g. anyllmlib.WithAPIKey, anyllmlib.WithBaseURL); without an API key
// option the relevant environment variable is used.
func New(providerName, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}
	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}
	return &Provider{backend: backend, model: model}, nil
}

// createBackend creates the underlying any-llm-go provider.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// Classify implements nlp.IntentClassifier.
func (p *Provider) Classify(ctx context.Context, text string, labels []string, template string) (nlp.Classification, error) {
	if len(labels) == 0 {
		return nlp.Classification{}, fmt.Errorf("anyllm classify: labels must not be empty")
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Text: %s\n", text)
	fmt.Fprintf(&user, "Hypothesis template: %s\n", template)
	fmt.Fprintf(&user, "Candidate labels: %s\n", strings.Join(labels, ", "))

	content, err := p.complete(ctx, classifySystemPrompt, user.String())
	if err != nil {
		return nlp.Classification{}, fmt.Errorf("anyllm classify: %w", err)
	}

	var parsed struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return nlp.Classification{}, fmt.Errorf("anyllm classify: parse model reply: %w", err)
	}
	if len(parsed.Labels) == 0 {
		return nlp.Classification{}, fmt.Errorf("anyllm classify: model returned no labels")
	}
	return nlp.Classification{Labels: parsed.Labels, Scores: parsed.Scores}, nil
}

// Extract implements nlp.EntityExtractor.
func (p *Provider) Extract(ctx context.Context, text string) (nlp.Mentions, error) {
	content, err := p.complete(ctx, extractSystemPrompt, "Text: "+text)
	if err != nil {
		return nlp.Mentions{}, fmt.Errorf("anyllm extract: %w", err)
	}

	var parsed struct {
		Orgs  []string `json:"orgs"`
		Dates []string `json:"dates"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return nlp.Mentions{}, fmt.Errorf("anyllm extract: parse model reply: %w", err)
	}
	return nlp.Mentions{Orgs: parsed.Orgs, Dates: parsed.Dates}, nil
}

// complete performs one non-streaming completion with greedy decoding.
func (p *Provider) complete(ctx context.Context, system, user string) (string, error) {
	temp := 0.0
	resp, err := p.backend.Completion(ctx, anyllmlib.CompletionParams{
		Model: p.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: system},
			{Role: anyllmlib.RoleUser, Content: user},
		},
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return resp.Choices[0].Message.ContentString(), nil
}

// stripFences removes a surrounding markdown code fence, which some models
// emit despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
