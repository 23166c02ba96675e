package model

import "context"

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

type Options struct {
	Temperature float64
	MaxTokens   int
}

// Option allows optional parameters like temperature and max tokens.
type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider is the contract for the generative model. Temperature 0 must
// give deterministic (greedy) decoding; routing and query rewriting rely on
// that.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
}

// Embedder turns text into fixed-length vectors. EmbedBatch preserves input
// order in its output.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores (query, passage) pairs. Scores come back in passage input
// order; higher means more relevant, with no guaranteed range.
type Reranker interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
}

// Classifier labels a document with a coarse type and a confidence in [0,1].
type Classifier interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}
