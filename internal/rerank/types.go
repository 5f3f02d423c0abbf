// Package rerank implements an online logistic re-ranker: a single linear
// model over the flattened feature space, scored through a sigmoid, and
// updated incrementally from observed relevance feedback.
package rerank

import "sync"

// Config configures a Reranker.
type Config struct {
	Enabled        bool
	LearningRate   float64
	Regularization float64
	BatchSize      int
	OnlineLearning bool

	// Dimensions is the length of the flattened feature row. Required so
	// the weight vector can be allocated up front.
	Dimensions int
}

// DefaultConfig mirrors internal/config.RerankingConfig's defaults, kept
// local so this package has no dependency on the config package.
func DefaultConfig(dimensions int) Config {
	return Config{
		Enabled:        true,
		LearningRate:   0.01,
		Regularization: 0.001,
		BatchSize:      32,
		OnlineLearning: true,
		Dimensions:     dimensions,
	}
}

// RankerUsed labels which scoring path produced a result's rank.
type RankerUsed string

const (
	RankerBase   RankerUsed = "base"
	RankerML     RankerUsed = "ml"
	RankerHybrid RankerUsed = "hybrid"
)

// Candidate is one item to rerank: its current fused score and its
// flattened feature row.
type Candidate struct {
	ID       string
	Score    float64
	Features []float64
}

// Result is one reranked candidate.
type Result struct {
	ID         string
	Score      float64
	Rank       int
	RankerUsed RankerUsed
}

// Reranker holds the online logistic model's mutable state under a single
// mutex, following the same private-state/public-snapshot shape as a
// circuit breaker: callers never see partially updated weights mid-batch.
type Reranker struct {
	config Config

	mu        sync.Mutex
	weights   []float64
	bias      float64
	pending   []feedbackSample
}

type feedbackSample struct {
	features []float64
	label    float64
}

// New builds a Reranker with zero-initialised weights.
func New(cfg Config) *Reranker {
	return &Reranker{
		config:  cfg,
		weights: make([]float64, cfg.Dimensions),
	}
}

// Weights returns a copy of the current weight vector, for model
// checkpointing.
func (r *Reranker) Weights() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.weights))
	copy(out, r.weights)
	return out
}

// Bias returns the current bias term.
func (r *Reranker) Bias() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bias
}

// LoadWeights replaces the model state, e.g. restoring a checkpoint. Panics
// if the length doesn't match the configured dimensions, a programmer
// error rather than a runtime condition.
func (r *Reranker) LoadWeights(weights []float64, bias float64) {
	if len(weights) != r.config.Dimensions {
		panic("rerank: weight vector length mismatch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weights = append([]float64(nil), weights...)
	r.bias = bias
}
