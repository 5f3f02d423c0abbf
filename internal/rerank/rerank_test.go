package rerank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerankDisabledIsNoOpPassthrough(t *testing.T) {
	r := New(Config{Enabled: false, Dimensions: 3})
	candidates := []Candidate{
		{ID: "a", Score: 0.4, Features: []float64{1, 0, 0}},
		{ID: "b", Score: 0.9, Features: []float64{0, 1, 0}},
	}
	out := r.Rerank(candidates)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, RankerBase, out[0].RankerUsed)
	assert.Equal(t, 0.4, out[0].Score)
}

func TestRerankEnabledSortsByScoreDescending(t *testing.T) {
	cfg := DefaultConfig(2)
	r := New(cfg)
	r.LoadWeights([]float64{1.0, -1.0}, 0)

	candidates := []Candidate{
		{ID: "low", Features: []float64{0, 1}},
		{ID: "high", Features: []float64{1, 0}},
	}
	out := r.Rerank(candidates)
	require.Len(t, out, 2)
	assert.Equal(t, "high", out[0].ID)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, RankerML, out[0].RankerUsed)
	assert.Greater(t, out[0].Score, out[1].Score)
}

func TestRerankIsDeterministicGivenFixedWeights(t *testing.T) {
	cfg := DefaultConfig(2)
	r := New(cfg)
	r.LoadWeights([]float64{0.5, 0.2}, 0.1)

	candidates := []Candidate{
		{ID: "a", Features: []float64{1, 2}},
		{ID: "b", Features: []float64{2, 1}},
	}
	first := r.Rerank(candidates)
	second := r.Rerank(candidates)
	assert.Equal(t, first, second)
}

func TestLoadWeightsPanicsOnDimensionMismatch(t *testing.T) {
	r := New(Config{Dimensions: 3})
	assert.Panics(t, func() {
		r.LoadWeights([]float64{1, 2}, 0)
	})
}

func TestObserveFeedbackRejectsLabelOutsideZeroOne(t *testing.T) {
	r := New(DefaultConfig(2))
	err := r.ObserveFeedback([]float64{1, 0}, 0.5)
	assert.Error(t, err)
}

func TestObserveFeedbackNoOpWhenDisabled(t *testing.T) {
	r := New(Config{Enabled: false, Dimensions: 2})
	before := r.Weights()
	err := r.ObserveFeedback([]float64{1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, before, r.Weights())
}

func TestObserveFeedbackOnlineStepMovesWeightsTowardLabel(t *testing.T) {
	cfg := DefaultConfig(2)
	cfg.LearningRate = 0.5
	cfg.OnlineLearning = true
	cfg.BatchSize = 1000 // large enough that the batch flush doesn't fire
	r := New(cfg)

	before := r.Weights()
	err := r.ObserveFeedback([]float64{1, 0}, 1)
	require.NoError(t, err)
	after := r.Weights()

	// A positive label with pred=0.5 initially should push weight[0] up.
	assert.Greater(t, after[0], before[0])
	assert.Equal(t, before[1], after[1])
}

func TestObserveFeedbackFlushesBatchAtBatchSize(t *testing.T) {
	cfg := DefaultConfig(2)
	cfg.OnlineLearning = false
	cfg.BatchSize = 3
	r := New(cfg)

	before := r.Weights()
	require.NoError(t, r.ObserveFeedback([]float64{1, 1}, 1))
	require.NoError(t, r.ObserveFeedback([]float64{1, 1}, 1))
	// Still below batch size: no online learning, so weights unchanged.
	assert.Equal(t, before, r.Weights())

	require.NoError(t, r.ObserveFeedback([]float64{1, 1}, 1))
	// Third sample triggers the flush.
	assert.NotEqual(t, before, r.Weights())
}

func TestObserveFeedbackGradientIsClipped(t *testing.T) {
	cfg := DefaultConfig(2)
	cfg.LearningRate = 1.0
	cfg.OnlineLearning = true
	cfg.BatchSize = 1000
	r := New(cfg)
	r.LoadWeights([]float64{1000, 1000}, 0)

	require.NoError(t, r.ObserveFeedback([]float64{1, 1}, 0))
	after := r.Weights()
	// Even with huge inputs and rate=1, the clipped gradient bounds the
	// per-step movement.
	assert.InDelta(t, 1000, after[0], gradientClip+1e-6)
}
