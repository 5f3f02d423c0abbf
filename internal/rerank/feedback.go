package rerank

import (
	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
)

const gradientClip = 5.0

// ObserveFeedback folds one labelled observation into the model: if
// onlineLearning is enabled it applies one clipped SGD step immediately,
// then always appends the sample to the pending batch, flushing (an
// averaged batch step) once batchSize samples have accumulated. label must
// be 0 or 1.
func (r *Reranker) ObserveFeedback(features []float64, label float64) error {
	if label != 0 && label != 1 {
		return kferrors.InvalidArgument(kferrors.ErrCodeInvalidReward, "rerank feedback label must be 0 or 1")
	}
	if !r.config.Enabled {
		return nil
	}

	if r.config.OnlineLearning {
		r.sgdStep(features, label, r.config.LearningRate)
	}

	r.mu.Lock()
	r.pending = append(r.pending, feedbackSample{features: append([]float64(nil), features...), label: label})
	shouldFlush := r.config.BatchSize > 0 && len(r.pending) >= r.config.BatchSize
	var batch []feedbackSample
	if shouldFlush {
		batch = r.pending
		r.pending = nil
	}
	r.mu.Unlock()

	if shouldFlush {
		r.flushBatch(batch)
	}
	return nil
}

// sgdStep applies one gradient-descent update for a single labelled
// sample, with L2 regularisation and a clipped gradient.
func (r *Reranker) sgdStep(features []float64, label, rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pred := sigmoid(dot(r.weights, features) + r.bias)
	errTerm := pred - label

	n := len(r.weights)
	if len(features) < n {
		n = len(features)
	}
	for i := 0; i < n; i++ {
		grad := errTerm*features[i] + r.config.Regularization*r.weights[i]
		grad = clip(grad, gradientClip)
		r.weights[i] -= rate * grad
	}
	gradB := clip(errTerm, gradientClip)
	r.bias -= rate * gradB
}

// flushBatch applies one averaged-gradient step over the accumulated
// batch, a coarser update that smooths out noise from the per-sample
// online steps between flushes.
func (r *Reranker) flushBatch(batch []feedbackSample) {
	if len(batch) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dims := len(r.weights)
	gradW := make([]float64, dims)
	var gradB float64

	for _, s := range batch {
		pred := sigmoid(dot(r.weights, s.features) + r.bias)
		errTerm := pred - s.label
		n := dims
		if len(s.features) < n {
			n = len(s.features)
		}
		for i := 0; i < n; i++ {
			gradW[i] += errTerm*s.features[i] + r.config.Regularization*r.weights[i]
		}
		gradB += errTerm
	}

	batchLen := float64(len(batch))
	rate := r.config.LearningRate
	for i := range r.weights {
		g := clip(gradW[i]/batchLen, gradientClip)
		r.weights[i] -= rate * g
	}
	r.bias -= rate * clip(gradB/batchLen, gradientClip)
}

func clip(x, bound float64) float64 {
	if x > bound {
		return bound
	}
	if x < -bound {
		return -bound
	}
	return x
}
