package bandit

import (
	"time"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
)

// ArmEstimate is one arm's serialised distributional summary, enough to
// resynthesise a plausible sliding window on import.
type ArmEstimate struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Samples  int     `json:"samples"`
}

// Model is the bandit's serialisable checkpoint.
type Model struct {
	Algorithm     Algorithm              `json:"algorithm"`
	Parameters    map[string]float64     `json:"parameters"`
	ArmEstimates  map[Arm]ArmEstimate    `json:"armEstimates"`
	ModelVersion  string                 `json:"modelVersion"`
	TrainingData  int                    `json:"trainingData"`
	ExportedAt    time.Time              `json:"exportedAt"`
}

const modelVersion = "1"

// ExportModel serialises the learner's current estimates.
func (l *Learner) ExportModel() Model {
	l.mu.Lock()
	defer l.mu.Unlock()

	estimates := make(map[Arm]ArmEstimate, len(Arms))
	total := 0
	for _, a := range Arms {
		st := l.arms[a]
		n := st.global.len()
		total += n
		estimates[a] = ArmEstimate{
			Mean:     st.global.mean(),
			Variance: st.global.variance(),
			Samples:  n,
		}
	}

	return Model{
		Algorithm: l.config.Algorithm,
		Parameters: map[string]float64{
			"initialEpsilon":  l.config.InitialEpsilon,
			"epsilonDecay":    l.config.EpsilonDecay,
			"minEpsilon":      l.config.MinEpsilon,
			"confidenceLevel": l.config.ConfidenceLevel,
			"currentEpsilon":  l.epsilon,
		},
		ArmEstimates: estimates,
		ModelVersion: modelVersion,
		TrainingData: total,
		ExportedAt:   nowFunc(),
	}
}

// ImportModel replaces the learner's reward history with one
// resynthesised from a serialised model. The sliding window for each arm
// is reconstructed by drawing Box-Muller samples from the stored
// mean/variance, clamped to [0,1], since the original samples are not
// retained across export. Fails with ModelIncompatible if the model's
// algorithm doesn't match this learner's, or if it names an arm outside
// the fixed enumeration.
func (l *Learner) ImportModel(m Model) error {
	if m.Algorithm != l.config.Algorithm {
		return kferrors.ModelIncompatible(kferrors.ErrCodeBanditModelShape,
			"bandit model algorithm mismatch: want "+string(l.config.Algorithm)+", got "+string(m.Algorithm))
	}
	for a := range m.ArmEstimates {
		found := false
		for _, known := range Arms {
			if a == known {
				found = true
				break
			}
		}
		if !found {
			return kferrors.ModelIncompatible(kferrors.ErrCodeBanditModelShape, "bandit model references unknown arm "+string(a))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if eps, ok := m.Parameters["currentEpsilon"]; ok {
		l.epsilon = eps
	}

	for _, a := range Arms {
		est, ok := m.ArmEstimates[a]
		st := l.arms[a]
		st.global = newSlidingWindow(l.config.WindowSize)
		st.byCtx.Purge()
		if !ok || est.Samples == 0 {
			st.trials = 0
			continue
		}
		n := est.Samples
		if n > l.config.WindowSize {
			n = l.config.WindowSize
		}
		for i := 0; i < n; i++ {
			st.global.push(l.rng.normal(est.Mean, est.Variance))
		}
		st.trials = est.Samples
	}
	return nil
}
