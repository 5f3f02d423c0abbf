package bandit

import "math"

// SelectArm chooses a retrieval strategy for the given context, dispatching
// on the configured algorithm.
func (l *Learner) SelectArm(ctx Context) Arm {
	switch l.config.Algorithm {
	case AlgorithmUCB:
		return l.selectUCB()
	case AlgorithmThompson:
		return l.selectThompsonOrFallback()
	default:
		return l.selectEpsilonGreedy(ctx)
	}
}

// selectEpsilonGreedy explores uniformly with probability epsilon,
// otherwise exploits the best mean reward within the context bucket,
// falling back to the global best when the bucket has no history yet.
func (l *Learner) selectEpsilonGreedy(ctx Context) Arm {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rng.float64() < l.epsilon {
		return Arms[l.rng.intn(len(Arms))]
	}

	key := bucketKey(ctx)
	best := Arms[0]
	bestMean := -1.0
	haveContext := false
	for _, a := range Arms {
		st := l.arms[a]
		if w, ok := st.byCtx.Peek(key); ok && w.len() > 0 {
			haveContext = true
			if m := w.mean(); m > bestMean {
				bestMean = m
				best = a
			}
		}
	}
	if haveContext {
		return best
	}

	bestMean = -1.0
	for _, a := range Arms {
		if m := l.arms[a].global.mean(); m > bestMean {
			bestMean = m
			best = a
		}
	}
	return best
}

// selectUCB scores every arm with mean + sqrt(c*ln(N)/n_arm); an
// unvisited arm has an implicit infinite score and is returned
// immediately.
func (l *Learner) selectUCB() Arm {
	l.mu.Lock()
	defer l.mu.Unlock()

	totalTrials := 0
	for _, a := range Arms {
		totalTrials += l.arms[a].trials
	}
	for _, a := range Arms {
		if l.arms[a].trials == 0 {
			return a
		}
	}

	best := Arms[0]
	bestScore := math.Inf(-1)
	logN := math.Log(float64(totalTrials))
	for _, a := range Arms {
		st := l.arms[a]
		score := st.global.mean() + math.Sqrt(l.config.ConfidenceLevel*logN/float64(st.trials))
		if score > bestScore {
			bestScore = score
			best = a
		}
	}
	return best
}

// selectThompsonOrFallback is a declared-but-unimplemented arm per the
// engine's open questions; it falls back to epsilon-greedy exploitation
// rather than returning an error, since arm selection must never fail.
func (l *Learner) selectThompsonOrFallback() Arm {
	return l.selectEpsilonGreedy(Context{})
}
