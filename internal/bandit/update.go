package bandit

import (
	"log/slog"
	"time"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
)

// UpdateReward folds one observed reward into the arm's history: the
// global sliding window, the context-bucket window, and (for
// epsilon-greedy) the decayed exploration rate. An unknown arm is
// logged and ignored rather than failing, since a stale strategyUsed
// label from an older model export should never break the feedback
// path. A reward outside [0,1] is rejected.
func (l *Learner) UpdateReward(arm Arm, ctx Context, reward float64) error {
	if reward < 0 || reward > 1 {
		return kferrors.InvalidArgument(kferrors.ErrCodeInvalidReward, "bandit reward must be in [0,1]")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.arms[arm]
	if !ok {
		slog.Warn("bandit: reward update for unknown arm", "arm", string(arm))
		return nil
	}

	st.global.push(reward)
	st.trials++
	st.lastUsed = nowFunc()

	key := bucketKey(ctx)
	ctxWindow, ok := st.byCtx.Get(key)
	if !ok {
		ctxWindow = newSlidingWindow(contextWindowSize(l.config.WindowSize))
		st.byCtx.Add(key, ctxWindow)
	}
	ctxWindow.push(reward)

	if l.config.Algorithm == AlgorithmEpsilonGreedy {
		l.epsilon *= l.config.EpsilonDecay
		if l.epsilon < l.config.MinEpsilon {
			l.epsilon = l.config.MinEpsilon
		}
	}
	return nil
}

func contextWindowSize(global int) int {
	n := global / 10
	if n < 1 {
		n = 1
	}
	return n
}

// nowFunc is a var so tests can override it; defaults to time.Now.
var nowFunc = time.Now
