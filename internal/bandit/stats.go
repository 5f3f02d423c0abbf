package bandit

import "math"

// ArmStats returns the exported snapshot for one arm. Ok is false for an
// arm outside the fixed enumeration.
func (l *Learner) ArmStats(arm Arm) (ArmStats, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.arms[arm]
	if !ok {
		return ArmStats{}, false
	}
	return l.snapshotArm(arm, st), true
}

// AllArmStats returns the snapshot for every fixed arm, in enumeration
// order.
func (l *Learner) AllArmStats() []ArmStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ArmStats, 0, len(Arms))
	for _, a := range Arms {
		out = append(out, l.snapshotArm(a, l.arms[a]))
	}
	return out
}

func (l *Learner) snapshotArm(arm Arm, st *armState) ArmStats {
	n := st.global.len()
	mean := st.global.mean()
	variance := st.global.variance()
	se := 0.0
	if n > 0 {
		se = math.Sqrt(variance / float64(n))
	}
	ci := 1.96 * se
	return ArmStats{
		Arm:           arm,
		Trials:        st.trials,
		TotalReward:   mean * float64(n),
		AverageReward: mean,
		CILow:         clampUnit(mean - ci),
		CIHigh:        clampUnit(mean + ci),
		LastUsed:      st.lastUsed,
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Aggregate summarises the learner across every arm: total trials,
// overall average reward, regret relative to the best-performing arm,
// convergence rate over each arm's last 100 rewards, and the current
// exploration rate.
func (l *Learner) Aggregate() AggregateStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	var totalTrials int
	var totalReward float64
	bestMean := 0.0
	var varianceSum float64
	var varianceCount int

	for _, a := range Arms {
		st := l.arms[a]
		totalTrials += st.trials
		mean := st.global.mean()
		totalReward += mean * float64(st.global.len())
		if mean > bestMean {
			bestMean = mean
		}

		recent := st.global.recent(100)
		if len(recent) > 1 {
			var m float64
			for _, v := range recent {
				m += v
			}
			m /= float64(len(recent))
			var acc float64
			for _, v := range recent {
				d := v - m
				acc += d * d
			}
			varianceSum += acc / float64(len(recent))
			varianceCount++
		}
	}

	avgReward := 0.0
	if totalTrials > 0 {
		avgReward = totalReward / float64(totalTrials)
	}

	convergence := 0.0
	if varianceCount > 0 {
		avgVariance := varianceSum / float64(varianceCount)
		convergence = 1 - math.Sqrt(avgVariance)
		if convergence < 0 {
			convergence = 0
		}
	}

	return AggregateStats{
		TotalTrials:     totalTrials,
		AverageReward:   avgReward,
		Regret:          (bestMean - avgReward) * float64(totalTrials),
		ConvergenceRate: convergence,
		ExplorationRate: l.epsilon,
	}
}
