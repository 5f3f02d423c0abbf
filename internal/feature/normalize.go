package feature

import "math"

// Normalizer accumulates running mean/variance/min/max over a stream of
// observations using Welford's online algorithm, so a batch's corpus
// statistics can be built in one pass without holding every sample in
// memory.
type Normalizer struct {
	count int64
	mean  float64
	m2    float64
	min   float64
	max   float64
}

// NewNormalizer returns an empty accumulator.
func NewNormalizer() *Normalizer {
	return &Normalizer{min: math.Inf(1), max: math.Inf(-1)}
}

// Add folds one observation into the running statistics.
func (n *Normalizer) Add(x float64) {
	n.count++
	delta := x - n.mean
	n.mean += delta / float64(n.count)
	delta2 := x - n.mean
	n.m2 += delta * delta2
	if x < n.min {
		n.min = x
	}
	if x > n.max {
		n.max = x
	}
}

// Mean returns the running mean, 0 if no observations were added.
func (n *Normalizer) Mean() float64 {
	return n.mean
}

// Variance returns the population variance, 0 if fewer than two
// observations were added.
func (n *Normalizer) Variance() float64 {
	if n.count < 2 {
		return 0
	}
	return n.m2 / float64(n.count)
}

// StdDev returns the population standard deviation.
func (n *Normalizer) StdDev() float64 {
	return math.Sqrt(n.Variance())
}

// Min returns the smallest observation added, 0 if none were added.
func (n *Normalizer) Min() float64 {
	if n.count == 0 {
		return 0
	}
	return n.min
}

// Max returns the largest observation added, 0 if none were added.
func (n *Normalizer) Max() float64 {
	if n.count == 0 {
		return 0
	}
	return n.max
}

// MinMax scales x into [0,1] using the accumulated min/max. Returns 0.5 when
// min == max (a degenerate, single-valued corpus).
func (n *Normalizer) MinMax(x float64) float64 {
	if n.count == 0 {
		return x
	}
	span := n.max - n.min
	if span == 0 {
		return 0.5
	}
	v := (x - n.min) / span
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ZScore standardises x using the accumulated mean/stddev, then squashes
// through a logistic so the result stays in (0,1) like the other
// normalisation mode.
func (n *Normalizer) ZScore(x float64) float64 {
	sd := n.StdDev()
	if sd == 0 {
		return 0.5
	}
	z := (x - n.mean) / sd
	return 1 / (1 + math.Exp(-z))
}

// Scale applies the given method, defaulting to identity clamped to [0,1]
// when method is empty.
func (n *Normalizer) Scale(method ScalingMethod, x float64) float64 {
	switch method {
	case ScalingMinMax:
		return n.MinMax(x)
	case ScalingZScore:
		return n.ZScore(x)
	default:
		if x < 0 {
			return 0
		}
		if x > 1 {
			return 1
		}
		return x
	}
}

// shannonEntropy computes the Shannon entropy (in nats) of a discrete
// frequency distribution given as raw counts.
func shannonEntropy(counts map[string]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	return h
}
