// Package bandit implements a multi-armed bandit over a fixed set of
// retrieval strategies, used by the hybrid retriever to pick a strategy
// per query and to learn from observed rewards over time.
package bandit

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Arm is one retrieval strategy the bandit chooses between.
type Arm string

const (
	ArmFTSHeavy            Arm = "fts-heavy"
	ArmVectorHeavy         Arm = "vector-heavy"
	ArmBalanced            Arm = "balanced"
	ArmRecencyFocused      Arm = "recency-focused"
	ArmEffectivenessFocused Arm = "effectiveness-focused"
	ArmPopularityFocused   Arm = "popularity-focused"
	ArmSemanticFocused     Arm = "semantic-focused"
)

// Arms is the fixed enumeration of every arm, in a stable order used
// whenever arms must be iterated deterministically.
var Arms = []Arm{
	ArmFTSHeavy,
	ArmVectorHeavy,
	ArmBalanced,
	ArmRecencyFocused,
	ArmEffectivenessFocused,
	ArmPopularityFocused,
	ArmSemanticFocused,
}

// Algorithm selects the arm-selection strategy.
type Algorithm string

const (
	AlgorithmEpsilonGreedy   Algorithm = "epsilon-greedy"
	AlgorithmUCB             Algorithm = "ucb"
	AlgorithmThompson        Algorithm = "thompson-sampling"
)

// Context carries the situational data a selection decision is sharded
// on. Two contexts that canonicalise to the same bucket key share reward
// history.
type Context struct {
	AgentTypes   []string
	ProjectID    string
	IssueLabels  []string
	WorkingHours bool
}

// bucketKey canonicalises a Context into the sort+join key the spec
// describes: sorted agent types, project id, sorted issue labels, and
// a working-hours flag, joined with a separator unlikely to collide
// with real field values.
func bucketKey(c Context) string {
	agents := append([]string(nil), c.AgentTypes...)
	sort.Strings(agents)
	labels := append([]string(nil), c.IssueLabels...)
	sort.Strings(labels)
	wh := "off"
	if c.WorkingHours {
		wh = "on"
	}
	return strings.Join(agents, ",") + "|" + c.ProjectID + "|" + strings.Join(labels, ",") + "|" + wh
}

// Config configures a Learner.
type Config struct {
	Algorithm       Algorithm
	InitialEpsilon  float64
	EpsilonDecay    float64
	MinEpsilon      float64
	ConfidenceLevel float64 // UCB exploration constant c
	WindowSize      int     // global sliding window size; context window is WindowSize/10
}

// DefaultConfig mirrors internal/config.BanditConfig's defaults, kept
// local so this package carries no dependency on the config package.
func DefaultConfig() Config {
	return Config{
		Algorithm:       AlgorithmEpsilonGreedy,
		InitialEpsilon:  0.1,
		EpsilonDecay:    0.995,
		MinEpsilon:      0.01,
		ConfidenceLevel: 2.0,
		WindowSize:      1000,
	}
}

// maxContextBuckets bounds the per-arm context table so a long-running
// process with ever-varied agent/project/label combinations doesn't grow
// its bucket table without limit; eviction only drops the least-recently
// used bucket's history, never the global window.
const maxContextBuckets = 4096

// armState holds one arm's mutable reward history, global and per
// context bucket.
type armState struct {
	global   *slidingWindow
	byCtx    *lru.Cache[string, *slidingWindow]
	trials   int
	lastUsed time.Time
}

func newArmState(windowSize int) *armState {
	cache, _ := lru.New[string, *slidingWindow](maxContextBuckets)
	return &armState{
		global: newSlidingWindow(windowSize),
		byCtx:  cache,
	}
}

// ArmStats is one arm's exported snapshot.
type ArmStats struct {
	Arm           Arm
	Trials        int
	TotalReward   float64
	AverageReward float64
	CILow         float64
	CIHigh        float64
	LastUsed      time.Time
}

// AggregateStats summarises the whole learner.
type AggregateStats struct {
	TotalTrials     int
	AverageReward   float64
	Regret          float64
	ConvergenceRate float64
	ExplorationRate float64
}

// Learner is a thread-safe multi-armed bandit. All mutable state is
// guarded by a single mutex, mirroring the circuit breaker's
// private-state/public-snapshot shape used elsewhere in this engine.
type Learner struct {
	config Config

	mu      sync.Mutex
	epsilon float64
	arms    map[Arm]*armState
	rng     *rngState
}

// New builds a Learner with empty reward history for every fixed arm.
func New(cfg Config) *Learner {
	if cfg.MinEpsilon <= 0 {
		cfg.MinEpsilon = 0.01
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 1000
	}
	if cfg.ConfidenceLevel <= 0 {
		cfg.ConfidenceLevel = 2.0
	}
	l := &Learner{
		config:  cfg,
		epsilon: cfg.InitialEpsilon,
		arms:    make(map[Arm]*armState, len(Arms)),
		rng:     newRNGState(1),
	}
	for _, a := range Arms {
		l.arms[a] = newArmState(cfg.WindowSize)
	}
	return l
}

// Epsilon returns the current exploration rate.
func (l *Learner) Epsilon() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epsilon
}
