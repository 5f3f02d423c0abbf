// Package retriever implements the hybrid retriever (C8): the top-level
// entry point that asks the bandit learner for a strategy, executes it
// (or several in parallel) against the search engine, extracts features,
// fuses and optionally reranks, and routes feedback back to the bandit
// and the reranker.
package retriever

import (
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/bandit"
	"github.com/kestrel-labs/knowledgeforge/internal/feature"
	"github.com/kestrel-labs/knowledgeforge/internal/fusion"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

// Mode selects how many strategies retrieve executes per query.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeParallel Mode = "parallel"
	ModeAdaptive Mode = "adaptive"
)

// Config configures a HybridRetriever.
type Config struct {
	DefaultMode            Mode
	ParallelTimeout        time.Duration
	FusionAlgorithm        fusion.Algorithm
	EnableVectorSearch     bool
	MaxRerankingCandidates int
	RerankEnabled          bool

	// ParallelArms lists the strategies fanned out alongside the bandit's
	// pick when Mode is ModeParallel, and in ModeAdaptive whenever it holds
	// more than one arm.
	ParallelArms []bandit.Arm
}

// DefaultConfig mirrors internal/config.HybridConfig's defaults.
func DefaultConfig() Config {
	return Config{
		DefaultMode:            ModeAdaptive,
		ParallelTimeout:        2 * time.Second,
		FusionAlgorithm:        fusion.AlgorithmRRF,
		EnableVectorSearch:     true,
		MaxRerankingCandidates: 200,
		RerankEnabled:          true,
		ParallelArms:           []bandit.Arm{bandit.ArmFTSHeavy, bandit.ArmVectorHeavy},
	}
}

// RetrievalQuery is a request to the hybrid retriever.
type RetrievalQuery struct {
	Query   string
	Context feature.QueryContext
	Bandit  bandit.Context

	Mode  Mode // empty uses Config.DefaultMode
	Limit int
}

// StageTimings records how long each pipeline stage took, for the
// Retrieval Result's diagnostic surface.
type StageTimings struct {
	StrategySelection time.Duration
	Search            time.Duration
	FeatureExtraction time.Duration
	Fusion            time.Duration
	Rerank            time.Duration
	Total             time.Duration
}

// RetrievedEntry is one ranked result in a Retrieval Result.
type RetrievedEntry struct {
	Entry      *indexstore.Entry
	Score      string // formatted for display; raw score lives in Score64
	Score64    float64
	Rank       int
	RankerUsed string
}

// RetrievalResult is the hybrid retriever's response.
type RetrievalResult struct {
	QueryID string
	Results []RetrievedEntry

	StrategyUsed           bandit.Arm
	StrategiesAttempted    []bandit.Arm
	ExplorationPerformed   bool
	AdaptiveLearningActive bool

	Timings StageTimings
}

// UserFeedback is the caller-supplied signal observeFeedback maps to a
// scalar reward and to reranker labels.
type UserFeedback struct {
	Clicked         bool
	UsedInSolution  bool
	DwellTime       time.Duration
	RelevanceRating int // 1-5, 0 means unset
	Copied          bool
	Bookmarked      bool
}

// reward maps UserFeedback onto a scalar in [0,1] via the engine's fixed
// weighting of signals.
func (f UserFeedback) reward() float64 {
	dwellClip := f.DwellTime.Seconds() / 20.0
	if dwellClip > 1 {
		dwellClip = 1
	}
	if dwellClip < 0 {
		dwellClip = 0
	}
	relevance := float64(f.RelevanceRating) / 5.0
	if relevance > 1 {
		relevance = 1
	}
	if relevance < 0 {
		relevance = 0
	}

	r := 0.2*boolF(f.Clicked) +
		0.3*boolF(f.UsedInSolution) +
		0.2*dwellClip +
		0.1*relevance +
		0.1*boolF(f.Copied) +
		0.1*boolF(f.Bookmarked)
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	return r
}

// rerankLabel derives the binary label C6's ObserveFeedback expects:
// positive when the result was used in a solution or rated highly.
func (f UserFeedback) rerankLabel() float64 {
	if f.UsedInSolution || f.RelevanceRating >= 4 {
		return 1
	}
	return 0
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
