// Package fusion combines several ranked result lists produced by
// different retrieval strategies into a single ordered list, then applies
// presentation-time adjustments (diversity, query boosts, near-tie
// reordering) and a confidence score.
package fusion

import (
	"time"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
)

// Algorithm selects the fusion strategy.
type Algorithm string

const (
	AlgorithmRRF      Algorithm = "rrf"
	AlgorithmBorda    Algorithm = "borda"
	AlgorithmWeighted Algorithm = "weighted"
	AlgorithmLTR      Algorithm = "ltr"
)

// DefaultRRFConstant is the standard RRF smoothing parameter (k=60,
// consistent with the value adopted by most production hybrid-search
// systems).
const DefaultRRFConstant = 60

// RankedItem is one entry's position and score within a single source
// list, best match first.
type RankedItem struct {
	ID    string
	Score float64
}

// RankingModel is a linear model over a flattened feature row, used by the
// learning-to-rank algorithm: score = sigmoid(w·x + b).
type RankingModel struct {
	Weights []float64
	Bias    float64
	Features []string
}

// Config configures a Fuser.
type Config struct {
	Algorithm   Algorithm
	RRFConstant int // 0 defaults to DefaultRRFConstant

	// Weights is required for AlgorithmWeighted: one weight per input
	// list, in the same order Fuse receives them. Renormalised to sum 1.
	Weights []float64

	// Model is required for AlgorithmLTR. A nil Model, or one with zero
	// weights, falls back to RRF.
	Model *RankingModel
}

// FusedResult is one candidate's position in the fused output.
type FusedResult struct {
	ID    string
	Score float64
	Rank  int

	// AppearanceCount is the number of input lists this candidate
	// appeared in.
	AppearanceCount int

	// SourceRanks holds this candidate's 1-indexed rank in each input
	// list, in list order; 0 means absent from that list.
	SourceRanks []int

	Confidence float64
}

// New builds a Fuser and never fails. For AlgorithmWeighted the weights are
// checked by Fuse, which returns an InvalidArgument error when their count
// does not match the number of input lists.
func New(cfg Config) (*Fuser, error) {
	if cfg.RRFConstant <= 0 {
		cfg.RRFConstant = DefaultRRFConstant
	}
	return &Fuser{config: cfg}, nil
}

// Fuser runs one configured fusion algorithm.
type Fuser struct {
	config Config
}

var errWeightsRequired = kferrors.InvalidArgument(kferrors.ErrCodeWeightsMismatch, "weighted fusion requires one weight per input list")

// PostFusionCandidate is the metadata post-fusion needs about one entry,
// kept decoupled from indexstore.Entry so this package has no dependency
// on it.
type PostFusionCandidate struct {
	ID            string
	Category      string
	ProjectID     string
	Tags          []string
	LastModified  time.Time
	Effectiveness float64
	UsageCount    int
	TitleMatched  bool
	MatchedFields int
}
