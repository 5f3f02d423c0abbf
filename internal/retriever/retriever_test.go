package retriever

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-labs/knowledgeforge/internal/bandit"
	"github.com/kestrel-labs/knowledgeforge/internal/feature"
	"github.com/kestrel-labs/knowledgeforge/internal/fusion"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	"github.com/kestrel-labs/knowledgeforge/internal/rerank"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

// stubEngine returns a fixed, per-arm result set and can optionally sleep
// (or block until ctx is cancelled) before returning, to simulate a slow
// strategy.
type stubEngine struct {
	resultsByWeightTitle map[float64]*searchengine.SearchResultSet
	fallback             *searchengine.SearchResultSet
	delay                time.Duration
	blockUntilCancel     bool
}

func (s *stubEngine) Search(ctx context.Context, q searchengine.SearchQuery) (*searchengine.SearchResultSet, error) {
	if s.blockUntilCancel {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.resultsByWeightTitle != nil && q.CustomWeights != nil {
		if set, ok := s.resultsByWeightTitle[q.CustomWeights.Title]; ok {
			return set, nil
		}
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return &searchengine.SearchResultSet{}, nil
}

func entrySet(ids ...string) *searchengine.SearchResultSet {
	results := make([]searchengine.SearchResult, len(ids))
	for i, id := range ids {
		results[i] = searchengine.SearchResult{
			Entry: &indexstore.Entry{ID: id, Title: "entry " + id, Content: "content for " + id},
			Score: 1.0 / float64(i+1),
			Rank:  i + 1,
		}
	}
	return &searchengine.SearchResultSet{Results: results, TotalMatches: len(ids)}
}

func newTestRetriever(engine SearchEngine, cfg Config) *HybridRetriever {
	learner := bandit.New(bandit.DefaultConfig())
	extractor := feature.New(feature.Config{EnableBasic: true, EnableDerived: true})
	reranker := rerank.New(rerank.Config{Enabled: false, Dimensions: 8})
	return New(cfg, engine, learner, extractor, reranker, nil, nil)
}

func TestRetrieveSingleStrategyHappyPath(t *testing.T) {
	engine := &stubEngine{fallback: entrySet("a", "b", "c")}
	cfg := DefaultConfig()
	cfg.DefaultMode = ModeSingle
	cfg.RerankEnabled = false
	r := newTestRetriever(engine, cfg)

	result, err := r.Retrieve(context.Background(), "q1", RetrievalQuery{Query: "how to fix auth", Limit: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Results)
	assert.Len(t, result.StrategiesAttempted, 1)
	assert.Equal(t, result.StrategiesAttempted[0], result.StrategyUsed)
	assert.True(t, result.AdaptiveLearningActive)
}

func TestRetrieveRecordsQueryContextForFeedback(t *testing.T) {
	engine := &stubEngine{fallback: entrySet("a", "b")}
	r := newTestRetriever(engine, DefaultConfig())

	_, err := r.Retrieve(context.Background(), "q2", RetrievalQuery{Query: "test", Limit: 5})
	require.NoError(t, err)

	r.mu.Lock()
	_, ok := r.contextByQuery["q2"]
	r.mu.Unlock()
	assert.True(t, ok)
}

func TestObserveFeedbackUnknownQueryIDErrors(t *testing.T) {
	engine := &stubEngine{fallback: entrySet("a")}
	r := newTestRetriever(engine, DefaultConfig())

	err := r.ObserveFeedback("never-issued", "a", UserFeedback{Clicked: true})
	assert.Error(t, err)
}

func TestObserveFeedbackUpdatesBanditReward(t *testing.T) {
	engine := &stubEngine{fallback: entrySet("a", "b")}
	r := newTestRetriever(engine, DefaultConfig())

	result, err := r.Retrieve(context.Background(), "q3", RetrievalQuery{Query: "test", Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)

	resultID := result.Results[0].Entry.ID
	err = r.ObserveFeedback("q3", resultID, UserFeedback{UsedInSolution: true, RelevanceRating: 5})
	assert.NoError(t, err)

	stats, ok := r.learner.ArmStats(result.StrategyUsed)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Trials)
}

func TestForgetQueryRemovesRecord(t *testing.T) {
	engine := &stubEngine{fallback: entrySet("a")}
	r := newTestRetriever(engine, DefaultConfig())

	_, err := r.Retrieve(context.Background(), "q4", RetrievalQuery{Query: "test"})
	require.NoError(t, err)

	r.ForgetQuery("q4")
	err = r.ObserveFeedback("q4", "a", UserFeedback{Clicked: true})
	assert.Error(t, err)
}

// TestHybridRetrieveToleratesASlowStragglerArm is the mandated scenario:
// in parallel mode with two strategies where one arm never returns and
// parallelTimeout is short, Retrieve must return promptly with results
// from the surviving arm only.
func TestHybridRetrieveToleratesASlowStragglerArm(t *testing.T) {
	fast := entrySet("fast-1", "fast-2")
	engine := &stubEngine{
		resultsByWeightTitle: map[float64]*searchengine.SearchResultSet{
			searchengine.DefaultWeights.Title * 1.5: fast, // ArmFTSHeavy's weights
		},
	}
	// ArmVectorHeavy leaves CustomWeights.Title untouched (== DefaultWeights.Title),
	// which isn't in resultsByWeightTitle, so it falls through... we need it to
	// hang instead. Use a second stub wrapping engine to block on that arm.
	slow := &blockingOnWeightEngine{
		inner:        engine,
		blockedTitle: searchengine.DefaultWeights.Title,
	}

	cfg := DefaultConfig()
	cfg.DefaultMode = ModeParallel
	cfg.ParallelArms = []bandit.Arm{bandit.ArmFTSHeavy, bandit.ArmVectorHeavy}
	cfg.ParallelTimeout = 500 * time.Millisecond
	cfg.RerankEnabled = false

	learner := bandit.New(bandit.Config{
		Algorithm: bandit.AlgorithmEpsilonGreedy, InitialEpsilon: 0, EpsilonDecay: 1, MinEpsilon: 0,
		ConfidenceLevel: 0.95, WindowSize: 100,
	})
	extractor := feature.New(feature.Config{EnableBasic: true})
	reranker := rerank.New(rerank.Config{Enabled: false, Dimensions: 8})
	r := New(cfg, slow, learner, extractor, reranker, nil, nil)

	start := time.Now()
	result, err := r.Retrieve(context.Background(), "qslow", RetrievalQuery{
		Query: "slow strategy", Mode: ModeParallel, Limit: 10,
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 600*time.Millisecond)
	assert.NotEmpty(t, result.Results)
	assert.Contains(t, result.StrategiesAttempted, bandit.ArmFTSHeavy)
	assert.NotContains(t, result.StrategiesAttempted, bandit.ArmVectorHeavy)
}

// blockingOnWeightEngine blocks forever (until ctx cancellation) for
// searches whose CustomWeights.Title matches blockedTitle, delegating
// everything else to inner.
type blockingOnWeightEngine struct {
	inner        SearchEngine
	blockedTitle float64
}

func (b *blockingOnWeightEngine) Search(ctx context.Context, q searchengine.SearchQuery) (*searchengine.SearchResultSet, error) {
	if q.CustomWeights != nil && q.CustomWeights.Title == b.blockedTitle {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return b.inner.Search(ctx, q)
}

func TestFanOutErrorsWhenEveryArmFails(t *testing.T) {
	engine := &stubEngine{blockUntilCancel: true}
	cfg := DefaultConfig()
	cfg.DefaultMode = ModeParallel
	cfg.ParallelArms = []bandit.Arm{bandit.ArmFTSHeavy, bandit.ArmVectorHeavy}
	cfg.ParallelTimeout = 50 * time.Millisecond
	r := newTestRetriever(engine, cfg)

	_, err := r.Retrieve(context.Background(), "qfail", RetrievalQuery{Query: "test", Mode: ModeParallel})
	assert.Error(t, err)
}

func TestPlanForProducesDistinctPlanPerArm(t *testing.T) {
	seen := map[strategyPlan]bandit.Arm{}
	for _, arm := range bandit.Arms {
		plan := planFor(arm)
		assert.NotZero(t, plan.weights.Title)
		prev, dup := seen[plan]
		assert.False(t, dup, "arms %s and %s share a plan", prev, arm)
		seen[plan] = arm
	}
}

func TestFusionAlgorithmDefaultsToRRF(t *testing.T) {
	assert.Equal(t, fusion.AlgorithmRRF, DefaultConfig().FusionAlgorithm)
}
