package retriever

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kestrel-labs/knowledgeforge/internal/bandit"
	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
	"github.com/kestrel-labs/knowledgeforge/internal/feature"
	"github.com/kestrel-labs/knowledgeforge/internal/fusion"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	"github.com/kestrel-labs/knowledgeforge/internal/rerank"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

// SearchEngine is the subset of *searchengine.Engine the retriever calls,
// narrowed to an interface so tests can substitute a stub.
type SearchEngine interface {
	Search(ctx context.Context, q searchengine.SearchQuery) (*searchengine.SearchResultSet, error)
}

// HybridRetriever is the top-level entry point (C8): it asks the bandit
// for a strategy, executes one or several arms against the search
// engine, extracts features, fuses, optionally reranks, and routes
// feedback back to the bandit and reranker.
type HybridRetriever struct {
	config   Config
	engine   SearchEngine
	learner  *bandit.Learner
	extractor *feature.Extractor
	reranker  *rerank.Reranker
	vectors   *VectorIndex
	embedder  Embedder

	// breakers holds one circuit breaker per arm, protecting the fan-out
	// in runArm from repeatedly hammering a strategy that keeps failing
	// (e.g. a vector-heavy arm whose embedder backend is down).
	breakers map[bandit.Arm]*kferrors.CircuitBreaker

	// contextByQuery remembers the bandit context and per-result feature
	// rows a queryID was issued with, so a later ObserveFeedback call can
	// attribute reward and rerank labels without the caller re-supplying
	// them. ObserveFeedback leaves the record in place; it stays until
	// ForgetQuery removes it.
	mu             sync.Mutex
	contextByQuery map[string]queryRecord
}

type queryRecord struct {
	banditCtx bandit.Context
	strategy  bandit.Arm
	features  map[string][]float64
}

// New builds a HybridRetriever. vectors and embedder may be nil when
// EnableVectorSearch is false or no vector-capable arm is ever selected.
func New(cfg Config, engine SearchEngine, learner *bandit.Learner, extractor *feature.Extractor, reranker *rerank.Reranker, vectors *VectorIndex, embedder Embedder) *HybridRetriever {
	breakers := make(map[bandit.Arm]*kferrors.CircuitBreaker, len(bandit.Arms))
	for _, a := range bandit.Arms {
		breakers[a] = kferrors.NewCircuitBreaker(string(a),
			kferrors.WithMaxFailures(3),
			kferrors.WithResetTimeout(30*time.Second))
	}

	return &HybridRetriever{
		config:         cfg,
		engine:         engine,
		learner:        learner,
		extractor:      extractor,
		reranker:       reranker,
		vectors:        vectors,
		embedder:       embedder,
		breakers:       breakers,
		contextByQuery: make(map[string]queryRecord),
	}
}

// runArm executes one strategy against the search engine (and, if the plan
// calls for it, the vector index), returning results as a fusion.RankedItem
// list plus the raw entries keyed by id.
func (h *HybridRetriever) runArm(ctx context.Context, arm bandit.Arm, query string, limit int) ([]fusion.RankedItem, map[string]*indexstore.Entry, error) {
	plan := planFor(arm)

	sq := searchengine.SearchQuery{
		Query:          query,
		Limit:          limit,
		CustomWeights:  &plan.weights,
		BoostRecent:    plan.boostRecent,
		BoostEffective: plan.boostEffective,
	}
	set, err := h.engine.Search(ctx, sq)
	if err != nil {
		return nil, nil, err
	}

	items := make([]fusion.RankedItem, 0, len(set.Results))
	entries := make(map[string]*indexstore.Entry, len(set.Results))
	for _, r := range set.Results {
		items = append(items, fusion.RankedItem{ID: r.Entry.ID, Score: r.Score})
		entries[r.Entry.ID] = r.Entry
	}

	if plan.useVector && h.config.EnableVectorSearch && h.vectors != nil && h.embedder != nil {
		vecEmbedding, embedErr := h.embedder.Embed(ctx, query)
		if embedErr == nil {
			vecResults, searchErr := h.vectors.Search(vecEmbedding, limit)
			if searchErr == nil {
				for _, vr := range vecResults {
					items = append(items, fusion.RankedItem{ID: vr.ID, Score: vr.Score})
				}
			}
		}
	}

	return items, entries, nil
}

// runArmGuarded runs arm through its circuit breaker: a strategy that has
// tripped its breaker (too many recent failures) fails fast without
// touching the search engine, instead of piling up latency on every
// query until it recovers.
func (h *HybridRetriever) runArmGuarded(ctx context.Context, arm bandit.Arm, query string, limit int) ([]fusion.RankedItem, map[string]*indexstore.Entry, error) {
	breaker := h.breakers[arm]
	if breaker == nil {
		return h.runArm(ctx, arm, query, limit)
	}

	var items []fusion.RankedItem
	var entries map[string]*indexstore.Entry
	err := breaker.Execute(func() error {
		var runErr error
		items, entries, runErr = h.runArm(ctx, arm, query, limit)
		return runErr
	})
	return items, entries, err
}

// Retrieve runs the full pipeline for one query.
func (h *HybridRetriever) Retrieve(ctx context.Context, queryID string, rq RetrievalQuery) (*RetrievalResult, error) {
	totalStart := time.Now()
	var timings StageTimings

	mode := rq.Mode
	if mode == "" {
		mode = h.config.DefaultMode
	}
	limit := rq.Limit
	if limit <= 0 {
		limit = 20
	}

	selStart := time.Now()
	primary := h.learner.SelectArm(rq.Bandit)
	epsilonBefore := h.learner.Epsilon()
	timings.StrategySelection = time.Since(selStart)

	arms := []bandit.Arm{primary}
	if mode == ModeParallel || (mode == ModeAdaptive && len(h.config.ParallelArms) > 1) {
		seen := map[bandit.Arm]bool{primary: true}
		arms = []bandit.Arm{primary}
		for _, a := range h.config.ParallelArms {
			if !seen[a] {
				seen[a] = true
				arms = append(arms, a)
			}
		}
	}

	searchStart := time.Now()
	lists, entriesByID, attempted, err := h.fanOut(ctx, arms, rq.Query, limit)
	timings.Search = time.Since(searchStart)
	if err != nil {
		return nil, err
	}
	if len(attempted) == 0 {
		return nil, kferrors.SearchTimeout(kferrors.ErrCodeParallelFanoutTimeout, "hybrid retriever: every strategy failed or timed out", err)
	}

	entries := make([]*indexstore.Entry, 0, len(entriesByID))
	for _, e := range entriesByID {
		entries = append(entries, e)
	}

	featStart := time.Now()
	vectors := h.extractor.ExtractBatch(rq.Query, entries, rq.Context)
	featuresByID := make(map[string][]float64, len(vectors))
	for _, v := range vectors {
		featuresByID[v.EntryID] = v.Flatten()
	}
	timings.FeatureExtraction = time.Since(featStart)

	fuseStart := time.Now()
	fuser, ferr := fusion.New(fusion.Config{Algorithm: h.config.FusionAlgorithm})
	if ferr != nil {
		return nil, ferr
	}
	fused, err := fuser.Fuse(lists, featuresByID)
	if err != nil {
		return nil, err
	}
	timings.Fusion = time.Since(fuseStart)

	rerankStart := time.Now()
	rankerUsed := map[string]rerank.RankerUsed{}
	if h.config.RerankEnabled && h.reranker != nil && len(fused) <= h.config.MaxRerankingCandidates {
		candidates := make([]rerank.Candidate, len(fused))
		for i, f := range fused {
			candidates[i] = rerank.Candidate{ID: f.ID, Score: f.Score, Features: featuresByID[f.ID]}
		}
		reranked := h.reranker.Rerank(candidates)
		for _, r := range reranked {
			rankerUsed[r.ID] = r.RankerUsed
		}
		fused = applyRerankOrder(fused, reranked)
	}
	timings.Rerank = time.Since(rerankStart)

	results := make([]RetrievedEntry, 0, len(fused))
	for _, f := range fused {
		entry, ok := entriesByID[f.ID]
		if !ok {
			continue
		}
		used := "base"
		if ru, ok := rankerUsed[f.ID]; ok {
			used = string(ru)
		}
		results = append(results, RetrievedEntry{
			Entry:      entry,
			Score:      fmt.Sprintf("%.4f", f.Score),
			Score64:    f.Score,
			Rank:       f.Rank,
			RankerUsed: used,
		})
	}

	timings.Total = time.Since(totalStart)

	h.mu.Lock()
	h.contextByQuery[queryID] = queryRecord{banditCtx: rq.Bandit, strategy: primary, features: featuresByID}
	h.mu.Unlock()

	return &RetrievalResult{
		QueryID:                queryID,
		Results:                results,
		StrategyUsed:           primary,
		StrategiesAttempted:    attempted,
		ExplorationPerformed:   h.learner.Epsilon() != epsilonBefore || len(attempted) > 1,
		AdaptiveLearningActive: true,
		Timings:                timings,
	}, nil
}

// fanOut runs every arm's search concurrently, bounded by
// config.ParallelTimeout when there's more than one arm. Partial
// failures (including timed-out stragglers) are tolerated as long as at
// least one arm returns.
func (h *HybridRetriever) fanOut(ctx context.Context, arms []bandit.Arm, query string, limit int) ([][]fusion.RankedItem, map[string]*indexstore.Entry, []bandit.Arm, error) {
	if len(arms) == 1 {
		items, entries, err := h.runArmGuarded(ctx, arms[0], query, limit)
		if err != nil {
			return nil, nil, nil, err
		}
		return [][]fusion.RankedItem{items}, entries, arms, nil
	}

	fanCtx := ctx
	var cancel context.CancelFunc
	if h.config.ParallelTimeout > 0 {
		fanCtx, cancel = context.WithTimeout(ctx, h.config.ParallelTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(fanCtx)
	type armResult struct {
		arm     bandit.Arm
		items   []fusion.RankedItem
		entries map[string]*indexstore.Entry
	}
	resultsCh := make([]*armResult, len(arms))

	for i, arm := range arms {
		i, arm := i, arm
		g.Go(func() error {
			items, entries, err := h.runArmGuarded(gctx, arm, query, limit)
			if err != nil {
				// Swallow per-arm errors (including context deadline):
				// a straggler or a failed arm should not sink the whole
				// fan-out as long as another arm succeeds.
				return nil
			}
			resultsCh[i] = &armResult{arm: arm, items: items, entries: entries}
			return nil
		})
	}
	_ = g.Wait()

	lists := make([][]fusion.RankedItem, 0, len(arms))
	entries := make(map[string]*indexstore.Entry)
	attempted := make([]bandit.Arm, 0, len(arms))
	for _, r := range resultsCh {
		if r == nil {
			continue
		}
		lists = append(lists, r.items)
		attempted = append(attempted, r.arm)
		for id, e := range r.entries {
			entries[id] = e
		}
	}
	return lists, entries, attempted, nil
}

// applyRerankOrder rewrites fused's order and scores to match reranked.
// The output holds only the entries present in reranked; Retrieve builds
// the rerank candidates 1:1 from fused, so none are lost.
func applyRerankOrder(fused []fusion.FusedResult, reranked []rerank.Result) []fusion.FusedResult {
	byID := make(map[string]fusion.FusedResult, len(fused))
	for _, f := range fused {
		byID[f.ID] = f
	}
	out := make([]fusion.FusedResult, 0, len(reranked))
	for _, r := range reranked {
		f := byID[r.ID]
		f.Score = r.Score
		f.Rank = r.Rank
		out = append(out, f)
	}
	return out
}
