package searchengine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

const (
	maxQueryLength = 500
	hardMaxLimit   = 1000
)

// Engine is the search engine (C2): it enforces query contracts, calls the
// index store, enhances and presents raw hits, and records analytics.
type Engine struct {
	store   *indexstore.Store
	config  Config
	cache   *resultCache
	metrics *queryMetrics
}

// New builds a search engine over store.
func New(store *indexstore.Store, cfg Config) *Engine {
	return &Engine{
		store:   store,
		config:  cfg,
		cache:   newResultCache(cfg.MaxCacheSize, cfg.CacheTTL),
		metrics: newQueryMetrics(cfg),
	}
}

// InvalidateCache drops every cached result. The index manager calls this
// after any successful mutation so no stale hit can outlive the write
// commit (spec §5).
func (e *Engine) InvalidateCache() {
	e.cache.invalidateAll()
}

// Search executes the query validation, cache lookup, scoring, snippet,
// facet, and suggestion pipeline described in spec §4.2.
func (e *Engine) Search(ctx context.Context, q SearchQuery) (*SearchResultSet, error) {
	start := time.Now()

	if err := e.validate(&q); err != nil {
		return nil, err
	}

	if e.config.CacheEnabled {
		if cached, ok := e.cache.get(cacheKey(q)); ok {
			e.metrics.record(q.Query, len(cached.Results), time.Since(start))
			return cached, nil
		}
	}

	set, err := e.execute(ctx, q)
	if err != nil {
		return nil, err
	}
	set.ExecutionTime = time.Since(start)

	if e.config.CacheEnabled {
		e.cache.put(cacheKey(q), set)
	}

	e.metrics.record(q.Query, len(set.Results), set.ExecutionTime)
	return set, nil
}

func (e *Engine) validate(q *SearchQuery) error {
	if strings.TrimSpace(q.Query) == "" {
		return kferrors.InvalidQuery(kferrors.ErrCodeQueryEmpty, "query must not be empty")
	}
	if len([]rune(q.Query)) > maxQueryLength {
		return kferrors.InvalidQuery(kferrors.ErrCodeQueryTooLong, fmt.Sprintf("query exceeds %d characters", maxQueryLength))
	}
	if q.Limit > hardMaxLimit {
		return kferrors.InvalidQuery(kferrors.ErrCodeLimitTooHigh, fmt.Sprintf("limit %d exceeds maximum %d", q.Limit, hardMaxLimit))
	}
	if q.Limit <= 0 {
		q.Limit = e.config.DefaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.SnippetLength <= 0 {
		q.SnippetLength = e.config.SnippetLength
	}
	if q.MaxSnippets <= 0 {
		q.MaxSnippets = e.config.MaxSnippets
	}
	return nil
}

func (e *Engine) execute(ctx context.Context, q SearchQuery) (*SearchResultSet, error) {
	ftsResult, err := e.store.SearchFTS(ctx, q.Query, q.QueryType, q.Filter, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	words := queryWords(q.Query)
	weights := DefaultWeights
	if q.CustomWeights != nil {
		weights = *q.CustomWeights
	}

	ids := make([]string, len(ftsResult.Hits))
	for i, h := range ftsResult.Hits {
		ids[i] = h.ID
	}
	entries, err := e.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*indexstore.Entry, len(entries))
	for _, en := range entries {
		byID[en.ID] = en
	}

	results := make([]SearchResult, 0, len(ftsResult.Hits))
	for _, h := range ftsResult.Hits {
		entry, ok := byID[h.ID]
		if !ok {
			// Corrupt or since-deleted row: skipped per spec §7.
			continue
		}

		factors := computeRelevanceFactors(q.Query, words, entry, q.BoostRecent, q.BoostEffective)
		score := enhancedScore(h.Score, factors, weights)

		sr := SearchResult{
			Entry:            entry,
			Score:            score,
			MatchedFields:    matchedFields(words, entry, h.MatchedFields),
			RelevanceFactors: factors,
		}

		if q.IncludeSnippets {
			sr.ContentSnippets = buildSnippets(entry.Content, words, q.SnippetLength, q.MaxSnippets)
		}
		lowerContent := strings.ToLower(entry.Content)
		for _, w := range words {
			sr.EntryMatches += strings.Count(lowerContent, w)
		}
		if q.HighlightResults {
			if titleSnips := buildSnippets(entry.Title, words, q.SnippetLength, 1); len(titleSnips) > 0 {
				sr.TitleSnippet = &titleSnips[0]
			}
		}

		results = append(results, sr)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.ID < results[j].Entry.ID
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	facets, err := e.store.Facets(ctx, q.Query, q.QueryType, q.Filter)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	currentPage := 1
	if q.Limit > 0 {
		totalPages = int(math.Ceil(float64(ftsResult.TotalMatches) / float64(q.Limit)))
		currentPage = q.Offset/q.Limit + 1
	}

	return &SearchResultSet{
		Results:      results,
		TotalMatches: ftsResult.TotalMatches,
		TotalPages:   totalPages,
		CurrentPage:  currentPage,
		Facets:       facets,
		Suggestions:  buildSuggestions(q.Query, e.metrics),
	}, nil
}

// SearchSimilar fetches entryID, extracts its top keywords, builds a
// boolean-OR query over them, forwards to Search, then removes the seed id
// from the results (spec §4.2).
func (e *Engine) SearchSimilar(ctx context.Context, entryID string, limit int) (*SearchResultSet, error) {
	seed, err := e.store.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	keywords := extractKeywords(seed.Title+" "+seed.Content, 10, 4)
	if len(keywords) == 0 {
		return &SearchResultSet{}, nil
	}

	set, err := e.Search(ctx, SearchQuery{
		Query:     strings.Join(keywords, " OR "),
		QueryType: indexstore.QueryTypeBoolean,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	filtered := make([]SearchResult, 0, len(set.Results))
	for _, r := range set.Results {
		if r.Entry.ID == entryID {
			continue
		}
		filtered = append(filtered, r)
	}
	for i := range filtered {
		filtered[i].Rank = i + 1
	}
	set.Results = filtered
	return set, nil
}

// GetSuggestions returns up to limit suggestions for a query prefix.
func (e *Engine) GetSuggestions(prefix string, limit int) []string {
	s := buildSuggestions(prefix, e.metrics)
	if limit > 0 && len(s) > limit {
		s = s[:limit]
	}
	return s
}

// GetPopularQueries returns the limit most frequently recorded queries.
func (e *Engine) GetPopularQueries(limit int) []QueryCount {
	return e.metrics.topQueries(limit)
}

// RecordQuery lets external callers (e.g. a CLI replaying historical
// queries) contribute to analytics without going through Search.
func (e *Engine) RecordQuery(query string, resultCount int, duration time.Duration) {
	e.metrics.record(query, resultCount, duration)
}

// GetAnalytics returns the aggregated analytics surface. from/to are
// accepted for interface compatibility with a time-partitioned analytics
// store; the in-memory aggregates here are since-engine-start totals
// (retention-based partitioning is the responsibility of a persisted
// analytics sink, out of scope for this engine).
func (e *Engine) GetAnalytics(from, to time.Time) *AnalyticsSnapshot {
	return e.metrics.snapshot(e.cache)
}
