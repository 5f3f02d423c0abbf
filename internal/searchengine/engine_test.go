package searchengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

func newTestEngine(t *testing.T) (*Engine, *indexstore.Store) {
	t.Helper()
	store, err := indexstore.Connect("", indexstore.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Disconnect() })

	entries := []*indexstore.Entry{
		{
			ID: "e1", Type: indexstore.EntryTypeGotcha, Category: "networking",
			Title: "Circuit breaker trips under load", Content: "When retries pile up the circuit breaker opens and sheds load.",
			Tags: []string{"resilience", "http"}, LastModified: time.Now(),
		},
		{
			ID: "e2", Type: indexstore.EntryTypeKnowledge, Category: "database",
			Title: "Connection pool exhaustion", Content: "Database connection pools can exhaust under bursty load.",
			Tags: []string{"database"}, LastModified: time.Now().Add(-60 * 24 * time.Hour),
		},
		{
			ID: "e3", Type: indexstore.EntryTypeADR, Category: "networking",
			Title: "Adopt exponential backoff for retries", Content: "We adopt exponential backoff with jitter for all outbound retries.",
			Tags: []string{"resilience", "retry"}, LastModified: time.Now(),
		},
	}
	require.NoError(t, store.Insert(context.Background(), entries))

	cfg := DefaultConfig()
	return New(store, cfg), store
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Search(context.Background(), SearchQuery{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, kferrors.ErrCodeQueryEmpty, kferrors.GetCode(err))
}

func TestSearchRejectsOverlongQuery(t *testing.T) {
	engine, _ := newTestEngine(t)
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	_, err := engine.Search(context.Background(), SearchQuery{Query: string(long)})
	require.Error(t, err)
	assert.Equal(t, kferrors.ErrCodeQueryTooLong, kferrors.GetCode(err))
}

func TestSearchRejectsLimitAboveMax(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Search(context.Background(), SearchQuery{Query: "retry", Limit: 5000})
	require.Error(t, err)
	assert.Equal(t, kferrors.ErrCodeLimitTooHigh, kferrors.GetCode(err))
}

func TestSearchRanksMatchesByEnhancedScore(t *testing.T) {
	engine, _ := newTestEngine(t)
	set, err := engine.Search(context.Background(), SearchQuery{Query: "retries backoff"})
	require.NoError(t, err)
	require.NotEmpty(t, set.Results)

	for i := 1; i < len(set.Results); i++ {
		assert.LessOrEqual(t, set.Results[i].Score, set.Results[i-1].Score)
		assert.Equal(t, i, set.Results[i-1].Rank)
	}
}

func TestSearchPaginationIsComplete(t *testing.T) {
	engine, _ := newTestEngine(t)
	q := SearchQuery{Query: "load", Limit: 1}
	first, err := engine.Search(context.Background(), q)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(first.Results), 1)
	assert.Equal(t, 1, first.CurrentPage)
	if first.TotalMatches > 1 {
		assert.Greater(t, first.TotalPages, 1)
	}
}

func TestSearchCacheReturnsSameResultSet(t *testing.T) {
	engine, _ := newTestEngine(t)
	q := SearchQuery{Query: "circuit breaker"}

	first, err := engine.Search(context.Background(), q)
	require.NoError(t, err)
	second, err := engine.Search(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first.TotalMatches, second.TotalMatches)
	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Entry.ID, second.Results[i].Entry.ID)
	}
}

func TestInvalidateCacheDropsStaleHits(t *testing.T) {
	engine, store := newTestEngine(t)
	q := SearchQuery{Query: "circuit breaker"}

	_, err := engine.Search(context.Background(), q)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), []string{"e1"}))
	engine.InvalidateCache()

	after, err := engine.Search(context.Background(), q)
	require.NoError(t, err)
	for _, r := range after.Results {
		assert.NotEqual(t, "e1", r.Entry.ID)
	}
}

func TestSearchSimilarExcludesSeedEntry(t *testing.T) {
	engine, _ := newTestEngine(t)
	set, err := engine.SearchSimilar(context.Background(), "e1", 10)
	require.NoError(t, err)
	for _, r := range set.Results {
		assert.NotEqual(t, "e1", r.Entry.ID)
	}
}

func TestSearchSimilarUnknownEntryReturnsNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.SearchSimilar(context.Background(), "missing", 10)
	require.Error(t, err)
}

func TestRecordQueryFeedsAnalytics(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.RecordQuery("example query", 4, 50*time.Millisecond)
	snap := engine.GetAnalytics(time.Time{}, time.Time{})
	assert.Equal(t, int64(1), snap.TotalQueries)
	assert.Equal(t, float64(4), snap.AverageResults)
}

func TestGetPopularQueriesOrdersByFrequency(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.RecordQuery("retries", 2, time.Millisecond)
	engine.RecordQuery("retries", 2, time.Millisecond)
	engine.RecordQuery("backoff", 1, time.Millisecond)

	top := engine.GetPopularQueries(10)
	require.NotEmpty(t, top)
	assert.Equal(t, "retries", top[0].Query)
	assert.Equal(t, int64(2), top[0].Count)
}

func TestGetSuggestionsReturnsPopularPrefixMatches(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.RecordQuery("retry policy design", 3, time.Millisecond)

	suggestions := engine.GetSuggestions("retry", 10)
	assert.Contains(t, suggestions, "retry policy design")
}
