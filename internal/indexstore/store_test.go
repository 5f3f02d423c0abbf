package indexstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Connect("", DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Disconnect() })
	return store
}

func seedEntries() []*Entry {
	return []*Entry{
		{
			ID: "a1", Type: EntryTypeGotcha, Category: "networking",
			Title: "Circuit breaker trips under load", Content: "Retries pile up and the circuit breaker opens to shed load.",
			Tags: []string{"resilience", "http"}, LastModified: time.Now(),
		},
		{
			ID: "a2", Type: EntryTypeKnowledge, Category: "database",
			Title: "Connection pool exhaustion", Content: "Database connection pools exhaust under bursty load.",
			Tags: []string{"database"}, LastModified: time.Now().Add(-48 * time.Hour),
		},
		{
			ID: "a3", Type: EntryTypeADR, Category: "networking",
			Title: "Adopt exponential backoff for retries", Content: "We adopt exponential backoff with jitter for outbound retries.",
			Tags: []string{"resilience", "retry"}, LastModified: time.Now(),
		},
	}
}

func TestInsertAndGetByID(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	entry, err := store.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Circuit breaker trips under load", entry.Title)
}

func TestGetByIDUnknownReturnsError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	_, err := store.GetByID(context.Background(), "missing")
	require.Error(t, err)
}

func TestSearchFTSBasicRanking(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	result, err := store.SearchFTS(context.Background(), "retries backoff", QueryTypeSimple, Filter{}, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)

	for i := 1; i < len(result.Hits); i++ {
		assert.LessOrEqual(t, result.Hits[i].Score, result.Hits[i-1].Score)
	}
}

func TestSearchFTSPhraseRequiresAdjacency(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	result, err := store.SearchFTS(context.Background(), `"exponential backoff"`, QueryTypePhrase, Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "a3", result.Hits[0].ID)
}

func TestSearchFTSBooleanOperators(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	result, err := store.SearchFTS(context.Background(), "retries AND NOT database", QueryTypeBoolean, Filter{}, 10, 0)
	require.NoError(t, err)
	for _, h := range result.Hits {
		assert.NotEqual(t, "a2", h.ID)
	}
}

func TestSearchFTSFilterByCategory(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	result, err := store.SearchFTS(context.Background(), "load", QueryTypeSimple, Filter{Category: "networking"}, 10, 0)
	require.NoError(t, err)
	for _, h := range result.Hits {
		assert.NotEqual(t, "a2", h.ID)
	}
}

func TestSearchFTSPaginationTotalMatchesStable(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	page1, err := store.SearchFTS(context.Background(), "load", QueryTypeSimple, Filter{}, 1, 0)
	require.NoError(t, err)
	page2, err := store.SearchFTS(context.Background(), "load", QueryTypeSimple, Filter{}, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, page1.TotalMatches, page2.TotalMatches)
	if len(page1.Hits) > 0 && len(page2.Hits) > 0 {
		assert.NotEqual(t, page1.Hits[0].ID, page2.Hits[0].ID)
	}
}

func TestFacetsReflectFilteredCandidateSet(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	facets, err := store.Facets(context.Background(), "load", QueryTypeSimple, Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, facets.Categories)

	var total int
	for _, c := range facets.Categories {
		total += c.Count
	}
	assert.Equal(t, 2, total)
}

func TestDeleteIsTotal(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	require.NoError(t, store.Delete(context.Background(), []string{"a1"}))

	_, err := store.GetByID(context.Background(), "a1")
	require.Error(t, err)

	result, err := store.SearchFTS(context.Background(), "circuit breaker", QueryTypeSimple, Filter{}, 10, 0)
	require.NoError(t, err)
	for _, h := range result.Hits {
		assert.NotEqual(t, "a1", h.ID)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	entries := seedEntries()
	require.NoError(t, store.Insert(context.Background(), entries))
	require.NoError(t, store.Insert(context.Background(), entries))

	count, err := store.Count(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGetByIDsSkipsMissingWithoutError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	got, err := store.GetByIDs(context.Background(), []string{"a1", "does-not-exist", "a3"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestVacuumRunsOnExplicitCallBelowThreshold(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	should, err := store.ShouldVacuum(context.Background())
	require.NoError(t, err)
	assert.False(t, should)

	report, err := store.Vacuum(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Skipped)
}

func TestStatsCountsEntries(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(context.Background(), seedEntries()))

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.EntryCount)
}
