package searchengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCacheHitAndMiss(t *testing.T) {
	c := newResultCache(10, time.Minute)
	q := SearchQuery{Query: "retry policy", Limit: 20}
	key := cacheKey(q)

	_, ok := c.get(key)
	assert.False(t, ok)

	set := &SearchResultSet{TotalMatches: 3}
	c.put(key, set)

	got, ok := c.get(key)
	require.True(t, ok)
	assert.Equal(t, 3, got.TotalMatches)

	m := c.metrics()
	assert.Equal(t, int64(1), m.TotalHits)
	assert.Equal(t, int64(1), m.TotalMisses)
}

func TestResultCacheExpiresByTTL(t *testing.T) {
	c := newResultCache(10, -1*time.Second) // already expired
	key := cacheKey(SearchQuery{Query: "x"})
	c.put(key, &SearchResultSet{})

	_, ok := c.get(key)
	assert.False(t, ok)
}

func TestResultCacheInvalidateAllClearsEverything(t *testing.T) {
	c := newResultCache(10, time.Minute)
	key := cacheKey(SearchQuery{Query: "x"})
	c.put(key, &SearchResultSet{})

	c.invalidateAll()

	_, ok := c.get(key)
	assert.False(t, ok)
}

func TestCacheKeyDiffersOnFilterOrPagination(t *testing.T) {
	base := SearchQuery{Query: "error handling", Limit: 20}
	withOffset := base
	withOffset.Offset = 20

	assert.NotEqual(t, cacheKey(base), cacheKey(withOffset))
}

func TestCacheKeyStableAcrossCase(t *testing.T) {
	a := cacheKey(SearchQuery{Query: "Retry Policy"})
	b := cacheKey(SearchQuery{Query: "retry policy"})
	assert.Equal(t, a, b)
}
