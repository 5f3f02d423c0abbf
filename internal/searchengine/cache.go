package searchengine

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

// resultCache holds recently computed SearchResultSets. Eviction combines
// LRU (on overflow, the least recently touched entry is dropped first) with
// a hard TTL checked on lookup, per the cache-eviction design note: an LRU
// policy is acceptable only if it still honors time-based expiry.
type resultCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *cachedResult]
	ttl     time.Duration

	hits   int64
	misses int64
}

type cachedResult struct {
	set       *SearchResultSet
	expiresAt time.Time
}

func newResultCache(maxSize int, ttl time.Duration) *resultCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	c, _ := lru.New[string, *cachedResult](maxSize)
	return &resultCache{entries: c, ttl: ttl}
}

// get returns a shallow copy of the cached result set, if present and not
// expired.
func (c *resultCache) get(key string) (*SearchResultSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Now().After(cached.expiresAt) {
		c.entries.Remove(key)
		c.misses++
		return nil, false
	}
	c.hits++
	copySet := *cached.set
	return &copySet, true
}

func (c *resultCache) put(key string, set *SearchResultSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copySet := *set
	c.entries.Add(key, &cachedResult{set: &copySet, expiresAt: time.Now().Add(c.ttl)})
}

// invalidateAll drops every cached entry. Called after any successful
// mutation to the backing store so no stale hit can outlive the write
// commit (spec §5: result-cache invalidation on a write is total).
func (c *resultCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

func (c *resultCache) metrics() CacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return CacheMetrics{
		HitRate:     hitRate,
		TotalHits:   c.hits,
		TotalMisses: c.misses,
		CacheSize:   c.entries.Len(),
		MemoryBytes: int64(c.entries.Len()) * approxResultSetBytes,
	}
}

// approxResultSetBytes is a rough per-entry memory estimate used only for
// the cache's reported memory footprint, not for any eviction decision.
const approxResultSetBytes = 2048

// cacheKey derives a stable key from everything that can change a search's
// output: query text, filters, pagination, boosts, and custom weights.
func cacheKey(q SearchQuery) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(q.Query)))
	b.WriteByte('|')
	b.WriteString(string(q.QueryType))
	b.WriteByte('|')
	b.WriteString(filterKeyParts(q.Filter))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.Limit))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.Offset))
	b.WriteByte('|')
	b.WriteString(boolFlag(q.BoostRecent))
	b.WriteString(boolFlag(q.BoostEffective))
	b.WriteString(boolFlag(q.IncludeSnippets))
	b.WriteString(boolFlag(q.HighlightResults))
	b.WriteByte('|')
	if q.CustomWeights != nil {
		w := q.CustomWeights
		b.WriteString(strconv.FormatFloat(w.Title, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Content, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Tags, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Category, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Recency, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Effectiveness, 'f', -1, 64))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

func filterKeyParts(f indexstore.Filter) string {
	var b strings.Builder
	b.WriteString(string(f.Type))
	b.WriteByte(';')
	b.WriteString(f.Category)
	b.WriteByte(';')
	b.WriteString(strings.Join(f.Tags, ","))
	b.WriteByte(';')
	b.WriteString(f.ProjectID)
	b.WriteByte(';')
	b.WriteString(strings.Join(f.AgentTypes, ","))
	b.WriteByte(';')
	if !f.Since.IsZero() {
		b.WriteString(strconv.FormatInt(f.Since.Unix(), 10))
	}
	b.WriteByte(';')
	if !f.Until.IsZero() {
		b.WriteString(strconv.FormatInt(f.Until.Unix(), 10))
	}
	return b.String()
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
