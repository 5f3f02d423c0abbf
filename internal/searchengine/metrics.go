package searchengine

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// circularBuffer is a fixed-capacity FIFO ring, used here to bound the
// slow-query log without an unbounded allocation.
type circularBuffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

func newCircularBuffer[T any](capacity int) *circularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &circularBuffer[T]{items: make([]T, capacity), capacity: capacity}
}

func (b *circularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

func (b *circularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.size == 0 {
		return []T{}
	}
	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// queryMetrics accumulates the analytics surface exposed by GetAnalytics:
// query counters, response-time aggregates, a bounded slow-query log, and
// per-query popularity counts used both for analytics and suggestions.
type queryMetrics struct {
	mu sync.RWMutex

	totalQueries       int64
	totalQueryLength   int64
	totalResults       int64
	zeroResultCount    int64
	totalResponseTime  time.Duration
	uniqueQueryCount   int64

	queryCounts *lru.Cache[string, int64]
	seenQueries *lru.Cache[string, struct{}]
	slowQueries *circularBuffer[SlowQuery]

	slowQueryThreshold time.Duration
	clickThroughRate   float64
}

func newQueryMetrics(cfg Config) *queryMetrics {
	topCap := cfg.TopTermsCapacity
	if topCap <= 0 {
		topCap = 200
	}
	recentCap := cfg.RecentQueryCapacity
	if recentCap <= 0 {
		recentCap = 500
	}
	zeroCap := cfg.ZeroResultsCapacity
	if zeroCap <= 0 {
		zeroCap = 200
	}
	queryCounts, _ := lru.New[string, int64](topCap)
	seenQueries, _ := lru.New[string, struct{}](recentCap)
	return &queryMetrics{
		queryCounts:        queryCounts,
		seenQueries:        seenQueries,
		slowQueries:        newCircularBuffer[SlowQuery](zeroCap),
		slowQueryThreshold: cfg.SlowQueryThreshold,
		clickThroughRate:   cfg.DefaultClickThroughRate,
	}
}

// record bumps the engine's query counters (spec §4.2 step 9). Called once
// per completed search, cache hits included.
func (m *queryMetrics) record(query string, resultCount int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries++
	m.totalQueryLength += int64(len([]rune(query)))
	m.totalResults += int64(resultCount)
	m.totalResponseTime += duration
	if resultCount == 0 {
		m.zeroResultCount++
	}
	if duration > m.slowQueryThreshold {
		m.slowQueries.Add(SlowQuery{Query: query, Duration: duration, Timestamp: time.Now()})
	}

	normalized := strings.ToLower(strings.TrimSpace(query))
	count, _ := m.queryCounts.Get(normalized)
	m.queryCounts.Add(normalized, count+1)

	hash := hashQuery(normalized)
	if _, exists := m.seenQueries.Get(hash); !exists {
		m.uniqueQueryCount++
	}
	m.seenQueries.Add(hash, struct{}{})
}

func hashQuery(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}

// topQueries returns the limit most frequent recorded queries, descending
// by count, ties broken alphabetically for determinism.
func (m *queryMetrics) topQueries(limit int) []QueryCount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]QueryCount, 0, len(m.queryCounts.Keys()))
	for _, k := range m.queryCounts.Keys() {
		if c, ok := m.queryCounts.Peek(k); ok {
			out = append(out, QueryCount{Query: k, Count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// queriesWithPrefix returns recorded queries beginning with prefix, most
// frequent first, used by suggestion generation.
func (m *queryMetrics) queriesWithPrefix(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	candidates := m.topQueries(0)
	out := make([]string, 0, limit)
	for _, c := range candidates {
		if strings.HasPrefix(c.Query, prefix) && c.Query != prefix {
			out = append(out, c.Query)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (m *queryMetrics) snapshot(cache *resultCache) *AnalyticsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avgLen, avgResp, avgResults float64
	if m.totalQueries > 0 {
		avgLen = float64(m.totalQueryLength) / float64(m.totalQueries)
		avgResults = float64(m.totalResults) / float64(m.totalQueries)
	}
	var avgRespDur time.Duration
	if m.totalQueries > 0 {
		avgRespDur = m.totalResponseTime / time.Duration(m.totalQueries)
	}
	_ = avgResp

	var cm CacheMetrics
	if cache != nil {
		cm = cache.metrics()
	}

	return &AnalyticsSnapshot{
		TotalQueries:        m.totalQueries,
		UniqueQueries:       m.uniqueQueryCount,
		AverageQueryLength:  avgLen,
		TopQueries:          m.topQueries(10),
		AverageResponseTime: avgRespDur,
		SlowQueries:         m.slowQueries.Items(),
		CacheMetrics:        cm,
		AverageResults:      avgResults,
		ZeroResultQueries:   m.zeroResultCount,
		ClickThroughRate:    m.clickThroughRate,
	}
}
