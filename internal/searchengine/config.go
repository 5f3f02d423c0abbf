package searchengine

import "time"

// Config configures the search engine (C2): presentation defaults, result
// caching, and analytics retention.
type Config struct {
	DefaultLimit  int
	MaxLimit      int
	SnippetLength int
	MaxSnippets   int

	CacheEnabled bool
	CacheTTL     time.Duration
	MaxCacheSize int

	SlowQueryThreshold      time.Duration
	RetentionDays           int
	DefaultClickThroughRate float64

	TopTermsCapacity    int
	ZeroResultsCapacity int
	RecentQueryCapacity int
}

// DefaultConfig returns the engine's default configuration, mirroring
// internal/config's Index/Performance/Analytics defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:            20,
		MaxLimit:                1000,
		SnippetLength:           200,
		MaxSnippets:             5,
		CacheEnabled:            true,
		CacheTTL:                5 * time.Minute,
		MaxCacheSize:            1000,
		SlowQueryThreshold:      1 * time.Second,
		RetentionDays:           90,
		DefaultClickThroughRate: 0,
		TopTermsCapacity:        200,
		ZeroResultsCapacity:     200,
		RecentQueryCapacity:     500,
	}
}
