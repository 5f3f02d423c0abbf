package indexmanager

import "time"

// Config configures the index manager (C3): batching, validation limits,
// watch debouncing, and cleanup defaults.
type Config struct {
	BatchSize        int
	MaxContentLength int

	DebounceWindow time.Duration
	PollInterval   time.Duration

	DefaultCleanupMaxAgeDays int
}

// DefaultConfig returns the manager's default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:                100,
		MaxContentLength:         1 << 20,
		DebounceWindow:           500 * time.Millisecond,
		PollInterval:             5 * time.Second,
		DefaultCleanupMaxAgeDays: 90,
	}
}
