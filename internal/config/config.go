package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete knowledgeforge engine configuration.
// It mirrors the configuration groups enumerated in the external
// interfaces section of the engine design: Index, Bandit, Features,
// Reranking, Hybrid, Performance, and Analytics.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	Bandit     BanditConfig     `yaml:"bandit" json:"bandit"`
	Features   FeaturesConfig   `yaml:"features" json:"features"`
	Reranking  RerankingConfig  `yaml:"reranking" json:"reranking"`
	Hybrid     HybridConfig     `yaml:"hybrid" json:"hybrid"`
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
	Analytics  AnalyticsConfig  `yaml:"analytics" json:"analytics"`
}

// IndexConfig configures the index store (C1).
type IndexConfig struct {
	DatabasePath      string `yaml:"database_path" json:"database_path"`
	MaxDatabaseSize   int64  `yaml:"max_database_size" json:"max_database_size"`
	Tokenizer         string `yaml:"tokenizer" json:"tokenizer"`
	RemoveAccents     bool   `yaml:"remove_accents" json:"remove_accents"`
	CaseSensitive     bool   `yaml:"case_sensitive" json:"case_sensitive"`
	CacheSize         int    `yaml:"cache_size" json:"cache_size"`
	Synchronous       string `yaml:"synchronous" json:"synchronous"`
	JournalMode       string `yaml:"journal_mode" json:"journal_mode"`
	BatchSize         int    `yaml:"batch_size" json:"batch_size"`
	MaxContentLength  int    `yaml:"max_content_length" json:"max_content_length"`
	AutoVacuum        bool   `yaml:"auto_vacuum" json:"auto_vacuum"`
	VacuumThreshold   float64 `yaml:"vacuum_threshold" json:"vacuum_threshold"`
	RetentionDays     int    `yaml:"retention_days" json:"retention_days"`
	DefaultLimit      int    `yaml:"default_limit" json:"default_limit"`
	MaxLimit          int    `yaml:"max_limit" json:"max_limit"`
	SnippetLength     int    `yaml:"snippet_length" json:"snippet_length"`
	MaxSnippets       int    `yaml:"max_snippets" json:"max_snippets"`
}

// BanditConfig configures the multi-armed bandit learner (C7).
type BanditConfig struct {
	Algorithm       string  `yaml:"algorithm" json:"algorithm"`
	InitialEpsilon  float64 `yaml:"initial_epsilon" json:"initial_epsilon"`
	EpsilonDecay    float64 `yaml:"epsilon_decay" json:"epsilon_decay"`
	ConfidenceLevel float64 `yaml:"confidence_level" json:"confidence_level"`
	WindowSize      int     `yaml:"window_size" json:"window_size"`
}

// FeaturesConfig configures the feature extractor (C4).
type FeaturesConfig struct {
	EnableBasicFeatures    bool               `yaml:"enable_basic_features" json:"enable_basic_features"`
	EnableRecencyFeatures  bool               `yaml:"enable_recency_features" json:"enable_recency_features"`
	EnableProximityFeatures bool              `yaml:"enable_proximity_features" json:"enable_proximity_features"`
	EnableAffinityFeatures bool               `yaml:"enable_affinity_features" json:"enable_affinity_features"`
	EnableSemanticFeatures bool               `yaml:"enable_semantic_features" json:"enable_semantic_features"`
	EnableContextFeatures  bool               `yaml:"enable_context_features" json:"enable_context_features"`
	EnableDerivedFeatures  bool               `yaml:"enable_derived_features" json:"enable_derived_features"`
	FeatureWeights         map[string]float64 `yaml:"feature_weights" json:"feature_weights"`
	NormalizeFeatures      bool               `yaml:"normalize_features" json:"normalize_features"`
	ScalingMethod          string             `yaml:"scaling_method" json:"scaling_method"`
}

// RerankingConfig configures the online re-ranker (C6).
type RerankingConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	Algorithm      string  `yaml:"algorithm" json:"algorithm"`
	LearningRate   float64 `yaml:"learning_rate" json:"learning_rate"`
	Regularization float64 `yaml:"regularization" json:"regularization"`
	BatchSize      int     `yaml:"batch_size" json:"batch_size"`
	OnlineLearning bool    `yaml:"online_learning" json:"online_learning"`
}

// HybridConfig configures the hybrid retriever (C8).
type HybridConfig struct {
	DefaultMode         string `yaml:"default_mode" json:"default_mode"`
	ParallelTimeout     string `yaml:"parallel_timeout" json:"parallel_timeout"`
	FusionAlgorithm     string `yaml:"fusion_algorithm" json:"fusion_algorithm"`
	EnableVectorSearch  bool   `yaml:"enable_vector_search" json:"enable_vector_search"`
}

// PerformanceConfig configures resource limits across the engine.
type PerformanceConfig struct {
	MaxFeatureExtractionTime string `yaml:"max_feature_extraction_time" json:"max_feature_extraction_time"`
	MaxRerankingCandidates   int    `yaml:"max_reranking_candidates" json:"max_reranking_candidates"`
	CacheEnabled             bool   `yaml:"cache_enabled" json:"cache_enabled"`
	CacheTTL                 string `yaml:"cache_ttl" json:"cache_ttl"`
	MaxMemoryUsage           string `yaml:"max_memory_usage" json:"max_memory_usage"`
	MaxConcurrentQueries     int    `yaml:"max_concurrent_queries" json:"max_concurrent_queries"`
	IndexWorkers             int    `yaml:"index_workers" json:"index_workers"`
	WatchDebounce            string `yaml:"watch_debounce" json:"watch_debounce"`
}

// AnalyticsConfig configures search analytics and telemetry (C2).
type AnalyticsConfig struct {
	TrackingEnabled          bool    `yaml:"tracking_enabled" json:"tracking_enabled"`
	BatchSize                int     `yaml:"batch_size" json:"batch_size"`
	RetentionDays            int     `yaml:"retention_days" json:"retention_days"`
	SlowQueryThreshold       string  `yaml:"slow_query_threshold" json:"slow_query_threshold"`
	LowRelevanceThreshold    float64 `yaml:"low_relevance_threshold" json:"low_relevance_threshold"`
	DefaultConfidenceLevel   float64 `yaml:"default_confidence_level" json:"default_confidence_level"`
	DefaultMinimumEffect     float64 `yaml:"default_minimum_effect" json:"default_minimum_effect"`
	DefaultClickThroughRate  float64 `yaml:"default_click_through_rate" json:"default_click_through_rate"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			DatabasePath:     defaultDatabasePath(),
			MaxDatabaseSize:  0, // 0 = unbounded
			Tokenizer:        "porter",
			RemoveAccents:    true,
			CaseSensitive:    false,
			CacheSize:        2000,
			Synchronous:      "normal",
			JournalMode:      "wal",
			BatchSize:        100,
			MaxContentLength: 1 << 20, // 1MB
			AutoVacuum:       true,
			VacuumThreshold:  0.2,
			RetentionDays:    0, // 0 = keep forever
			DefaultLimit:     20,
			MaxLimit:         200,
			SnippetLength:    200,
			MaxSnippets:      3,
		},
		Bandit: BanditConfig{
			Algorithm:       "epsilon_greedy",
			InitialEpsilon:  0.1,
			EpsilonDecay:    0.995,
			ConfidenceLevel: 2.0,
			WindowSize:      1000,
		},
		Features: FeaturesConfig{
			EnableBasicFeatures:     true,
			EnableRecencyFeatures:   true,
			EnableProximityFeatures: true,
			EnableAffinityFeatures:  true,
			EnableSemanticFeatures:  true,
			EnableContextFeatures:   true,
			EnableDerivedFeatures:   true,
			FeatureWeights:          map[string]float64{},
			NormalizeFeatures:       true,
			ScalingMethod:           "zscore",
		},
		Reranking: RerankingConfig{
			Enabled:        true,
			Algorithm:      "online_logistic",
			LearningRate:   0.01,
			Regularization: 0.001,
			BatchSize:      32,
			OnlineLearning: true,
		},
		Hybrid: HybridConfig{
			DefaultMode:        "adaptive",
			ParallelTimeout:    "2s",
			FusionAlgorithm:    "rrf",
			EnableVectorSearch: true,
		},
		Performance: PerformanceConfig{
			MaxFeatureExtractionTime: "50ms",
			MaxRerankingCandidates:   200,
			CacheEnabled:             true,
			CacheTTL:                 "5m",
			MaxMemoryUsage:           "auto",
			MaxConcurrentQueries:     runtime.NumCPU() * 4,
			IndexWorkers:             runtime.NumCPU(),
			WatchDebounce:            "500ms",
		},
		Analytics: AnalyticsConfig{
			TrackingEnabled:         true,
			BatchSize:               50,
			RetentionDays:           90,
			SlowQueryThreshold:      "200ms",
			LowRelevanceThreshold:   0.3,
			DefaultConfidenceLevel:  0.95,
			DefaultMinimumEffect:    0.05,
			DefaultClickThroughRate: 0.0, // placeholder until observed CTR accumulates
		},
	}
}

// defaultDatabasePath returns the default index store path.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".knowledgeforge", "index.db")
	}
	return filepath.Join(home, ".knowledgeforge", "index.db")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/knowledgeforge/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/knowledgeforge/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "knowledgeforge", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "knowledgeforge", "config.yaml")
	}
	return filepath.Join(home, ".config", "knowledgeforge", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist (that's OK).
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()

	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}

	return cfg, nil
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/knowledgeforge/config.yaml)
//  3. Project config (.knowledgeforge.yaml in the working directory)
//  4. Environment variables (KNOWLEDGEFORGE_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .knowledgeforge.yaml or .knowledgeforge.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".knowledgeforge.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".knowledgeforge.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Index
	if other.Index.DatabasePath != "" {
		c.Index.DatabasePath = other.Index.DatabasePath
	}
	if other.Index.MaxDatabaseSize != 0 {
		c.Index.MaxDatabaseSize = other.Index.MaxDatabaseSize
	}
	if other.Index.Tokenizer != "" {
		c.Index.Tokenizer = other.Index.Tokenizer
	}
	if other.Index.CacheSize != 0 {
		c.Index.CacheSize = other.Index.CacheSize
	}
	if other.Index.Synchronous != "" {
		c.Index.Synchronous = other.Index.Synchronous
	}
	if other.Index.JournalMode != "" {
		c.Index.JournalMode = other.Index.JournalMode
	}
	if other.Index.BatchSize != 0 {
		c.Index.BatchSize = other.Index.BatchSize
	}
	if other.Index.MaxContentLength != 0 {
		c.Index.MaxContentLength = other.Index.MaxContentLength
	}
	if other.Index.VacuumThreshold != 0 {
		c.Index.VacuumThreshold = other.Index.VacuumThreshold
	}
	if other.Index.RetentionDays != 0 {
		c.Index.RetentionDays = other.Index.RetentionDays
	}
	if other.Index.DefaultLimit != 0 {
		c.Index.DefaultLimit = other.Index.DefaultLimit
	}
	if other.Index.MaxLimit != 0 {
		c.Index.MaxLimit = other.Index.MaxLimit
	}
	if other.Index.SnippetLength != 0 {
		c.Index.SnippetLength = other.Index.SnippetLength
	}
	if other.Index.MaxSnippets != 0 {
		c.Index.MaxSnippets = other.Index.MaxSnippets
	}

	// Bandit
	if other.Bandit.Algorithm != "" {
		c.Bandit.Algorithm = other.Bandit.Algorithm
	}
	if other.Bandit.InitialEpsilon != 0 {
		c.Bandit.InitialEpsilon = other.Bandit.InitialEpsilon
	}
	if other.Bandit.EpsilonDecay != 0 {
		c.Bandit.EpsilonDecay = other.Bandit.EpsilonDecay
	}
	if other.Bandit.ConfidenceLevel != 0 {
		c.Bandit.ConfidenceLevel = other.Bandit.ConfidenceLevel
	}
	if other.Bandit.WindowSize != 0 {
		c.Bandit.WindowSize = other.Bandit.WindowSize
	}

	// Features
	if len(other.Features.FeatureWeights) > 0 {
		c.Features.FeatureWeights = other.Features.FeatureWeights
	}
	if other.Features.ScalingMethod != "" {
		c.Features.ScalingMethod = other.Features.ScalingMethod
	}

	// Reranking
	if other.Reranking.Algorithm != "" {
		c.Reranking.Algorithm = other.Reranking.Algorithm
	}
	if other.Reranking.LearningRate != 0 {
		c.Reranking.LearningRate = other.Reranking.LearningRate
	}
	if other.Reranking.Regularization != 0 {
		c.Reranking.Regularization = other.Reranking.Regularization
	}
	if other.Reranking.BatchSize != 0 {
		c.Reranking.BatchSize = other.Reranking.BatchSize
	}

	// Hybrid
	if other.Hybrid.DefaultMode != "" {
		c.Hybrid.DefaultMode = other.Hybrid.DefaultMode
	}
	if other.Hybrid.ParallelTimeout != "" {
		c.Hybrid.ParallelTimeout = other.Hybrid.ParallelTimeout
	}
	if other.Hybrid.FusionAlgorithm != "" {
		c.Hybrid.FusionAlgorithm = other.Hybrid.FusionAlgorithm
	}

	// Performance
	if other.Performance.MaxFeatureExtractionTime != "" {
		c.Performance.MaxFeatureExtractionTime = other.Performance.MaxFeatureExtractionTime
	}
	if other.Performance.MaxRerankingCandidates != 0 {
		c.Performance.MaxRerankingCandidates = other.Performance.MaxRerankingCandidates
	}
	if other.Performance.CacheTTL != "" {
		c.Performance.CacheTTL = other.Performance.CacheTTL
	}
	if other.Performance.MaxMemoryUsage != "" {
		c.Performance.MaxMemoryUsage = other.Performance.MaxMemoryUsage
	}
	if other.Performance.MaxConcurrentQueries != 0 {
		c.Performance.MaxConcurrentQueries = other.Performance.MaxConcurrentQueries
	}
	if other.Performance.IndexWorkers != 0 {
		c.Performance.IndexWorkers = other.Performance.IndexWorkers
	}
	if other.Performance.WatchDebounce != "" {
		c.Performance.WatchDebounce = other.Performance.WatchDebounce
	}

	// Analytics
	if other.Analytics.BatchSize != 0 {
		c.Analytics.BatchSize = other.Analytics.BatchSize
	}
	if other.Analytics.RetentionDays != 0 {
		c.Analytics.RetentionDays = other.Analytics.RetentionDays
	}
	if other.Analytics.SlowQueryThreshold != "" {
		c.Analytics.SlowQueryThreshold = other.Analytics.SlowQueryThreshold
	}
	if other.Analytics.LowRelevanceThreshold != 0 {
		c.Analytics.LowRelevanceThreshold = other.Analytics.LowRelevanceThreshold
	}
	if other.Analytics.DefaultConfidenceLevel != 0 {
		c.Analytics.DefaultConfidenceLevel = other.Analytics.DefaultConfidenceLevel
	}
	if other.Analytics.DefaultMinimumEffect != 0 {
		c.Analytics.DefaultMinimumEffect = other.Analytics.DefaultMinimumEffect
	}
}

// applyEnvOverrides applies KNOWLEDGEFORGE_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KNOWLEDGEFORGE_DATABASE_PATH"); v != "" {
		c.Index.DatabasePath = v
	}
	if v := os.Getenv("KNOWLEDGEFORGE_BANDIT_ALGORITHM"); v != "" {
		c.Bandit.Algorithm = v
	}
	if v := os.Getenv("KNOWLEDGEFORGE_BANDIT_EPSILON"); v != "" {
		if e, err := parseFloat64(v); err == nil && e >= 0 && e <= 1 {
			c.Bandit.InitialEpsilon = e
		}
	}
	if v := os.Getenv("KNOWLEDGEFORGE_FUSION_ALGORITHM"); v != "" {
		c.Hybrid.FusionAlgorithm = v
	}
	if v := os.Getenv("KNOWLEDGEFORGE_HYBRID_MODE"); v != "" {
		c.Hybrid.DefaultMode = v
	}
	if v := os.Getenv("KNOWLEDGEFORGE_MAX_CONCURRENT_QUERIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Performance.MaxConcurrentQueries = n
		}
	}
	if v := os.Getenv("KNOWLEDGEFORGE_ANALYTICS_ENABLED"); v != "" {
		c.Analytics.TrackingEnabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("KNOWLEDGEFORGE_RERANKING_ENABLED"); v != "" {
		c.Reranking.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
}

// parseFloat64 parses a string to float64, used for config parsing.
func parseFloat64(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f, err
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Index.DefaultLimit < 0 {
		return fmt.Errorf("index.default_limit must be non-negative, got %d", c.Index.DefaultLimit)
	}
	if c.Index.MaxLimit < c.Index.DefaultLimit {
		return fmt.Errorf("index.max_limit must be >= index.default_limit, got max=%d default=%d", c.Index.MaxLimit, c.Index.DefaultLimit)
	}
	if c.Index.VacuumThreshold < 0 || c.Index.VacuumThreshold > 1 {
		return fmt.Errorf("index.vacuum_threshold must be between 0 and 1, got %f", c.Index.VacuumThreshold)
	}

	if c.Bandit.InitialEpsilon < 0 || c.Bandit.InitialEpsilon > 1 {
		return fmt.Errorf("bandit.initial_epsilon must be between 0 and 1, got %f", c.Bandit.InitialEpsilon)
	}
	validBanditAlgos := map[string]bool{"epsilon_greedy": true, "ucb": true, "thompson_sampling": true}
	if !validBanditAlgos[c.Bandit.Algorithm] {
		return fmt.Errorf("bandit.algorithm must be 'epsilon_greedy', 'ucb', or 'thompson_sampling', got %s", c.Bandit.Algorithm)
	}

	validFusionAlgos := map[string]bool{"rrf": true, "borda": true, "weighted": true, "ltr": true}
	if !validFusionAlgos[c.Hybrid.FusionAlgorithm] {
		return fmt.Errorf("hybrid.fusion_algorithm must be 'rrf', 'borda', 'weighted', or 'ltr', got %s", c.Hybrid.FusionAlgorithm)
	}
	validModes := map[string]bool{"single": true, "parallel": true, "adaptive": true}
	if !validModes[c.Hybrid.DefaultMode] {
		return fmt.Errorf("hybrid.default_mode must be 'single', 'parallel', or 'adaptive', got %s", c.Hybrid.DefaultMode)
	}

	if c.Analytics.LowRelevanceThreshold < 0 || c.Analytics.LowRelevanceThreshold > 1 {
		return fmt.Errorf("analytics.low_relevance_threshold must be between 0 and 1, got %f", c.Analytics.LowRelevanceThreshold)
	}
	if c.Analytics.DefaultConfidenceLevel < 0 || c.Analytics.DefaultConfidenceLevel > 1 {
		return fmt.Errorf("analytics.default_confidence_level must be between 0 and 1, got %f", c.Analytics.DefaultConfidenceLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// MergeNewDefaults adds new default fields while preserving existing values.
// Returns a list of field names that were added with their default values.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.Bandit.Algorithm == "" {
		c.Bandit.Algorithm = defaults.Bandit.Algorithm
		added = append(added, "bandit.algorithm")
	}
	if c.Bandit.ConfidenceLevel == 0 {
		c.Bandit.ConfidenceLevel = defaults.Bandit.ConfidenceLevel
		added = append(added, "bandit.confidence_level")
	}
	if c.Hybrid.FusionAlgorithm == "" {
		c.Hybrid.FusionAlgorithm = defaults.Hybrid.FusionAlgorithm
		added = append(added, "hybrid.fusion_algorithm")
	}
	if c.Performance.MaxConcurrentQueries == 0 {
		c.Performance.MaxConcurrentQueries = defaults.Performance.MaxConcurrentQueries
		added = append(added, "performance.max_concurrent_queries")
	}
	if c.Analytics.RetentionDays == 0 {
		c.Analytics.RetentionDays = defaults.Analytics.RetentionDays
		added = append(added, "analytics.retention_days")
	}

	return added
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
