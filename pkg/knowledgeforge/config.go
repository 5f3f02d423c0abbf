package knowledgeforge

import (
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/bandit"
	"github.com/kestrel-labs/knowledgeforge/internal/config"
	"github.com/kestrel-labs/knowledgeforge/internal/feature"
	"github.com/kestrel-labs/knowledgeforge/internal/fusion"
	"github.com/kestrel-labs/knowledgeforge/internal/indexmanager"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
	"github.com/kestrel-labs/knowledgeforge/internal/rerank"
	"github.com/kestrel-labs/knowledgeforge/internal/retriever"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

// These adapters translate the wire-friendly config.Config (plain types,
// YAML/JSON tags, duration strings) into each component's own local Config
// type, keeping every component package free of a dependency on
// internal/config per its own doc comment.

func storeConfig(cfg *config.Config) indexstore.Config {
	return indexstore.Config{
		Tokenizer:        cfg.Index.Tokenizer,
		RemoveAccents:    cfg.Index.RemoveAccents,
		CaseSensitive:    cfg.Index.CaseSensitive,
		Synchronous:      cfg.Index.Synchronous,
		JournalMode:      cfg.Index.JournalMode,
		VacuumThreshold:  cfg.Index.VacuumThreshold,
		MaxContentLength: cfg.Index.MaxContentLength,
	}
}

func searchEngineConfig(cfg *config.Config) searchengine.Config {
	sc := searchengine.DefaultConfig()
	if ttl, err := time.ParseDuration(cfg.Performance.CacheTTL); err == nil {
		sc.CacheTTL = ttl
	}
	if threshold, err := time.ParseDuration(cfg.Analytics.SlowQueryThreshold); err == nil {
		sc.SlowQueryThreshold = threshold
	}
	sc.DefaultLimit = cfg.Index.DefaultLimit
	sc.MaxLimit = cfg.Index.MaxLimit
	sc.SnippetLength = cfg.Index.SnippetLength
	sc.MaxSnippets = cfg.Index.MaxSnippets
	sc.CacheEnabled = cfg.Performance.CacheEnabled
	sc.RetentionDays = cfg.Analytics.RetentionDays
	sc.DefaultClickThroughRate = cfg.Analytics.DefaultClickThroughRate
	return sc
}

func indexManagerConfig(cfg *config.Config) indexmanager.Config {
	debounce, _ := time.ParseDuration(cfg.Performance.WatchDebounce)
	return indexmanager.Config{
		BatchSize:                cfg.Index.BatchSize,
		MaxContentLength:         cfg.Index.MaxContentLength,
		DebounceWindow:           debounce,
		DefaultCleanupMaxAgeDays: cfg.Index.RetentionDays,
	}
}

func featureConfig(cfg *config.Config) feature.Config {
	f := cfg.Features
	weights := feature.DefaultConfig().Weights
	for name, w := range f.FeatureWeights {
		switch name {
		case "title":
			weights.Title = w
		case "content":
			weights.Content = w
		case "proximity":
			weights.Proximity = w
		case "recency":
			weights.Recency = w
		case "affinity":
			weights.Affinity = w
		case "semantic":
			weights.Semantic = w
		case "context":
			weights.Context = w
		}
	}
	return feature.Config{
		EnableBasic:     f.EnableBasicFeatures,
		EnableRecency:   f.EnableRecencyFeatures,
		EnableProximity: f.EnableProximityFeatures,
		EnableAffinity:  f.EnableAffinityFeatures,
		EnableSemantic:  f.EnableSemanticFeatures,
		EnableContext:   f.EnableContextFeatures,
		EnableDerived:   f.EnableDerivedFeatures,
		Weights:         weights,
		Normalize:       f.NormalizeFeatures,
		ScalingMethod:   feature.ScalingMethod(f.ScalingMethod),
	}
}

func banditConfig(cfg *config.Config) bandit.Config {
	b := cfg.Bandit
	algo := bandit.AlgorithmEpsilonGreedy
	switch b.Algorithm {
	case "ucb":
		algo = bandit.AlgorithmUCB
	case "thompson_sampling":
		algo = bandit.AlgorithmThompson
	}
	def := bandit.DefaultConfig()
	return bandit.Config{
		Algorithm:       algo,
		InitialEpsilon:  b.InitialEpsilon,
		EpsilonDecay:    b.EpsilonDecay,
		MinEpsilon:      def.MinEpsilon,
		ConfidenceLevel: b.ConfidenceLevel,
		WindowSize:      b.WindowSize,
	}
}

func rerankConfig(cfg *config.Config) rerank.Config {
	r := cfg.Reranking
	return rerank.Config{
		Enabled:        r.Enabled,
		LearningRate:   r.LearningRate,
		Regularization: r.Regularization,
		BatchSize:      r.BatchSize,
		OnlineLearning: r.OnlineLearning,
		Dimensions:     feature.FeatureDimensions,
	}
}

func hybridConfig(cfg *config.Config) (retriever.Config, error) {
	h := cfg.Hybrid
	parallelTimeout, err := time.ParseDuration(h.ParallelTimeout)
	if err != nil {
		return retriever.Config{}, kferrors.InvalidArgument(kferrors.ErrCodeEmptyRequiredField, "hybrid.parallelTimeout: "+err.Error())
	}

	mode := retriever.Mode(h.DefaultMode)
	switch mode {
	case retriever.ModeSingle, retriever.ModeParallel, retriever.ModeAdaptive:
	default:
		mode = retriever.ModeAdaptive
	}

	algo := fusion.Algorithm(h.FusionAlgorithm)
	switch algo {
	case fusion.AlgorithmRRF, fusion.AlgorithmBorda, fusion.AlgorithmWeighted, fusion.AlgorithmLTR:
	default:
		algo = fusion.AlgorithmRRF
	}

	def := retriever.DefaultConfig()
	return retriever.Config{
		DefaultMode:            mode,
		ParallelTimeout:        parallelTimeout,
		FusionAlgorithm:        algo,
		EnableVectorSearch:     h.EnableVectorSearch,
		MaxRerankingCandidates: cfg.Performance.MaxRerankingCandidates,
		RerankEnabled:          cfg.Reranking.Enabled,
		ParallelArms:           def.ParallelArms,
	}, nil
}
