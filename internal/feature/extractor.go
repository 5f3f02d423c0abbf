package feature

import (
	"strings"
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

// Extractor produces feature vectors for (query, entry) pairs under a
// fixed Config. It holds no mutable state of its own; normalisation
// statistics are computed fresh for each batch by ExtractBatch.
type Extractor struct {
	config Config
}

// New builds an Extractor.
func New(cfg Config) *Extractor {
	return &Extractor{config: cfg}
}

func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `"'()`)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Extract builds the feature vector for one entry against query, using
// qctx for affinity/context signals. The derived layer is left
// unnormalised; ExtractBatch rescales it across a batch.
func (e *Extractor) Extract(query string, entry *indexstore.Entry, qctx QueryContext) *Vector {
	words := queryWords(query)
	if qctx.Now.IsZero() {
		qctx.Now = time.Now()
	}

	v := &Vector{EntryID: entry.ID}

	if e.config.EnableBasic {
		v.Basic = extractBasic(query, words, entry)
	}
	if e.config.EnableRecency {
		v.Recency = extractRecency(qctx.Now, entry)
	}
	if e.config.EnableProximity {
		v.Proximity = extractProximity(query, words, entry)
	}
	if e.config.EnableAffinity {
		v.Affinity = extractAffinity(qctx, entry)
	}
	if e.config.EnableSemantic {
		v.Semantic = extractSemantic(entry)
	}
	if e.config.EnableContext {
		v.Context = extractContext(qctx, entry)
	}
	if e.config.EnableDerived {
		v.Derived = deriveFeatures(v, e.config.Weights)
	}

	return v
}

// ExtractBatch runs Extract over every entry, then (when Normalize is
// enabled) rescales each vector's derived OverallRelevance using corpus
// statistics accumulated across the batch itself.
func (e *Extractor) ExtractBatch(query string, entries []*indexstore.Entry, qctx QueryContext) []*Vector {
	vectors := make([]*Vector, len(entries))
	for i, entry := range entries {
		vectors[i] = e.Extract(query, entry, qctx)
	}

	if !e.config.Normalize || !e.config.EnableDerived || len(vectors) == 0 {
		return vectors
	}

	norm := NewNormalizer()
	for _, v := range vectors {
		norm.Add(v.Derived.OverallRelevance)
	}
	for _, v := range vectors {
		v.Derived.OverallRelevance = norm.Scale(e.config.ScalingMethod, v.Derived.OverallRelevance)
	}
	return vectors
}

// Flatten lays the vector out as a fixed-order float64 row, the shape
// consumed by the re-ranker's linear model and the learning-to-rank fusion
// algorithm.
func (v *Vector) Flatten() []float64 {
	boolF := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}
	return []float64{
		v.Basic.TitleMatchScore,
		v.Basic.ContentMatchScore,
		v.Basic.TagMatchScore,
		boolF(v.Basic.CategoryMatch),

		v.Recency.CreatedDecay,
		v.Recency.ModifiedDecay,
		v.Recency.LastUsedDecay,
		boolF(v.Recency.IsRecentlyActive),

		boolF(v.Proximity.ExactPhraseMatch),
		v.Proximity.WordOverlapRatio,
		v.Proximity.CharacterSimilarity,
		v.Proximity.CosineSimilarity,
		v.Proximity.JaccardSimilarity,
		v.Proximity.TitleProximity,
		v.Proximity.ContentProximity,
		v.Proximity.TagsProximity,

		v.Affinity.UserSuccessRate,
		v.Affinity.AgentTypeRelevance,
		v.Affinity.ProjectRelevance,
		v.Affinity.LanguagePreference,
		v.Affinity.ComplexityFit,
		v.Affinity.DomainFit,

		v.Semantic.ComplexityScore,
		v.Semantic.ReadabilityScore,
		v.Semantic.TopicPurity,

		v.Context.IssueRelevance,
		v.Context.TaskPhaseRelevance,
		boolF(v.Context.UrgencyMatch),
		v.Context.QueryComplexity,

		v.Derived.OverallRelevance,
		v.Derived.UncertaintyScore,
		v.Derived.NoveltyScore,
	}
}

// FeatureDimensions is the length of the row Flatten produces.
const FeatureDimensions = 32
