// Package feature extracts a named, fixed-shape feature vector from a query
// and a candidate entry: match strength, recency, textual proximity,
// learned affinity, semantic signals, session context, and a derived
// summary layer built from the other six.
package feature

import "time"

// Config enables or disables each feature category independently. A
// disabled category still populates its fields with the documented
// defaults so downstream consumers never have to special-case a missing
// category.
type Config struct {
	EnableBasic     bool
	EnableRecency   bool
	EnableProximity bool
	EnableAffinity  bool
	EnableSemantic  bool
	EnableContext   bool
	EnableDerived   bool

	// Weights applied when EnableDerived computes overallRelevance.
	Weights DerivedWeights

	Normalize     bool
	ScalingMethod ScalingMethod
}

// ScalingMethod selects the batch-normalisation strategy applied to
// derived fields.
type ScalingMethod string

const (
	ScalingMinMax  ScalingMethod = "minmax"
	ScalingZScore  ScalingMethod = "zscore"
	ScalingDisable ScalingMethod = ""
)

// DerivedWeights weights each category's contribution to overallRelevance.
type DerivedWeights struct {
	Title      float64
	Content    float64
	Proximity  float64
	Recency    float64
	Affinity   float64
	Semantic   float64
	Context    float64
}

// DefaultConfig mirrors internal/config.FeaturesConfig's defaults but is
// kept local so this package has no dependency on the config package.
func DefaultConfig() Config {
	return Config{
		EnableBasic:     true,
		EnableRecency:   true,
		EnableProximity: true,
		EnableAffinity:  true,
		EnableSemantic:  true,
		EnableContext:   true,
		EnableDerived:   true,
		Weights: DerivedWeights{
			Title:     0.3,
			Content:   0.2,
			Proximity: 0.2,
			Recency:   0.1,
			Affinity:  0.1,
			Semantic:  0.05,
			Context:   0.05,
		},
		Normalize:     true,
		ScalingMethod: ScalingZScore,
	}
}

// BasicFeatures are direct lexical match signals.
type BasicFeatures struct {
	TitleMatchScore   float64
	ContentMatchScore float64
	TagMatchScore     float64
	CategoryMatch     bool
}

// RecencyFeatures describe how fresh an entry is relative to now.
type RecencyFeatures struct {
	DaysSinceCreated  float64
	DaysSinceModified float64
	DaysSinceLastUsed float64

	CreatedDecay  float64
	ModifiedDecay float64
	LastUsedDecay float64

	IsRecentlyActive bool
	HasRecentUpdates bool

	WeekdayCreated float64 // normalised [0,1], Sunday=0/7..Saturday=6/7
	HourCreated    float64 // normalised [0,1], hour/24
}

// ProximityFeatures describe textual closeness between query and entry.
type ProximityFeatures struct {
	ExactPhraseMatch   bool
	WordOverlapRatio   float64
	CharacterSimilarity float64
	CosineSimilarity   float64
	JaccardSimilarity  float64

	TitleProximity   float64
	ContentProximity float64
	TagsProximity    float64
	PathProximity    float64

	HierarchyDistance float64
}

// AffinityFeatures describe learned, user/agent/project-scoped preference
// signals.
type AffinityFeatures struct {
	UserPreviousInteractions int
	UserSuccessRate          float64
	UserDwellTime            float64

	AgentTypeRelevance float64
	AgentSuccessHistory float64

	ProjectRelevance  float64
	CrossProjectUsage float64

	LanguagePreference float64
	ComplexityFit      float64
	DomainFit          float64
}

// SemanticFeatures describe content-intrinsic properties independent of
// the query.
type SemanticFeatures struct {
	Language          string
	ComplexityScore   float64
	ReadabilityScore  float64
	HasCodeExamples   bool
	HasImageDiagrams  bool
	HasExternalLinks  bool
	DocumentLength    int
	TopicPurity       float64
}

// ContextFeatures describe the caller's session/situational context.
type ContextFeatures struct {
	IssueRelevance   float64
	TaskPhaseRelevance float64
	UrgencyMatch     bool
	IsWorkingHours   bool
	IsWeekend        bool
	TimeOfDay        float64 // normalised [0,1]
	QueryPosition    int
	SessionLength    int
	QueryComplexity  float64
	ActiveProject    bool
	RepositoryActive bool
	BranchContext    string
}

// DerivedFeatures summarise the other six categories into scalars usable
// directly by ranking.
type DerivedFeatures struct {
	OverallRelevance float64
	UncertaintyScore float64
	NoveltyScore     float64
}

// Vector is the full feature vector for one (query, entry) pair.
type Vector struct {
	EntryID string

	Basic     BasicFeatures
	Recency   RecencyFeatures
	Proximity ProximityFeatures
	Affinity  AffinityFeatures
	Semantic  SemanticFeatures
	Context   ContextFeatures
	Derived   DerivedFeatures
}

// QueryContext carries the caller-supplied situational data feature
// extraction folds into Affinity and Context.
type QueryContext struct {
	Now time.Time

	AgentTypes  []string
	ProjectID   string
	IssueTitle  string
	IssueLabels []string

	ExpertiseLevel     string // low|medium|high, matched against entry.Difficulty
	PreferredLanguages []string

	TaskPhase string
	Urgent    bool

	QueryPosition int
	SessionLength int

	ActiveProject    bool
	RepositoryActive bool
	BranchContext    string

	// UserHistory, keyed by entry ID, feeds Affinity.UserPreviousInteractions
	// etc. Nil is legal and yields zero-value affinity history fields.
	UserHistory map[string]UserInteraction
}

// UserInteraction is the caller-supplied prior-interaction summary for one
// entry, used to populate Affinity features that the index itself does not
// track.
type UserInteraction struct {
	Count       int
	SuccessRate float64
	DwellTime   float64
}

// CorpusStats holds per-corpus statistics (mean/stddev/min/max per raw
// signal), one Normalizer per signal name. The Extractor does not read it:
// ExtractBatch builds its own Normalizer for each batch, and Extract leaves
// derived fields unnormalised.
type CorpusStats struct {
	Stats map[string]*Normalizer
}
