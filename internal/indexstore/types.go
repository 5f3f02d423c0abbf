package indexstore

import "time"

// EntryType classifies an Entry.
type EntryType string

const (
	EntryTypeKnowledge EntryType = "knowledge"
	EntryTypeMemory    EntryType = "memory"
	EntryTypeADR       EntryType = "adr"
	EntryTypeGotcha    EntryType = "gotcha"
	EntryTypeCode      EntryType = "code"
)

// Scope indicates whether an Entry applies to a single project or globally.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeGlobal  Scope = "global"
)

// Difficulty is a coarse effort/complexity rating on an Entry.
type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"
)

// Entry is the unit of indexing.
type Entry struct {
	ID           string
	Type         EntryType
	Category     string
	Path         string
	Hash         string
	Title        string
	Content      string
	LastModified time.Time

	Tags        []string
	AgentTypes  []string
	ProjectID   string
	Language    string
	Scope       Scope
	Difficulty  Difficulty
	Severity    string
	Status      string

	UsageCount    int
	FileSize      int64
	Effectiveness float64
	SuccessRate   float64
	LastUsed      time.Time

	RelatedIDs []string
	ParentID   string
	ChildIDs   []string
}

// Field names used for weighted indexing, matched fields, and facets.
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldTags     = "tags"
	FieldCategory = "category"
)

// DefaultFieldWeights are the BM25 field weights applied across the
// inverted index (spec §4.1: title 3.0, content 1.0, tags 2.0, category 1.5).
var DefaultFieldWeights = map[string]float64{
	FieldTitle:    3.0,
	FieldContent:  1.0,
	FieldTags:     2.0,
	FieldCategory: 1.5,
}

// QueryType selects the query-language parser used by searchFTS.
type QueryType string

const (
	QueryTypeSimple  QueryType = "simple"
	QueryTypePhrase  QueryType = "phrase"
	QueryTypeBoolean QueryType = "boolean"
	QueryTypeFuzzy   QueryType = "fuzzy"
)

// Filter restricts a searchFTS call by the secondary indexes and date range.
type Filter struct {
	Type       EntryType
	Category   string
	Tags       []string
	ProjectID  string
	AgentTypes []string
	Since      time.Time
	Until      time.Time
}

// RawHit is a single scored posting returned by searchFTS, before C2
// enhances it with snippets, relevance factors, and presentation fields.
type RawHit struct {
	ID            string
	Score         float64
	MatchedFields []string
}

// SearchFTSResult is the raw output of searchFTS: scored hits plus the
// count of the full (pre-page) candidate set, used for facet totals and
// pagination.
type SearchFTSResult struct {
	Hits         []RawHit
	TotalMatches int
}

// FacetCount is a single value/count pair within a FacetSet.
type FacetCount struct {
	Value    string
	Count    int
	Selected bool
}

// FacetSet names the facet families computed from a candidate set.
type FacetSet struct {
	Types      []FacetCount
	Categories []FacetCount
	Tags       []FacetCount
	Projects   []FacetCount
	Agents     []FacetCount
	Languages  []FacetCount
}

// Stats summarizes the index for operator visibility and vacuum
// scheduling.
type Stats struct {
	EntryCount    int
	DeletedCount  int
	TermCount     int
	AvgDocLength  float64
	IndexSizeBytes int64
}

// VacuumReport describes the outcome of a vacuum run.
type VacuumReport struct {
	BytesFreed int64
	Duration   time.Duration
	Skipped    bool
}
