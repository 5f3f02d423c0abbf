package searchengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

func TestTitleMatchFullQuerySubstring(t *testing.T) {
	score := titleMatch("circuit breaker", queryWords("circuit breaker"), "Circuit Breaker Pattern")
	assert.Equal(t, 1.0, score)
}

func TestTitleMatchPartialWords(t *testing.T) {
	score := titleMatch("circuit timeout", queryWords("circuit timeout"), "Circuit Breaker Pattern")
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestTagMatchFraction(t *testing.T) {
	words := queryWords("retry backoff")
	score := tagMatch(words, []string{"retry-policy", "logging", "http"})
	assert.InDelta(t, 1.0/3.0, score, 1e-9)
}

func TestCategoryMatch(t *testing.T) {
	assert.Equal(t, 1.0, categoryMatch("networking issues", "networking"))
	assert.Equal(t, 0.0, categoryMatch("database issues", "networking"))
}

func TestRecencyBoostDisabledIsZero(t *testing.T) {
	assert.Equal(t, 0.0, recencyBoost(time.Now(), false))
}

func TestRecencyBoostDecaysWithAge(t *testing.T) {
	recent := recencyBoost(time.Now(), true)
	old := recencyBoost(time.Now().Add(-90*24*time.Hour), true)
	require.Greater(t, recent, old)
	assert.InDelta(t, 1.0, recent, 0.01)
}

func TestEffectivenessBoostPassesThroughWhenRequested(t *testing.T) {
	assert.Equal(t, 0.0, effectivenessBoost(0.8, false))
	assert.Equal(t, 0.8, effectivenessBoost(0.8, true))
}

func TestUsageBoostMonotonicallyIncreasing(t *testing.T) {
	low := usageBoost(1)
	high := usageBoost(1000)
	assert.Greater(t, high, low)
	assert.Equal(t, 0.0, usageBoost(0))
}

func TestEnhancedScoreAddsWeightedFactors(t *testing.T) {
	factors := RelevanceFactors{
		TitleMatch:         1.0,
		ContentMatch:       0.5,
		TagMatch:           0.0,
		CategoryMatch:      0.0,
		RecencyBoost:       0.0,
		EffectivenessBoost: 0.0,
		UsageBoost:         0.9, // must not influence the score
	}
	score := enhancedScore(1.0, factors, DefaultWeights)
	assert.InDelta(t, 1.0+3.0*1.0+1.0*0.5, score, 1e-9)
}

func TestMatchedFieldsUnionsIndexAndComputed(t *testing.T) {
	entry := &indexstore.Entry{
		Title:    "Retry policies",
		Content:  "Use exponential backoff for retries",
		Tags:     []string{"resilience"},
		Category: "networking",
	}
	words := queryWords("retry")
	fields := matchedFields(words, entry, []string{indexstore.FieldCategory})
	assert.Contains(t, fields, indexstore.FieldTitle)
	assert.Contains(t, fields, indexstore.FieldContent)
	assert.Contains(t, fields, indexstore.FieldCategory)
	// sorted deterministically
	for i := 1; i < len(fields); i++ {
		assert.LessOrEqual(t, fields[i-1], fields[i])
	}
}

func TestMatchedFieldsEmptyWhenNoOverlap(t *testing.T) {
	entry := &indexstore.Entry{Title: "Unrelated", Content: "Nothing here", Category: "misc"}
	fields := matchedFields(queryWords("quantum"), entry, nil)
	assert.Empty(t, fields)
}
