package indexstore

import (
	"testing"

	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuerySimpleNonEmpty(t *testing.T) {
	q, err := buildQuery("circuit breaker", QueryTypeSimple, Filter{})
	require.NoError(t, err)
	assert.NotNil(t, q)
}

func TestBuildQueryEmptyTextAndFilterIsMatchNone(t *testing.T) {
	q, err := buildQuery("", QueryTypeSimple, Filter{})
	require.NoError(t, err)
	assert.IsType(t, &query.MatchNoneQuery{}, q)
}

func TestBuildQueryUnknownTypeRejected(t *testing.T) {
	_, err := buildQuery("anything", QueryType("made-up"), Filter{})
	require.Error(t, err)
}

func TestBuildPhraseQueryStripsQuotes(t *testing.T) {
	q, err := buildPhraseQuery(`"exponential backoff"`)
	require.NoError(t, err)
	assert.NotNil(t, q)
}

func TestBuildPhraseQueryEmptyIsError(t *testing.T) {
	_, err := buildPhraseQuery(`""`)
	require.Error(t, err)
}

func TestFuzzyDistanceScalesWithLengthAndClamps(t *testing.T) {
	assert.Equal(t, 1, fuzzyDistance("cat"))
	assert.Equal(t, 2, fuzzyDistance("authentication"))
}

func TestTokenizeBooleanRecognizesOperators(t *testing.T) {
	tokens := tokenizeBoolean("retry AND (backoff OR jitter) AND NOT database")
	var kinds []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.kind)
	}
	assert.Equal(t,
		[]string{"WORD", "AND", "LPAREN", "WORD", "OR", "WORD", "RPAREN", "AND", "NOT", "WORD"},
		kinds,
	)
}

func TestBuildBooleanQueryValidExpression(t *testing.T) {
	q, err := buildBooleanQuery("retry AND NOT database")
	require.NoError(t, err)
	assert.NotNil(t, q)
}

func TestBuildBooleanQueryUnbalancedParensIsError(t *testing.T) {
	_, err := buildBooleanQuery("(retry AND backoff")
	require.Error(t, err)
}

func TestBuildBooleanQueryTrailingTokenIsError(t *testing.T) {
	_, err := buildBooleanQuery("retry )")
	require.Error(t, err)
}

func TestBuildBooleanQueryEmptyIsError(t *testing.T) {
	_, err := buildBooleanQuery("   ")
	require.Error(t, err)
}

func TestBuildFilterQueryNoFilterIsNil(t *testing.T) {
	assert.Nil(t, buildFilterQuery(Filter{}))
}

func TestBuildFilterQueryWithCategoryIsNonNil(t *testing.T) {
	assert.NotNil(t, buildFilterQuery(Filter{Category: "networking"}))
}
