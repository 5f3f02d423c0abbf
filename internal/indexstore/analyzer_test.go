package indexstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeIdentifiersSplitsCamelCase(t *testing.T) {
	tokens := tokenizeIdentifiers("HTTPHandlerFunc")
	assert.Equal(t, []string{"http", "handler", "func"}, tokens)
}

func TestTokenizeIdentifiersSplitsSnakeCase(t *testing.T) {
	tokens := tokenizeIdentifiers("max_retry_count")
	assert.Equal(t, []string{"max", "retry", "count"}, tokens)
}

func TestTokenizeIdentifiersDropsSingleCharTokens(t *testing.T) {
	tokens := tokenizeIdentifiers("a b retry")
	assert.Equal(t, []string{"retry"}, tokens)
}

func TestSplitCamelCaseKeepsAcronymRuns(t *testing.T) {
	assert.Equal(t, []string{"HTTP", "Handler"}, splitCamelCase("HTTPHandler"))
}

func TestBuildStopWordMapLowercases(t *testing.T) {
	m := buildStopWordMap([]string{"The", "AND"})
	_, hasThe := m["the"]
	_, hasAnd := m["and"]
	assert.True(t, hasThe)
	assert.True(t, hasAnd)
}

func TestBuildIndexMappingPorterTokenizer(t *testing.T) {
	im, err := buildIndexMapping("porter", true, false)
	assert.NoError(t, err)
	assert.NotNil(t, im)
}

func TestBuildIndexMappingSimpleTokenizer(t *testing.T) {
	im, err := buildIndexMapping("simple", true, false)
	assert.NoError(t, err)
	assert.NotNil(t, im)
}
