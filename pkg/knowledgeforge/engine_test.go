package knowledgeforge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-labs/knowledgeforge/internal/config"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	"github.com/kestrel-labs/knowledgeforge/internal/retriever"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Index.DatabasePath = "" // in-memory store
	return cfg
}

func TestNewBuildsAFunctioningEngine(t *testing.T) {
	engine, err := New(testConfig())
	require.NoError(t, err)
	defer engine.Close()

	assert.NotNil(t, engine.Store)
	assert.NotNil(t, engine.Search)
	assert.NotNil(t, engine.Manager)
	assert.NotNil(t, engine.Retriever)
}

func TestEngineIndexContentThenQueryRoundTrips(t *testing.T) {
	engine, err := New(testConfig())
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	entry := &indexstore.Entry{
		ID:      "e1",
		Type:    indexstore.EntryTypeKnowledge,
		Title:   "fixing flaky auth tests",
		Content: "retry the login flow with a fresh token before asserting",
	}
	require.NoError(t, engine.IndexContent(ctx, []*indexstore.Entry{entry}))

	set, err := engine.Query(ctx, searchengine.SearchQuery{Query: "flaky auth", Limit: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, set.Results)
}

func TestEngineRetrieveThenObserveFeedbackRoundTrips(t *testing.T) {
	engine, err := New(testConfig())
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	entry := &indexstore.Entry{
		ID:      "e2",
		Type:    indexstore.EntryTypeGotcha,
		Title:   "nil pointer in retry loop",
		Content: "the retry loop dereferences a possibly-nil client on the first pass",
	}
	require.NoError(t, engine.IndexContent(ctx, []*indexstore.Entry{entry}))

	result, err := engine.Retrieve(ctx, "q1", retriever.RetrievalQuery{Query: "nil pointer retry"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)

	err = engine.ObserveFeedback("q1", result.Results[0].Entry.ID, retriever.UserFeedback{UsedInSolution: true})
	assert.NoError(t, err)
}

func TestEngineStatsAndVacuum(t *testing.T) {
	engine, err := New(testConfig())
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.EntryCount)

	_, err = engine.Vacuum(ctx)
	assert.NoError(t, err)
}
