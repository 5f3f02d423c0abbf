// Package knowledgeforge is the public facade over the adaptive
// knowledge-retrieval engine: it wires the index store, search engine,
// index manager, feature extractor, rank fusion, re-ranker, bandit
// learner, and hybrid retriever behind the external interfaces an
// embedding application calls (ingest, query, and event surfaces).
package knowledgeforge

import (
	"context"
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/bandit"
	"github.com/kestrel-labs/knowledgeforge/internal/config"
	"github.com/kestrel-labs/knowledgeforge/internal/events"
	"github.com/kestrel-labs/knowledgeforge/internal/feature"
	"github.com/kestrel-labs/knowledgeforge/internal/fusion"
	"github.com/kestrel-labs/knowledgeforge/internal/indexmanager"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	"github.com/kestrel-labs/knowledgeforge/internal/rerank"
	"github.com/kestrel-labs/knowledgeforge/internal/retriever"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

// Engine is the top-level entry point embedding applications construct.
// It owns every component's lifetime; Close must be called to release
// the index store's file handles.
type Engine struct {
	cfg *config.Config

	Store     *indexstore.Store
	Search    *searchengine.Engine
	Manager   *indexmanager.Manager
	Extractor *feature.Extractor
	Bandit    *bandit.Learner
	Reranker  *rerank.Reranker
	Retriever *retriever.HybridRetriever
	Events    *events.Bus
}

// New builds an Engine from cfg, opening (or creating) the index store at
// cfg.Index.DatabasePath. Callers embedding the engine directly in a
// long-lived process should defer Close.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := indexstore.Connect(cfg.Index.DatabasePath, storeConfig(cfg))
	if err != nil {
		return nil, err
	}

	bus := events.NewBus(64)
	searchEngine := searchengine.New(store, searchEngineConfig(cfg))
	manager := indexmanager.New(store, bus, searchEngine, indexManagerConfig(cfg))
	extractor := feature.New(featureConfig(cfg))
	learner := bandit.New(banditConfig(cfg))
	reranker := rerank.New(rerankConfig(cfg))

	hybridCfg, err := hybridConfig(cfg)
	if err != nil {
		store.Disconnect()
		return nil, err
	}
	hybrid := retriever.New(hybridCfg, searchEngine, learner, extractor, reranker, nil, nil)

	_ = bus.Publish(events.Initialized, events.InitializedData{DatabasePath: cfg.Index.DatabasePath})

	return &Engine{
		cfg:       cfg,
		Store:     store,
		Search:    searchEngine,
		Manager:   manager,
		Extractor: extractor,
		Bandit:    learner,
		Reranker:  reranker,
		Retriever: hybrid,
		Events:    bus,
	}, nil
}

// Close releases the index store and stops event delivery. A second call
// is a no-op: both the event bus and the store ignore a repeated close.
func (e *Engine) Close() error {
	e.Events.Close()
	return e.Store.Disconnect()
}

// IndexContent implements the ingest surface's indexContent(entries[]).
func (e *Engine) IndexContent(ctx context.Context, entries []*indexstore.Entry) error {
	return e.Manager.IndexContent(ctx, entries)
}

// IndexBatch implements the ingest surface's indexBatch(batch).
func (e *Engine) IndexBatch(ctx context.Context, batch indexmanager.BatchOp) (indexmanager.BatchResult, error) {
	return e.Manager.IndexBatch(ctx, batch)
}

// HandleContentChange implements the ingest surface's handleContentChange.
func (e *Engine) HandleContentChange(ctx context.Context, dir string, change indexmanager.ContentChange, loader indexmanager.ContentLoader) error {
	return e.Manager.HandleContentChange(ctx, dir, change, loader)
}

// Query runs a plain C2 search: search(SearchQuery) -> SearchResults.
func (e *Engine) Query(ctx context.Context, q searchengine.SearchQuery) (*searchengine.SearchResultSet, error) {
	return e.Search.Search(ctx, q)
}

// SearchSimilar implements searchSimilar(id, limit).
func (e *Engine) SearchSimilar(ctx context.Context, entryID string, limit int) (*searchengine.SearchResultSet, error) {
	return e.Search.SearchSimilar(ctx, entryID, limit)
}

// GetSuggestions implements getSuggestions(prefix, limit).
func (e *Engine) GetSuggestions(prefix string, limit int) []string {
	return e.Search.GetSuggestions(prefix, limit)
}

// GetPopularQueries implements getPopularQueries(limit).
func (e *Engine) GetPopularQueries(limit int) []searchengine.QueryCount {
	return e.Search.GetPopularQueries(limit)
}

// RecordQuery implements recordQuery(q, count, ms).
func (e *Engine) RecordQuery(query string, resultCount int, duration time.Duration) {
	e.Search.RecordQuery(query, resultCount, duration)
}

// GetAnalytics implements getAnalytics(from, to).
func (e *Engine) GetAnalytics(from, to time.Time) *searchengine.AnalyticsSnapshot {
	return e.Search.GetAnalytics(from, to)
}

// Retrieve implements retrieve(RetrievalQuery) -> RetrievalResult (C8).
func (e *Engine) Retrieve(ctx context.Context, queryID string, rq retriever.RetrievalQuery) (*retriever.RetrievalResult, error) {
	return e.Retriever.Retrieve(ctx, queryID, rq)
}

// ObserveFeedback implements observeFeedback(queryId, resultId, feedback).
func (e *Engine) ObserveFeedback(queryID, resultID string, feedback retriever.UserFeedback) error {
	return e.Retriever.ObserveFeedback(queryID, resultID, feedback)
}

// Vacuum reclaims deleted-row space in the index store whenever it is
// called; it does not check the configured threshold (Store.ShouldVacuum does).
func (e *Engine) Vacuum(ctx context.Context) (*indexstore.VacuumReport, error) {
	return e.Manager.Vacuum(ctx)
}

// Stats returns index store statistics for operator visibility.
func (e *Engine) Stats(ctx context.Context) (*indexstore.Stats, error) {
	return e.Store.Stats(ctx)
}

// Subscribe exposes the event surface to observers.
func (e *Engine) Subscribe() (uint64, <-chan *events.Event) {
	return e.Events.Subscribe()
}
