package indexmanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
	"github.com/kestrel-labs/knowledgeforge/internal/events"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

// cacheInvalidator is implemented by internal/searchengine.Engine. Kept as
// a narrow interface so the manager doesn't force every caller to wire a
// search engine.
type cacheInvalidator interface {
	InvalidateCache()
}

var _ cacheInvalidator = (*searchengine.Engine)(nil)

// Manager is the index manager (C3): it orchestrates writes to the index
// store, enforcing batch atomicity, emitting lifecycle events, and
// invalidating the search engine's result cache after every successful
// mutation (spec §5).
type Manager struct {
	store  *indexstore.Store
	bus    *events.Bus
	cache  cacheInvalidator
	config Config

	watchesMu sync.Mutex
	watches   map[string]*watchHandle
}

// New builds an index manager over store, publishing lifecycle events on
// bus and invalidating cache after successful writes. cache may be nil if
// no search engine is wired.
func New(store *indexstore.Store, bus *events.Bus, cache cacheInvalidator, cfg Config) *Manager {
	return &Manager{
		store:   store,
		bus:     bus,
		cache:   cache,
		config:  cfg,
		watches: make(map[string]*watchHandle),
	}
}

func (m *Manager) publish(name events.Name, data any) {
	if m.bus == nil {
		return
	}
	_ = m.bus.Publish(name, data)
}

func (m *Manager) invalidateCache() {
	if m.cache != nil {
		m.cache.InvalidateCache()
	}
}

// IndexContent validates each entry, partitions them into batches of
// config.BatchSize, and indexes each batch (spec §4.3 indexContent).
// Validation errors propagate synchronously and stop processing.
func (m *Manager) IndexContent(ctx context.Context, entries []*indexstore.Entry) error {
	for _, e := range entries {
		if err := validateEntry(e, m.config.MaxContentLength); err != nil {
			return err
		}
	}

	batchSize := m.config.BatchSize
	if batchSize <= 0 {
		batchSize = len(entries)
	}
	if batchSize <= 0 {
		return nil
	}

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[start:end]

		start := time.Now()
		if _, err := m.IndexBatch(ctx, BatchOp{Insert: chunk}); err != nil {
			return err
		}
		for _, e := range chunk {
			m.publish(events.ContentIndexed, events.ContentIndexedData{EntryID: e.ID, Category: e.Category})
		}
		m.publish(events.BatchIndexed, events.BatchIndexedData{
			Count:    len(chunk),
			Duration: time.Since(start).String(),
		})
	}
	return nil
}

// IndexBatch applies a mixed insert/update/delete batch as a single unit
// (spec §4.3 indexBatch): upserts commit atomically as one transaction;
// deletes run only once the upsert (if any) has succeeded. A failure
// anywhere rejects the batch and emits batch_error.
func (m *Manager) IndexBatch(ctx context.Context, batch BatchOp) (BatchResult, error) {
	if batch.size() == 0 {
		return BatchResult{}, nil
	}

	upserts := make([]*indexstore.Entry, 0, len(batch.Insert)+len(batch.Update))
	upserts = append(upserts, batch.Insert...)
	upserts = append(upserts, batch.Update...)

	if len(upserts) > 0 {
		if err := m.store.Insert(ctx, upserts); err != nil {
			m.publish(events.BatchError, events.BatchErrorData{
				FailedEntryIDs: entryIDs(upserts),
				Message:        err.Error(),
			})
			return BatchResult{Failed: len(upserts) + len(batch.Delete)}, kferrors.BatchError(
				kferrors.ErrCodeBatchRejected, "batch upsert failed", err)
		}
	}

	if len(batch.Delete) > 0 {
		if err := m.store.Delete(ctx, batch.Delete); err != nil {
			m.publish(events.BatchError, events.BatchErrorData{
				FailedEntryIDs: batch.Delete,
				Message:        err.Error(),
			})
			return BatchResult{Succeeded: len(upserts), Failed: len(batch.Delete)}, kferrors.BatchError(
				kferrors.ErrCodeBatchRejected, "batch delete failed", err)
		}
	}

	m.invalidateCache()

	result := BatchResult{Succeeded: batch.size()}
	m.publish(events.BatchProcessed, events.BatchProcessedData{Succeeded: result.Succeeded, Failed: 0})
	return result, nil
}

func entryIDs(entries []*indexstore.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// RebuildIndex drops and reinserts every entry (spec §4.3 rebuildIndex).
func (m *Manager) RebuildIndex(ctx context.Context) (*RebuildReport, error) {
	return m.rebuild(ctx, "")
}

// RebuildPartialIndex drops and reinserts only entries of the given type.
func (m *Manager) RebuildPartialIndex(ctx context.Context, entryType indexstore.EntryType) (*RebuildReport, error) {
	return m.rebuild(ctx, entryType)
}

func (m *Manager) rebuild(ctx context.Context, entryType indexstore.EntryType) (*RebuildReport, error) {
	partial := entryType != ""
	m.publish(events.RebuildStarted, events.RebuildStartedData{Partial: partial})
	start := time.Now()

	filter := indexstore.Filter{Type: entryType}
	count, err := m.store.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count entries for rebuild: %w", err)
	}

	entries, err := m.fetchAll(ctx, filter, count)
	if err != nil {
		return nil, err
	}

	ids := entryIDs(entries)
	if len(ids) > 0 {
		if err := m.store.Delete(ctx, ids); err != nil {
			return nil, fmt.Errorf("drop entries for rebuild: %w", err)
		}
	}
	if len(entries) > 0 {
		if err := m.store.Insert(ctx, entries); err != nil {
			return nil, fmt.Errorf("reinsert entries for rebuild: %w", err)
		}
	}

	m.invalidateCache()

	report := &RebuildReport{Partial: partial, EntryCount: len(entries)}
	m.publish(events.RebuildCompleted, events.RebuildCompletedData{
		Partial:    partial,
		EntryCount: report.EntryCount,
		Duration:   time.Since(start).String(),
	})
	return report, nil
}

// fetchAll pages through SearchFTS with an empty query restricted to
// filter to enumerate every matching entry; used by rebuild and cleanup.
func (m *Manager) fetchAll(ctx context.Context, filter indexstore.Filter, hint int) ([]*indexstore.Entry, error) {
	if hint <= 0 {
		hint = 1000
	}
	const pageSize = 500
	var out []*indexstore.Entry
	for offset := 0; ; offset += pageSize {
		result, err := m.store.SearchFTS(ctx, "", "", filter, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(result.Hits) == 0 {
			break
		}
		ids := make([]string, len(result.Hits))
		for i, h := range result.Hits {
			ids[i] = h.ID
		}
		entries, err := m.store.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
		if len(result.Hits) < pageSize {
			break
		}
	}
	return out, nil
}

// Cleanup deletes entries last modified more than maxAge ago. Cleanup(0)
// deletes every entry (spec §4.3 cleanup).
func (m *Manager) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	filter := indexstore.Filter{}
	if maxAge > 0 {
		filter.Until = cutoff
	}

	entries, err := m.fetchAll(ctx, filter, 0)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	ids := entryIDs(entries)
	if err := m.store.Delete(ctx, ids); err != nil {
		return 0, err
	}
	m.invalidateCache()
	return len(ids), nil
}

// Vacuum delegates to the index store (spec §4.3 vacuum).
func (m *Manager) Vacuum(ctx context.Context) (*indexstore.VacuumReport, error) {
	return m.store.Vacuum(ctx)
}
