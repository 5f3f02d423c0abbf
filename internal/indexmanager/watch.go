package indexmanager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/kestrel-labs/knowledgeforge/internal/events"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	"github.com/kestrel-labs/knowledgeforge/internal/watcher"
)

// ContentChangeType classifies a coalesced filesystem change reported by a
// watched directory.
type ContentChangeType int

const (
	ContentCreated ContentChangeType = iota
	ContentModified
	ContentDeleted
)

func (t ContentChangeType) String() string {
	switch t {
	case ContentCreated:
		return "created"
	case ContentModified:
		return "modified"
	case ContentDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ContentChange describes one change under a watched directory, already
// debounced by the underlying watcher.
type ContentChange struct {
	Path string
	Type ContentChangeType
}

// ContentLoader turns a changed file path into an indexable entry. The
// manager has no notion of file formats; callers supply the loader so a
// directory of markdown, source files, or anything else can be indexed the
// same way.
type ContentLoader interface {
	Load(ctx context.Context, path string) (*indexstore.Entry, error)
}

// watchHandle tracks one active directory watch.
type watchHandle struct {
	dir     string
	loader  ContentLoader
	watcher *watcher.HybridWatcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// entryIDForPath deterministically derives an entry ID from a watched
// directory and a relative path, mirroring the teacher coordinator's
// generateFileID(projectID, relPath) convention. A delete event carries
// only a path, not an ID, so create/modify and delete must agree on the
// same derivation without a side lookup table.
func entryIDForPath(dir, path string) string {
	sum := sha256.Sum256([]byte(dir + "\x00" + path))
	return hex.EncodeToString(sum[:])
}

// AddWatchDirectory starts watching dir and indexes changes through loader
// as they settle out of the debounce window (spec §4.3 addWatchDirectory).
// Watching a directory already being watched replaces the previous watch.
func (m *Manager) AddWatchDirectory(ctx context.Context, dir string, loader ContentLoader) error {
	if loader == nil {
		return fmt.Errorf("indexmanager: loader must not be nil")
	}
	_ = m.RemoveWatchDirectory(dir)

	opts := watcher.Options{
		DebounceWindow: m.config.DebounceWindow,
		PollInterval:   m.config.PollInterval,
	}.WithDefaults()

	hw, err := watcher.NewHybridWatcher(opts)
	if err != nil {
		return fmt.Errorf("create watcher for %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	handle := &watchHandle{
		dir:     dir,
		loader:  loader,
		watcher: hw,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if err := hw.Start(watchCtx, dir); err != nil {
		cancel()
		return fmt.Errorf("start watcher for %s: %w", dir, err)
	}

	m.watchesMu.Lock()
	m.watches[dir] = handle
	m.watchesMu.Unlock()

	go m.pumpWatch(watchCtx, handle)
	return nil
}

// RemoveWatchDirectory stops watching dir. Safe to call on a directory that
// isn't being watched.
func (m *Manager) RemoveWatchDirectory(dir string) error {
	m.watchesMu.Lock()
	handle, ok := m.watches[dir]
	if ok {
		delete(m.watches, dir)
	}
	m.watchesMu.Unlock()

	if !ok {
		return nil
	}
	handle.cancel()
	_ = handle.watcher.Stop()
	<-handle.done
	return nil
}

// WatchedDirectories returns the directories currently under watch.
func (m *Manager) WatchedDirectories() []string {
	m.watchesMu.Lock()
	defer m.watchesMu.Unlock()
	dirs := make([]string, 0, len(m.watches))
	for d := range m.watches {
		dirs = append(dirs, d)
	}
	return dirs
}

// pumpWatch drains one watch's batched events, translates them into
// ContentChanges, and applies them until the handle's context is cancelled.
func (m *Manager) pumpWatch(ctx context.Context, h *watchHandle) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-h.watcher.Events():
			if !ok {
				return
			}
			for _, ev := range batch {
				if ev.IsDir {
					continue
				}
				change, handled := contentChangeFromFileEvent(ev)
				if !handled {
					continue
				}
				if err := m.HandleContentChange(ctx, h.dir, change, h.loader); err != nil {
					m.publish(events.IndexingError, events.IndexingErrorData{
						Path:    change.Path,
						Message: err.Error(),
					})
				}
			}
		case err, ok := <-h.watcher.Errors():
			if !ok {
				continue
			}
			if err != nil {
				slog.Warn("watch error", slog.String("dir", h.dir), slog.String("error", err.Error()))
			}
		}
	}
}

func contentChangeFromFileEvent(ev watcher.FileEvent) (ContentChange, bool) {
	switch ev.Operation {
	case watcher.OpCreate:
		return ContentChange{Path: ev.Path, Type: ContentCreated}, true
	case watcher.OpModify, watcher.OpRename:
		return ContentChange{Path: ev.Path, Type: ContentModified}, true
	case watcher.OpDelete:
		return ContentChange{Path: ev.Path, Type: ContentDeleted}, true
	default:
		return ContentChange{}, false
	}
}

// HandleContentChange applies one content change: created/modified paths
// are loaded and upserted under their path-derived ID, deleted paths are
// removed by the same derived ID (spec §4.3 handleContentChange).
func (m *Manager) HandleContentChange(ctx context.Context, dir string, change ContentChange, loader ContentLoader) error {
	id := entryIDForPath(dir, change.Path)

	if change.Type == ContentDeleted {
		_, err := m.IndexBatch(ctx, BatchOp{Delete: []string{id}})
		return err
	}

	entry, err := loader.Load(ctx, change.Path)
	if err != nil {
		return fmt.Errorf("load %s: %w", change.Path, err)
	}
	entry.ID = id

	if err := validateEntry(entry, m.config.MaxContentLength); err != nil {
		return err
	}

	_, err = m.IndexBatch(ctx, BatchOp{Update: []*indexstore.Entry{entry}})
	return err
}
