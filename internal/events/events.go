// Package events provides a lightweight in-process publish/subscribe bus
// for the engine's lifecycle notifications (indexing progress, rebuild
// status, batch errors). Subscribers never block a publisher: a full
// subscriber channel drops the event rather than stalling the caller.
package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Name identifies the kind of event being published.
type Name string

const (
	// Initialized fires once the engine has finished opening its index
	// store and is ready to accept queries.
	Initialized Name = "initialized"

	// ContentIndexed fires after a single entry has been indexed.
	ContentIndexed Name = "content_indexed"

	// BatchIndexed fires after a batch of entries has been indexed
	// successfully.
	BatchIndexed Name = "batch_indexed"

	// BatchProcessed fires after a batch has finished processing,
	// regardless of whether every entry succeeded.
	BatchProcessed Name = "batch_processed"

	// BatchError fires when a batch fails partway through.
	BatchError Name = "batch_error"

	// IndexingError fires when a single-entry indexing operation fails.
	IndexingError Name = "indexing_error"

	// RebuildStarted fires when a full index rebuild begins.
	RebuildStarted Name = "rebuild_started"

	// RebuildCompleted fires when a full index rebuild finishes.
	RebuildCompleted Name = "rebuild_completed"
)

// Event is a single notification broadcast on the bus.
type Event struct {
	ID        uint64          `json:"id"`
	Name      Name            `json:"name"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Bus manages event subscriptions and publishing. It is safe for
// concurrent use by multiple publishers and subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan *Event
	nextSubID   uint64
	eventSeq    atomic.Uint64
	bufferSize  int
	closed      bool
}

// NewBus creates a new Bus. bufferSize controls the per-subscriber
// channel capacity; it defaults to 64 when non-positive.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		subscribers: make(map[uint64]chan *Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new listener and returns its id (for Unsubscribe)
// along with a receive-only channel of events. Returns a nil channel if
// the bus has been closed.
func (b *Bus) Subscribe() (uint64, <-chan *Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, nil
	}

	id := b.nextSubID
	b.nextSubID++

	ch := make(chan *Event, b.bufferSize)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish marshals data and broadcasts it under the given event name.
// A full subscriber channel drops the event for that subscriber rather
// than blocking the publisher.
func (b *Bus) Publish(name Name, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	event := &Event{
		ID:        b.eventSeq.Add(1),
		Name:      name,
		Timestamp: time.Now(),
		Data:      payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}

	return nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close shuts down the bus and closes every subscriber channel. Publish
// calls after Close are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// InitializedData describes the payload for Initialized.
type InitializedData struct {
	DatabasePath string `json:"database_path"`
	EntryCount   int    `json:"entry_count"`
}

// ContentIndexedData describes the payload for ContentIndexed.
type ContentIndexedData struct {
	EntryID  string `json:"entry_id"`
	Category string `json:"category"`
}

// BatchIndexedData describes the payload for BatchIndexed.
type BatchIndexedData struct {
	Count    int    `json:"count"`
	Duration string `json:"duration"`
}

// BatchProcessedData describes the payload for BatchProcessed.
type BatchProcessedData struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchErrorData describes the payload for BatchError.
type BatchErrorData struct {
	FailedEntryIDs []string `json:"failed_entry_ids"`
	Message        string   `json:"message"`
}

// IndexingErrorData describes the payload for IndexingError.
type IndexingErrorData struct {
	EntryID string `json:"entry_id,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// RebuildStartedData describes the payload for RebuildStarted.
type RebuildStartedData struct {
	Partial bool `json:"partial"`
}

// RebuildCompletedData describes the payload for RebuildCompleted.
type RebuildCompletedData struct {
	Partial    bool   `json:"partial"`
	EntryCount int    `json:"entry_count"`
	Duration   string `json:"duration"`
}
