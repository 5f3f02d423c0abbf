package indexmanager

import "github.com/kestrel-labs/knowledgeforge/internal/indexstore"

// BatchOp is a mixed set of write operations applied atomically as one
// unit (spec §4.3 indexBatch).
type BatchOp struct {
	Insert []*indexstore.Entry
	Update []*indexstore.Entry
	Delete []string
}

func (b BatchOp) size() int {
	return len(b.Insert) + len(b.Update) + len(b.Delete)
}

// BatchResult reports the outcome of an indexBatch call.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// RebuildReport describes the outcome of a rebuildIndex/rebuildPartialIndex
// call.
type RebuildReport struct {
	Partial    bool
	EntryCount int
}
