package retriever

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"
)

// VectorResult is one approximate-nearest-neighbor hit.
type VectorResult struct {
	ID    string
	Score float64
}

// VectorIndex is an approximate nearest-neighbor index over entry
// embeddings, backing the vector-heavy and semantic-focused arms. It
// wraps coder/hnsw's pure-Go graph with a string-id mapping layer, the
// same shape the teacher's vector store uses but trimmed to what the
// vector-heavy arm actually needs: add, search, delete, count.
type VectorIndex struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[uint64]
	dimensions int

	idToKey map[string]uint64
	keyToID map[uint64]string
	nextKey uint64
}

// NewVectorIndex builds an empty cosine-distance HNSW index for vectors
// of the given dimensionality.
func NewVectorIndex(dimensions int) *VectorIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.Ml = 0.25
	graph.EfSearch = 20
	return &VectorIndex{
		graph:      graph,
		dimensions: dimensions,
		idToKey:    make(map[string]uint64),
		keyToID:    make(map[uint64]string),
	}
}

// Add inserts or replaces the vector for id. Replacing an existing id
// uses lazy deletion (orphaning the old graph node) rather than calling
// Delete on the graph, matching the teacher's documented workaround for
// coder/hnsw's last-node-delete bug.
func (v *VectorIndex) Add(id string, vector []float32) error {
	if len(vector) != v.dimensions {
		return fmt.Errorf("retriever: vector dimension mismatch: want %d, got %d", v.dimensions, len(vector))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if oldKey, exists := v.idToKey[id]; exists {
		delete(v.keyToID, oldKey)
		delete(v.idToKey, id)
	}

	key := v.nextKey
	v.nextKey++
	v.graph.Add(hnsw.MakeNode(key, vector))
	v.idToKey[id] = key
	v.keyToID[key] = id
	return nil
}

// Delete removes id from the live mapping; the underlying graph node is
// orphaned rather than physically removed.
func (v *VectorIndex) Delete(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if key, exists := v.idToKey[id]; exists {
		delete(v.keyToID, key)
		delete(v.idToKey, id)
	}
}

// Search returns up to k nearest neighbors of query, scored as
// 1-cosine_distance/2 so 1.0 means identical.
func (v *VectorIndex) Search(query []float32, k int) ([]VectorResult, error) {
	if len(query) != v.dimensions {
		return nil, fmt.Errorf("retriever: query dimension mismatch: want %d, got %d", v.dimensions, len(query))
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.graph.Len() == 0 {
		return []VectorResult{}, nil
	}

	nodes := v.graph.Search(query, k)
	results := make([]VectorResult, 0, len(nodes))
	for _, node := range nodes {
		id, ok := v.keyToID[node.Key]
		if !ok {
			continue
		}
		distance := v.graph.Distance(query, node.Value)
		results = append(results, VectorResult{ID: id, Score: 1.0 - float64(distance)/2.0})
	}
	return results, nil
}

// Count returns the number of live (non-orphaned) vectors.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.idToKey)
}
