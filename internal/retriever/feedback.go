package retriever

import (
	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
)

// ObserveFeedback maps a caller's feedback on one result of a prior
// Retrieve call back onto C7 (bandit reward) and, for the result that
// was actually shown, C6 (rerank label). queryID must be one returned by
// a prior Retrieve call; resultID is the Entry.ID the feedback is about.
//
// Unlike Retrieve, which reports a single strategy-level outcome,
// feedback is inherently per-result: a query can surface several
// entries and the caller rates one of them, so the reranker's label
// needs that entry's feature row rather than the query as a whole.
func (h *HybridRetriever) ObserveFeedback(queryID, resultID string, feedback UserFeedback) error {
	h.mu.Lock()
	record, ok := h.contextByQuery[queryID]
	h.mu.Unlock()
	if !ok {
		return kferrors.NotFound(kferrors.ErrCodeEntryNotFound, "retriever: unknown queryID, feedback ignored")
	}

	if err := h.learner.UpdateReward(record.strategy, record.banditCtx, feedback.reward()); err != nil {
		return err
	}

	if h.reranker == nil {
		return nil
	}
	features, ok := record.features[resultID]
	if !ok {
		// Feedback on a result this query never produced (e.g. the
		// caller replayed a stale id); nothing to train the reranker on.
		return nil
	}
	return h.reranker.ObserveFeedback(features, feedback.rerankLabel())
}

// ForgetQuery releases the stored context and feature rows for queryID.
// Nothing else removes them.
func (h *HybridRetriever) ForgetQuery(queryID string) {
	h.mu.Lock()
	delete(h.contextByQuery, queryID)
	h.mu.Unlock()
}
