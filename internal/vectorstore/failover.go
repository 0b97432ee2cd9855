// ABOUTME: Failover store tries the external database first, then the in-memory arena
// ABOUTME: External errors are logged and degraded, never surfaced to the caller
package vectorstore

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/models"
)

// FailoverStore wraps a primary Store with an in-memory fallback.
// Retrieval is available-over-consistent: a transient database hiccup
// must never turn into a hard error for a conversational feature.
type FailoverStore struct {
	primary  Store
	fallback *MemoryStore
	logger   *logrus.Logger
}

// NewFailoverStore creates the wrapper. primary may be nil, in which
// case every call goes straight to the in-memory store.
func NewFailoverStore(primary Store, fallback *MemoryStore, logger *logrus.Logger) *FailoverStore {
	if fallback == nil {
		fallback = NewMemoryStore()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &FailoverStore{primary: primary, fallback: fallback, logger: logger}
}

// Fallback exposes the in-memory store for host-driven expiry
func (f *FailoverStore) Fallback() *MemoryStore {
	return f.fallback
}

// Upsert writes to the primary; when the primary errors the records land
// in the in-memory arena so later searches can still find them
func (f *FailoverStore) Upsert(ctx context.Context, records []models.VectorRecord) error {
	if f.primary != nil {
		err := f.primary.Upsert(ctx, records)
		if err == nil {
			return nil
		}
		f.logger.WithFields(logrus.Fields{
			"operation": "upsert",
			"records":   len(records),
			"error":     err.Error(),
		}).Warn("primary vector store unavailable, writing to in-memory fallback")
	}
	return f.fallback.Upsert(ctx, records)
}

// Search queries the primary and retries against the fallback on error
func (f *FailoverStore) Search(ctx context.Context, vector []float32, k int, owner models.OwnerScope) ([]models.RAGResult, error) {
	if f.primary != nil {
		results, err := f.primary.Search(ctx, vector, k, owner)
		if err == nil {
			return results, nil
		}
		f.logger.WithFields(logrus.Fields{
			"operation": "search",
			"k":         k,
			"error":     err.Error(),
		}).Warn("primary vector store unavailable, searching in-memory fallback")
	}
	return f.fallback.Search(ctx, vector, k, owner)
}

// DeleteDocument removes the document from both stores so a recovered
// primary and the fallback never disagree about deleted content
func (f *FailoverStore) DeleteDocument(ctx context.Context, documentID string, owner models.OwnerScope) error {
	var primaryErr error
	if f.primary != nil {
		primaryErr = f.primary.DeleteDocument(ctx, documentID, owner)
		if primaryErr != nil {
			f.logger.WithFields(logrus.Fields{
				"operation": "delete",
				"document":  documentID,
				"error":     primaryErr.Error(),
			}).Warn("primary vector store delete failed")
		}
	}
	if err := f.fallback.DeleteDocument(ctx, documentID, owner); err != nil {
		return err
	}
	return primaryErr
}
