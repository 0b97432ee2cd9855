// ABOUTME: VectorStore contract shared by the Qdrant client and the in-memory arena
// ABOUTME: Search is always scoped to one owner so tenants stay isolated
package vectorstore

import (
	"context"

	"github.com/citeseek/citeseek/internal/models"
)

// Store persists (vector, payload) pairs and performs owner-scoped
// nearest-neighbor search
type Store interface {
	// Upsert writes records; upsert by point id is idempotent overwrite
	Upsert(ctx context.Context, records []models.VectorRecord) error
	// Search returns the k nearest records for the owner, best first.
	// Zero matches is a valid outcome, not an error.
	Search(ctx context.Context, vector []float32, k int, owner models.OwnerScope) ([]models.RAGResult, error)
	// DeleteDocument removes every record belonging to a document
	DeleteDocument(ctx context.Context, documentID string, owner models.OwnerScope) error
}

// resultFromPayload converts a stored payload plus similarity score into
// the transient search result consumed by ranking and synthesis
func resultFromPayload(p models.RecordPayload, score float64) models.RAGResult {
	return models.RAGResult{
		PageContent: p.Content,
		Metadata: models.RAGMetadata{
			DocumentID: p.DocumentID,
			ChunkID:    p.ChunkID,
			ChunkIndex: p.ChunkIndex,
			StartChar:  p.StartChar,
			EndChar:    p.EndChar,
			FileName:   p.FileName,
			FileType:   p.FileType,
			FileSize:   p.FileSize,
			SourceURL:  p.SourceURL,
			UploadedAt: p.UploadedAt,
			Score:      score,
		},
	}
}
