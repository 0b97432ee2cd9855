// ABOUTME: Vector storage and search result models
// ABOUTME: Defines VectorRecord, OwnerScope, RAGResult and RAGMetadata
package models

import "time"

// OwnerScope is the tenant boundary for stored vectors.
// Exactly one of UserID or SessionID is set, never both.
type OwnerScope struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Key returns the single owner identifier for this scope
func (o OwnerScope) Key() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.SessionID
}

// IsZero reports whether no owner is set
func (o OwnerScope) IsZero() bool {
	return o.UserID == "" && o.SessionID == ""
}

// VectorRecord is the persisted unit in the vector store.
// PointID is globally unique and independent of ChunkID so a document
// can be re-indexed without id collisions.
type VectorRecord struct {
	PointID string        `json:"point_id"`
	Vector  []float32     `json:"vector"`
	Payload RecordPayload `json:"payload"`
}

// RecordPayload is the flat payload stored alongside each vector.
// It stays flat (no nested objects) for compatibility with strict
// vector-database backends.
type RecordPayload struct {
	Content    string    `json:"content"`
	DocumentID string    `json:"document_id"`
	ChunkID    string    `json:"chunk_id"`
	ChunkIndex int       `json:"chunk_index"`
	StartChar  int       `json:"start_char"`
	EndChar    int       `json:"end_char"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	SourceURL  string    `json:"source_url,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// RAGMetadata carries the provenance of a retrieved passage
type RAGMetadata struct {
	DocumentID string    `json:"document_id"`
	ChunkID    string    `json:"chunk_id"`
	ChunkIndex int       `json:"chunk_index"`
	StartChar  int       `json:"start_char"`
	EndChar    int       `json:"end_char"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	SourceURL  string    `json:"source_url,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	Score      float64   `json:"score"`
}

// RAGResult is the transient, request-scoped unit returned by a search
// and consumed by ranking and synthesis. Never persisted.
type RAGResult struct {
	PageContent string      `json:"page_content"`
	Metadata    RAGMetadata `json:"metadata"`
}
