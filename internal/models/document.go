// ABOUTME: Document registry record for ingested sources
// ABOUTME: Tracks file metadata, owner scope and chunk count
package models

import "time"

// Document is the registry record for one ingested source document
type Document struct {
	ID         string     `json:"id"`
	FileName   string     `json:"file_name"`
	FileType   string     `json:"file_type"`
	FileSize   int64      `json:"file_size"`
	SourceURL  string     `json:"source_url,omitempty"`
	Owner      OwnerScope `json:"owner"`
	ChunkCount int        `json:"chunk_count"`
	UploadedAt time.Time  `json:"uploaded_at"`
}
