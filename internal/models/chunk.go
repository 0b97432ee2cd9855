// ABOUTME: Chunk represents an overlapping segment of a source document
// ABOUTME: Carries structural content type and a heuristic quality score
package models

// ContentType classifies the structure of a chunk's text
type ContentType string

const (
	ContentTypeHeader          ContentType = "header"
	ContentTypeNumberedList    ContentType = "numbered-list"
	ContentTypeBulletList      ContentType = "bullet-list"
	ContentTypeTable           ContentType = "table"
	ContentTypeFigureReference ContentType = "figure-reference"
	ContentTypeSummary         ContentType = "summary"
	ContentTypeIntroduction    ContentType = "introduction"
	ContentTypeParagraph       ContentType = "paragraph"
)

// Chunk represents one bounded, overlapping segment of a document.
// Chunks are immutable once written and are deleted with their document.
// StartChar and EndChar are byte offsets into the normalized text the
// chunker operates on, which may differ from the raw document when
// structural normalization rewrites whitespace or section markers.
type Chunk struct {
	ID           string      `json:"id"`
	DocumentID   string      `json:"document_id"`
	Content      string      `json:"content"`
	ChunkIndex   int         `json:"chunk_index"`
	StartChar    int         `json:"start_char"`
	EndChar      int         `json:"end_char"`
	ContentType  ContentType `json:"content_type"`
	QualityScore float64     `json:"quality_score"`
}
