// ABOUTME: Citation models derived from retrieved passages
// ABOUTME: Request-scoped; rebuilt per answer and never persisted
package models

// SourceType classifies the origin of a cited document
type SourceType string

const (
	SourcePDF     SourceType = "pdf"
	SourceWord    SourceType = "word"
	SourceText    SourceType = "text"
	SourceWeb     SourceType = "web"
	SourceUnknown SourceType = "unknown"
)

// CitationFormats holds preformatted bibliography strings
type CitationFormats struct {
	APA     string `json:"apa"`
	MLA     string `json:"mla"`
	Chicago string `json:"chicago"`
}

// EnhancedCitation is a display-ready source reference for one passage
type EnhancedCitation struct {
	ID                string          `json:"id"`
	Content           string          `json:"content"`
	FullContent       string          `json:"full_content,omitempty"`
	DisplayTitle      string          `json:"display_title"`
	ExactReference    string          `json:"exact_reference"`
	Confidence        float64         `json:"confidence"`
	ContextualSnippet string          `json:"contextual_snippet"`
	SourceType        SourceType      `json:"source_type"`
	PageNumber        int             `json:"page_number,omitempty"`
	SectionTitle      string          `json:"section_title,omitempty"`
	CitationFormat    CitationFormats `json:"citation_format"`
}
