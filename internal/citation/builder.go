// ABOUTME: CitationBuilder derives page numbers, sections and formatted citations from chunks
// ABOUTME: All extraction is heuristic pattern matching over the chunk content
package citation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/citeseek/citeseek/internal/models"
)

const (
	defaultConfidence = 0.8
	snippetWindow     = 200
	minContentLength  = 10
	minConfidence     = 0.3
)

var (
	pagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\[page\s+(\d+)\]`),
		regexp.MustCompile(`(?i)\bpage\s+(\d+)\b`),
		regexp.MustCompile(`(?i)\bp\.\s*(\d+)\b`),
		regexp.MustCompile(`^\s*(\d{1,4})\s*\n`),
	}
	markdownHeader = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	capsLine       = regexp.MustCompile(`(?m)^([A-Z][A-Z0-9 ,:&\-]{3,60})$`)
	numberedHead   = regexp.MustCompile(`(?m)^((?:\d+(?:\.\d+)*|[IVXLC]+\.)\s+[A-Z].{2,60})$`)
	wordPattern    = regexp.MustCompile(`[a-zA-Z0-9]+`)
)

// Builder constructs enhanced citations from retrieval results
type Builder struct{}

// NewBuilder returns a citation builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build derives a full citation for one retrieval result. Extraction
// heuristics that find nothing leave their field zero rather than
// guessing.
func (b *Builder) Build(result models.RAGResult, query string) models.EnhancedCitation {
	content := result.PageContent
	meta := result.Metadata

	confidence := meta.Score
	if confidence <= 0 {
		confidence = defaultConfidence
	}

	page := ExtractPageNumber(content)
	section := ExtractSectionTitle(content)
	sourceType := DetectSourceType(meta.FileName, meta.SourceURL)
	title := displayTitle(meta.FileName, meta.SourceURL)

	return models.EnhancedCitation{
		ID:                meta.ChunkID,
		Content:           content,
		FullContent:       content,
		DisplayTitle:      title,
		ExactReference:    exactReference(title, page, section, meta.ChunkIndex),
		Confidence:        confidence,
		ContextualSnippet: ContextualSnippet(content, query),
		SourceType:        sourceType,
		PageNumber:        page,
		SectionTitle:      section,
		CitationFormat:    formatCitations(title, meta.SourceURL, page, meta.UploadedAt),
	}
}

// Validate rejects citations too weak to present to a reader
func (b *Builder) Validate(c models.EnhancedCitation) error {
	if len(strings.TrimSpace(c.Content)) < minContentLength {
		return fmt.Errorf("citation content too short (%d chars)", len(c.Content))
	}
	if c.DisplayTitle == "" {
		return fmt.Errorf("citation has no source title")
	}
	if c.Confidence < minConfidence {
		return fmt.Errorf("citation confidence %.2f below threshold %.2f", c.Confidence, minConfidence)
	}
	return nil
}

// ExtractPageNumber finds a page reference in the chunk text. Patterns
// are tried in specificity order; 0 means no page was found.
func ExtractPageNumber(content string) int {
	for _, p := range pagePatterns {
		if m := p.FindStringSubmatch(content); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 100000 {
				return n
			}
		}
	}
	return 0
}

// ExtractSectionTitle finds a heading in the chunk. Markdown headers
// win over ALL-CAPS lines, which win over numbered headings.
func ExtractSectionTitle(content string) string {
	if m := markdownHeader.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := capsLine.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := numberedHead.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// DetectSourceType classifies the source from file extension or URL
func DetectSourceType(fileName, sourceURL string) models.SourceType {
	if fileName != "" {
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".pdf":
			return models.SourcePDF
		case ".doc", ".docx", ".odt", ".rtf":
			return models.SourceWord
		case ".txt", ".md", ".markdown":
			return models.SourceText
		}
	}
	if sourceURL != "" {
		if u, err := url.Parse(sourceURL); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			return models.SourceWeb
		}
	}
	if fileName != "" {
		return models.SourceText
	}
	return models.SourceUnknown
}

// ContextualSnippet returns the window of the content with the highest
// density of query terms, capped at snippetWindow characters. With no
// matching terms the head of the content is used.
func ContextualSnippet(content, query string) string {
	if len(content) <= snippetWindow {
		return content
	}

	terms := queryTerms(query)

	// Lowercase each window individually. Case folding can change byte
	// length, so offsets into a lowercased copy of the whole content
	// would not line up with the original.
	bestStart, bestCount := 0, 0
	step := snippetWindow / 4
	for start := 0; start < len(content)-snippetWindow; start += step {
		from := runeStart(content, start)
		window := strings.ToLower(content[from:runeStart(content, from+snippetWindow)])
		count := 0
		for _, t := range terms {
			count += strings.Count(window, t)
		}
		if count > bestCount {
			bestStart, bestCount = from, count
		}
	}

	snippet := content[bestStart:runeStart(content, bestStart+snippetWindow)]
	// Trim to word boundaries so the snippet reads cleanly
	if bestStart > 0 {
		if i := strings.IndexByte(snippet, ' '); i >= 0 && i < 40 {
			snippet = snippet[i+1:]
		}
	}
	if i := strings.LastIndexByte(snippet, ' '); i > len(snippet)-40 && i > 0 {
		snippet = snippet[:i]
	}
	return strings.TrimSpace(snippet)
}

// runeStart backs i up to the nearest rune boundary in s
func runeStart(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func queryTerms(query string) []string {
	var terms []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		if len(w) > 2 {
			terms = append(terms, w)
		}
	}
	return terms
}

func displayTitle(fileName, sourceURL string) string {
	if fileName != "" {
		base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		return strings.ReplaceAll(strings.ReplaceAll(base, "_", " "), "-", " ")
	}
	if sourceURL != "" {
		if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
			return u.Host
		}
		return sourceURL
	}
	return ""
}

// exactReference concatenates the locating parts into a single string.
// Paragraph 0 is dropped since a zero index is indistinguishable from
// an absent one.
func exactReference(title string, page int, section string, paragraph int) string {
	parts := []string{}
	if title != "" {
		parts = append(parts, title)
	}
	if section != "" {
		parts = append(parts, section)
	}
	if page > 0 {
		parts = append(parts, fmt.Sprintf("page %d", page))
	}
	if paragraph > 0 {
		parts = append(parts, fmt.Sprintf("para. %d", paragraph))
	}
	return strings.Join(parts, ", ")
}

func formatCitations(title, sourceURL string, page int, uploadedAt time.Time) models.CitationFormats {
	if title == "" {
		title = "Untitled document"
	}
	year := "n.d."
	if !uploadedAt.IsZero() {
		year = strconv.Itoa(uploadedAt.Year())
	}

	pageAPA := ""
	pageMLA := ""
	pageChi := ""
	if page > 0 {
		pageAPA = fmt.Sprintf(", p. %d", page)
		pageMLA = fmt.Sprintf(", p. %d", page)
		pageChi = fmt.Sprintf(", %d", page)
	}

	source := sourceURL
	if source == "" {
		source = "Local document"
	}

	return models.CitationFormats{
		APA:     fmt.Sprintf("%s. (%s). %s%s.", title, year, source, pageAPA),
		MLA:     fmt.Sprintf("\"%s.\" %s%s.", title, source, pageMLA),
		Chicago: fmt.Sprintf("%s, \"%s\"%s.", source, title, pageChi),
	}
}
