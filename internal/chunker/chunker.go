// ABOUTME: Chunker splits document text into overlapping structure-aware segments
// ABOUTME: Cuts on the most semantic separator available within each window
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/citeseek/citeseek/internal/models"
)

// separators ordered most semantic first; the splitter falls through
// this list at every cut point before hard-cutting at the window edge.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " "}

var (
	headerLine    = regexp.MustCompile(`(?m)^(#{1,6} .+|[A-Z][A-Z0-9 :\-]{3,})$`)
	listMarker    = regexp.MustCompile(`(?m)^(\d+[.)] |[-*•] )`)
	namedSection  = regexp.MustCompile(`(?mi)^(abstract|introduction|summary|conclusion|references|appendix)\b.*$`)
	multiNewline  = regexp.MustCompile(`\n{3,}`)
	runWhitespace = regexp.MustCompile(`[ \t]{2,}`)
	sentenceEnd   = regexp.MustCompile(`[.!?](\s|$)`)
	wordRe        = regexp.MustCompile(`[A-Za-z][A-Za-z0-9'_-]{2,}`)
	numberedItem  = regexp.MustCompile(`^\d+[.)]\s`)
)

// Options controls chunking behavior
type Options struct {
	ChunkSize         int
	ChunkOverlap      int
	PreserveStructure bool
}

// DefaultOptions returns the standard chunking parameters
func DefaultOptions() Options {
	return Options{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		PreserveStructure: true,
	}
}

// Chunker splits raw document text into models.Chunk values
type Chunker struct {
	opts Options
}

// New creates a Chunker with the given options. Zero or negative sizes
// fall back to defaults so a misconfigured caller still gets chunks.
func New(opts Options) *Chunker {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = opts.ChunkSize / 5
	}
	return &Chunker{opts: opts}
}

// Chunk splits content into overlapping segments. Empty input yields an
// empty list; input no longer than the chunk size yields a single chunk.
// Never returns an error for valid string input.
func (c *Chunker) Chunk(documentID, content string) []models.Chunk {
	if content == "" {
		return nil
	}

	if len(content) <= c.opts.ChunkSize {
		return []models.Chunk{c.makeChunk(documentID, content, 0, 0, len(content))}
	}

	text := content
	if c.opts.PreserveStructure {
		text = normalizeStructure(text)
	}

	var chunks []models.Chunk
	pos := 0
	index := 0

	for pos < len(text) {
		end := pos + c.opts.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.findCut(text, pos, end)
		}

		segment := text[pos:end]
		if strings.TrimSpace(segment) != "" {
			chunks = append(chunks, c.makeChunk(documentID, segment, index, pos, end))
			index++
		}

		if end >= len(text) {
			break
		}

		// Overlap: back the next start up by ChunkOverlap, but always advance
		next := runeStart(text, end-c.opts.ChunkOverlap)
		if next <= pos {
			_, size := utf8.DecodeRuneInString(text[pos:])
			next = pos + size
		}
		pos = next
	}

	return chunks
}

// findCut searches backward from the ideal cut point for the last
// occurrence of each separator that is still ahead of start. The first
// separator (most semantic) that applies wins; otherwise hard-cut at
// the nearest rune boundary so no chunk ends mid-rune.
func (c *Chunker) findCut(text string, start, ideal int) int {
	window := text[start:ideal]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	cut := runeStart(text, ideal)
	if cut <= start {
		_, size := utf8.DecodeRuneInString(text[start:])
		cut = start + size
	}
	return cut
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

func (c *Chunker) makeChunk(documentID, content string, index, start, end int) models.Chunk {
	return models.Chunk{
		ID:           "chunk_" + uuid.New().String(),
		DocumentID:   documentID,
		Content:      content,
		ChunkIndex:   index,
		StartChar:    start,
		EndChar:      end,
		ContentType:  DetectContentType(content),
		QualityScore: ScoreQuality(content),
	}
}

// normalizeStructure protects structural markers by forcing blank lines
// around them, then collapses runs of newlines and whitespace.
func normalizeStructure(text string) string {
	text = headerLine.ReplaceAllString(text, "\n$1\n")
	text = namedSection.ReplaceAllString(text, "\n$0\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = runWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// DetectContentType classifies a chunk by its leading structure
func DetectContentType(content string) models.ContentType {
	trimmed := strings.TrimSpace(content)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(trimmed, "#"):
		return models.ContentTypeHeader
	case numberedItem.MatchString(trimmed):
		return models.ContentTypeNumberedList
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "• "):
		return models.ContentTypeBulletList
	case strings.Contains(trimmed, "|") && (strings.Contains(lower, "table") || strings.Count(trimmed, "|") >= 4):
		return models.ContentTypeTable
	case strings.Contains(lower, "figure") || strings.Contains(lower, "fig."):
		return models.ContentTypeFigureReference
	case strings.HasPrefix(lower, "summary") || strings.HasPrefix(lower, "abstract"):
		return models.ContentTypeSummary
	case strings.HasPrefix(lower, "introduction") || strings.HasPrefix(lower, "overview"):
		return models.ContentTypeIntroduction
	default:
		return models.ContentTypeParagraph
	}
}

// ScoreQuality computes a heuristic quality score in [0,1], base 0.5.
// Length band, sentence count, meaningful words and structural markers
// each contribute; the constants are heuristics, not derived values.
func ScoreQuality(content string) float64 {
	score := 0.5
	length := len(content)

	switch {
	case length >= 300 && length <= 2000:
		score += 0.2
	case length < 100 || length > 3000:
		score -= 0.2
	}

	if len(sentenceEnd.FindAllString(content, -1)) >= 2 {
		score += 0.1
	}

	words := wordRe.FindAllString(content, -1)
	if len(words) >= 10 {
		score += 0.1
	}
	if len(words) >= 50 {
		score += 0.1
	}

	if headerLine.MatchString(content) || listMarker.MatchString(content) {
		score += 0.05
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
