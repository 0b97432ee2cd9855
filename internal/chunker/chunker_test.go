// ABOUTME: Unit tests for document chunking
// ABOUTME: Covers single-chunk shortcut, separator cuts, overlap coverage and scoring
package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/citeseek/citeseek/internal/models"
)

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New(DefaultOptions())

	chunks := c.Chunk("doc1", "A. B. C.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "A. B. C." {
		t.Errorf("expected chunk equal to input, got %q", chunks[0].Content)
	}
	if chunks[0].StartChar != 0 || chunks[0].EndChar != 8 {
		t.Errorf("expected span [0,8), got [%d,%d)", chunks[0].StartChar, chunks[0].EndChar)
	}
	if chunks[0].DocumentID != "doc1" {
		t.Errorf("expected document id doc1, got %s", chunks[0].DocumentID)
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New(DefaultOptions())
	if chunks := c.Chunk("doc1", ""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestChunk_SplitsOnSentenceBoundaries(t *testing.T) {
	c := New(Options{ChunkSize: 4, ChunkOverlap: 1, PreserveStructure: false})

	chunks := c.Chunk("doc1", "A. B. C.")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Every cut must land after a ". " boundary, never mid-sentence
	for _, ch := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(ch.Content, ". ") && !strings.HasSuffix(strings.TrimRight(ch.Content, " "), ".") {
			t.Errorf("chunk %q does not end on a sentence boundary", ch.Content)
		}
	}
}

func TestChunk_OverlapCoversFullText(t *testing.T) {
	c := New(Options{ChunkSize: 50, ChunkOverlap: 10, PreserveStructure: false})
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)

	chunks := c.Chunk("doc1", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if chunks[0].StartChar != 0 {
		t.Errorf("first chunk must start at 0, got %d", chunks[0].StartChar)
	}
	if chunks[len(chunks)-1].EndChar != len(text) {
		t.Errorf("last chunk must end at %d, got %d", len(text), chunks[len(chunks)-1].EndChar)
	}

	// No gaps: each chunk starts at or before the previous end
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartChar > chunks[i-1].EndChar {
			t.Errorf("gap between chunk %d (end %d) and chunk %d (start %d)",
				i-1, chunks[i-1].EndChar, i, chunks[i].StartChar)
		}
	}

	// Indices are sequential
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("expected chunk index %d, got %d", i, ch.ChunkIndex)
		}
	}
}

func TestChunk_AlwaysAdvances(t *testing.T) {
	// Unsplittable text must hard-cut rather than loop
	c := New(Options{ChunkSize: 10, ChunkOverlap: 9, PreserveStructure: false})
	text := strings.Repeat("x", 100)

	chunks := c.Chunk("doc1", text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks for unsplittable text")
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartChar <= chunks[i-1].StartChar {
			t.Fatalf("chunk %d did not advance: start %d after %d", i, chunks[i].StartChar, chunks[i-1].StartChar)
		}
	}
}

func TestChunk_MultibyteTextCutsOnRuneBoundaries(t *testing.T) {
	// No ASCII separators anywhere, so every cut is a hard cut. Each
	// chunk must still be valid UTF-8 and the walk must still terminate.
	c := New(Options{ChunkSize: 10, ChunkOverlap: 3, PreserveStructure: false})
	text := strings.Repeat("日本語の文書", 50)

	chunks := c.Chunk("doc1", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Content) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, ch.Content)
		}
	}
	if chunks[len(chunks)-1].EndChar != len(text) {
		t.Errorf("last chunk must end at %d, got %d", len(text), chunks[len(chunks)-1].EndChar)
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		content  string
		expected models.ContentType
	}{
		{"# Revenue Report", models.ContentTypeHeader},
		{"1. First item in the list", models.ContentTypeNumberedList},
		{"- bullet point", models.ContentTypeBulletList},
		{"* another bullet", models.ContentTypeBulletList},
		{"Table 3 | Q1 | Q2 | Q3 |", models.ContentTypeTable},
		{"See Figure 4 for the trend line", models.ContentTypeFigureReference},
		{"Summary of findings for the quarter", models.ContentTypeSummary},
		{"Introduction to the methodology", models.ContentTypeIntroduction},
		{"Plain prose with nothing special.", models.ContentTypeParagraph},
	}

	for _, tt := range tests {
		if got := DetectContentType(tt.content); got != tt.expected {
			t.Errorf("DetectContentType(%q) = %s, want %s", tt.content, got, tt.expected)
		}
	}
}

func TestScoreQuality(t *testing.T) {
	// Mid-length multi-sentence prose scores above base
	good := strings.Repeat("The quarterly revenue exceeded projections by a wide margin. ", 10)
	if score := ScoreQuality(good); score <= 0.5 {
		t.Errorf("expected good prose above base 0.5, got %f", score)
	}

	// Tiny fragments score below base
	if score := ScoreQuality("ok"); score >= 0.5 {
		t.Errorf("expected tiny fragment below base 0.5, got %f", score)
	}

	// Scores stay clamped to [0,1]
	huge := strings.Repeat("word ", 2000)
	if score := ScoreQuality(huge); score < 0 || score > 1 {
		t.Errorf("score %f outside [0,1]", score)
	}
}
