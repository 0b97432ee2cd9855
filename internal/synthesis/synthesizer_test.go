// ABOUTME: Tests for context synthesis, fallback concatenation and relevance scoring
// ABOUTME: Uses a fake completer to isolate the LLM dependency
package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeCompleter struct {
	response        string
	summary         string
	err             error
	lastUser        string
	lastSummaryUser string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, _ float32, _ int) (string, error) {
	if system == summarySystemPrompt {
		f.lastSummaryUser = user
		return f.summary, f.err
	}
	f.lastUser = user
	return f.response, f.err
}

func TestSynthesize_UsesRewrittenContext(t *testing.T) {
	fake := &fakeCompleter{response: "Revenue grew 12% in the third quarter."}
	s := NewSynthesizer(fake, 0, nil)

	result := s.Synthesize(context.Background(), []string{"chunk one", "chunk two"}, "revenue growth")
	if result.RewrittenContext != "Revenue grew 12% in the third quarter." {
		t.Errorf("unexpected context: %q", result.RewrittenContext)
	}
	if !strings.Contains(fake.lastUser, "chunk one") || !strings.Contains(fake.lastUser, "chunk two") {
		t.Error("prompt should include all chunk contents")
	}
}

func TestSynthesize_FallsBackToConcatenation(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("rate limited")}
	s := NewSynthesizer(fake, 0, nil)

	result := s.Synthesize(context.Background(), []string{"first excerpt", "second excerpt"}, "query")
	if !strings.Contains(result.RewrittenContext, "first excerpt") ||
		!strings.Contains(result.RewrittenContext, "second excerpt") {
		t.Errorf("fallback should concatenate raw chunks, got %q", result.RewrittenContext)
	}
}

func TestSynthesize_NilCompleterFallsBack(t *testing.T) {
	s := NewSynthesizer(nil, 0, nil)
	result := s.Synthesize(context.Background(), []string{"only excerpt"}, "query")
	if !strings.Contains(result.RewrittenContext, "only excerpt") {
		t.Errorf("nil completer should still return raw chunks, got %q", result.RewrittenContext)
	}
}

func TestSynthesize_EmptyChunks(t *testing.T) {
	s := NewSynthesizer(&fakeCompleter{response: "hallucinated"}, 0, nil)
	result := s.Synthesize(context.Background(), nil, "query")
	if result.RewrittenContext != "" {
		t.Errorf("no source material should yield empty context, got %q", result.RewrittenContext)
	}
}

func TestSynthesize_TruncatesToMaxLength(t *testing.T) {
	long := strings.Repeat("word ", 200)
	fake := &fakeCompleter{response: long}
	s := NewSynthesizer(fake, 100, nil)

	result := s.Synthesize(context.Background(), []string{"source"}, "query")
	if len(result.RewrittenContext) > 100 {
		t.Errorf("context length %d exceeds max 100", len(result.RewrittenContext))
	}
}

func TestSynthesize_SummaryFromCompletion(t *testing.T) {
	fake := &fakeCompleter{
		response: "Revenue grew 12% in the third quarter. Margins held steady. Costs fell.",
		summary:  "Revenue grew 12% while margins held.",
	}
	s := NewSynthesizer(fake, 0, nil)

	result := s.Synthesize(context.Background(), []string{"source chunk"}, "revenue growth")
	if result.CondensedSummary != "Revenue grew 12% while margins held." {
		t.Errorf("summary should come from the completion, got %q", result.CondensedSummary)
	}
	if !strings.Contains(fake.lastSummaryUser, "Revenue grew 12% in the third quarter.") {
		t.Error("summary prompt should include the rewritten context")
	}
}

func TestSynthesize_SummaryFallsBackToCondense(t *testing.T) {
	fake := &fakeCompleter{
		response: "First point here. Second point there. Third point everywhere.",
	}
	s := NewSynthesizer(fake, 0, nil)

	result := s.Synthesize(context.Background(), []string{"source chunk"}, "query")
	want := "First point here. Second point there."
	if result.CondensedSummary != want {
		t.Errorf("empty summary completion should condense locally, got %q", result.CondensedSummary)
	}
}

func TestSynthesize_MultibyteTruncationStaysValid(t *testing.T) {
	fake := &fakeCompleter{response: strings.Repeat("日本語の文書", 20)}
	s := NewSynthesizer(fake, 100, nil)

	result := s.Synthesize(context.Background(), []string{"source"}, "query")
	if len(result.RewrittenContext) > 100 {
		t.Errorf("context length %d exceeds max 100", len(result.RewrittenContext))
	}
	if !utf8.ValidString(result.RewrittenContext) {
		t.Errorf("truncated context is not valid UTF-8: %q", result.RewrittenContext)
	}
	if !utf8.ValidString(result.CondensedSummary) {
		t.Errorf("condensed summary is not valid UTF-8: %q", result.CondensedSummary)
	}
}

func TestRelevanceScore_Deterministic(t *testing.T) {
	query := "quarterly revenue projections"
	text := "The quarterly revenue met projections across regions."
	first := RelevanceScore(query, text)
	for i := 0; i < 5; i++ {
		if got := RelevanceScore(query, text); got != first {
			t.Fatalf("score changed between calls: %v vs %v", got, first)
		}
	}
	if first != 1.0 {
		t.Errorf("all keywords present, expected 1.0, got %v", first)
	}
}

func TestRelevanceScore_PartialCoverage(t *testing.T) {
	got := RelevanceScore("revenue decline forecast", "Revenue numbers for the quarter.")
	want := 1.0 / 3.0
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRelevanceScore_ShortTermsIgnored(t *testing.T) {
	if got := RelevanceScore("is the it an", "is the it an"); got != 0 {
		t.Errorf("queries with only short terms should score 0, got %v", got)
	}
}

func TestCondense_TakesLeadingSentences(t *testing.T) {
	text := "First point here. Second point there. Third point everywhere."
	got := condense(text)
	want := "First point here. Second point there."
	if got != want {
		t.Errorf("condense = %q, want %q", got, want)
	}
}
