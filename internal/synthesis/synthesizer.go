// ABOUTME: ContextSynthesizer rewrites retrieved chunks into focused answer context
// ABOUTME: Falls back to raw concatenation when the LLM rewrite is unavailable
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/models"
)

const synthesisSystemPrompt = `You rewrite retrieved document excerpts into a focused context for answering a question. Keep only material relevant to the question, preserve exact figures and names, and do not invent facts not present in the excerpts. Respond with the rewritten context only.`

const summarySystemPrompt = `You summarize an answer context in one or two sentences. State only what the context says, preserve exact figures and names, and do not invent facts. Respond with the summary only.`

const (
	maxSourceLength  = 4000
	maxContextLength = 2000
)

// Completer produces a chat completion for a system/user prompt pair
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error)
}

// Synthesizer condenses retrieved chunks into answer-ready context
type Synthesizer struct {
	completer Completer
	maxLength int
	logger    *logrus.Logger
}

// NewSynthesizer builds a synthesizer. maxLength bounds the rewritten
// context; values below 1 use the default.
func NewSynthesizer(completer Completer, maxLength int, logger *logrus.Logger) *Synthesizer {
	if maxLength < 1 {
		maxLength = maxContextLength
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Synthesizer{completer: completer, maxLength: maxLength, logger: logger}
}

// Synthesize rewrites the chunk contents around the query and asks the
// model for a short summary of the result. When either completion fails
// the mechanical fallback is used instead, so downstream answering
// still has source material to work with. The relevance score is
// computed locally from keyword coverage, never by the model, so it
// stays comparable across calls.
func (s *Synthesizer) Synthesize(ctx context.Context, chunks []string, query string) models.ContextRewriteResult {
	raw := joinChunks(chunks, maxSourceLength)
	if raw == "" {
		return models.ContextRewriteResult{}
	}

	rewritten := s.rewrite(ctx, raw, query)
	if len(rewritten) > s.maxLength {
		rewritten = truncateAtRune(rewritten, s.maxLength)
	}

	return models.ContextRewriteResult{
		RewrittenContext: rewritten,
		RelevanceScore:   RelevanceScore(query, rewritten),
		CondensedSummary: s.summarize(ctx, rewritten, query),
	}
}

func (s *Synthesizer) rewrite(ctx context.Context, raw, query string) string {
	if s.completer == nil {
		return raw
	}
	prompt := fmt.Sprintf("Question: %s\n\nExcerpts:\n%s", query, raw)
	out, err := s.completer.Complete(ctx, synthesisSystemPrompt, prompt, 0.3, 800)
	if err != nil || strings.TrimSpace(out) == "" {
		s.logger.WithFields(logrus.Fields{
			"operation": "synthesize",
			"query_len": len(query),
			"error":     errString(err),
		}).Warn("context rewrite failed, using raw concatenation")
		return raw
	}
	return strings.TrimSpace(out)
}

// summarize asks the model for a one-to-two sentence summary of the
// rewritten context. It degrades the same way as rewrite: on any
// failure the summary is condensed mechanically from the context.
func (s *Synthesizer) summarize(ctx context.Context, rewritten, query string) string {
	if s.completer == nil {
		return condense(rewritten)
	}
	prompt := fmt.Sprintf("Question: %s\n\nContext:\n%s", query, rewritten)
	out, err := s.completer.Complete(ctx, summarySystemPrompt, prompt, 0.3, 120)
	if err != nil || strings.TrimSpace(out) == "" {
		s.logger.WithFields(logrus.Fields{
			"operation": "summarize",
			"query_len": len(query),
			"error":     errString(err),
		}).Warn("summary completion failed, condensing locally")
		return condense(rewritten)
	}
	return strings.TrimSpace(out)
}

// joinChunks concatenates chunk texts with separators, truncating the
// combined source at limit characters
func joinChunks(chunks []string, limit int) string {
	var b strings.Builder
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(c)
		if b.Len() >= limit {
			break
		}
	}
	out := b.String()
	if len(out) > limit {
		out = truncateAtRune(out, limit)
	}
	return out
}

// truncateAtRune cuts s at limit bytes, backing up so the cut never
// splits a multibyte rune
func truncateAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// RelevanceScore is the fraction of query keywords longer than three
// characters that appear in the text. Deterministic by construction.
func RelevanceScore(query, text string) float64 {
	lowerText := strings.ToLower(text)
	terms := 0
	matches := 0
	for _, term := range strings.Fields(strings.ToLower(query)) {
		term = strings.Trim(term, ".,!?;:\"'()")
		if len(term) <= 3 {
			continue
		}
		terms++
		if strings.Contains(lowerText, term) {
			matches++
		}
	}
	if terms == 0 {
		return 0
	}
	return float64(matches) / float64(terms)
}

// condense takes the first two sentences as a short summary line
func condense(text string) string {
	const maxSummary = 300
	sentences := 0
	for i := 0; i < len(text)-1; i++ {
		if (text[i] == '.' || text[i] == '!' || text[i] == '?') && text[i+1] == ' ' {
			sentences++
			if sentences == 2 {
				return strings.TrimSpace(text[:i+1])
			}
		}
	}
	if len(text) > maxSummary {
		return truncateAtRune(text, maxSummary)
	}
	return text
}

func errString(err error) string {
	if err == nil {
		return "empty completion"
	}
	return err.Error()
}
