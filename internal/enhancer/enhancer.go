// ABOUTME: QueryEnhancer expands one query into several search strategies
// ABOUTME: HyDE, refined sub-queries and history-aware expansion, all degrade-to-original
package enhancer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/models"
)

const (
	hydeSystemPrompt = `You are a document analysis assistant. Write a plausible, detailed answer to the user's question as if you had the source documents in front of you. Aim for 200-300 words. Write only the answer, no preamble.`

	refineSystemPrompt = `You are a search query assistant. Given a hypothetical answer to a question, derive 3 short search queries (5-10 words each) that would find passages supporting that answer. Return one query per line, no numbering, no extra text.`

	expandSystemPrompt = `You are a search query assistant. Given a question and recent conversation context, suggest 2-3 related search terms or phrasings that would surface relevant passages. Return one per line, no numbering, no extra text.`
)

// historyTurns is how many recent exchanges inform expansion
const historyTurns = 3

var lineMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// Completer runs one narrow prompt against a language model
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error)
}

// Enhancer builds the strategy list handed to the retrieval orchestrator
type Enhancer struct {
	completer     Completer
	maxStrategies int
	logger        *logrus.Logger
}

// New creates an Enhancer. maxStrategies caps the combined strategy list
// to bound retrieval cost.
func New(completer Completer, maxStrategies int, logger *logrus.Logger) *Enhancer {
	if maxStrategies < 1 {
		maxStrategies = 5
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Enhancer{completer: completer, maxStrategies: maxStrategies, logger: logger}
}

// Enhance expands the query into search strategies: the original query
// first, then the hypothetical document, refined sub-queries and
// history expansions, capped at the configured maximum. Enhancement is
// an accuracy optimization, never a hard dependency: every failure
// degrades to the original query alone.
func (e *Enhancer) Enhance(ctx context.Context, query string, history []models.ChatTurn) []string {
	strategies := []string{query}

	hyde := e.GenerateHyDE(ctx, query)
	if hyde.HypotheticalDocument != "" {
		strategies = append(strategies, hyde.HypotheticalDocument)
	}
	strategies = append(strategies, hyde.RefinedQueries...)
	strategies = append(strategies, e.Expand(ctx, query, history)...)

	strategies = dedupeStrings(strategies)
	if len(strategies) > e.maxStrategies {
		strategies = strategies[:e.maxStrategies]
	}
	return strategies
}

// GenerateHyDE asks the model for a plausible answer to the query, then
// derives short refined sub-queries from it. Both steps degrade to an
// empty expansion on any failure.
func (e *Enhancer) GenerateHyDE(ctx context.Context, query string) models.HyDEResult {
	result := models.HyDEResult{OriginalQuery: query}
	if e.completer == nil {
		return result
	}

	doc, err := e.completer.Complete(ctx, hydeSystemPrompt, query, 0.7, 500)
	if err != nil || strings.TrimSpace(doc) == "" {
		e.logger.WithFields(logrus.Fields{
			"operation": "hyde",
			"query_len": len(query),
			"error":     fmt.Sprintf("%v", err),
		}).Warn("hypothetical document generation failed, using original query")
		return result
	}
	result.HypotheticalDocument = strings.TrimSpace(doc)

	refined, err := e.completer.Complete(ctx, refineSystemPrompt, result.HypotheticalDocument, 0.3, 200)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"operation": "refine",
			"query_len": len(query),
			"error":     err.Error(),
		}).Warn("query refinement failed, keeping hypothetical document only")
		return result
	}
	result.RefinedQueries = parseLines(refined, 3)

	return result
}

// Expand derives related search terms from the query and the last few
// conversation turns. Degrades to no expansions on failure.
func (e *Enhancer) Expand(ctx context.Context, query string, history []models.ChatTurn) []string {
	if e.completer == nil {
		return nil
	}

	user := query
	if len(history) > 0 {
		start := len(history) - historyTurns
		if start < 0 {
			start = 0
		}
		var sb strings.Builder
		sb.WriteString("Recent conversation:\n")
		for _, turn := range history[start:] {
			sb.WriteString("User: " + turn.UserMessage + "\n")
			if turn.AIResponse != "" {
				sb.WriteString("Assistant: " + turn.AIResponse + "\n")
			}
		}
		sb.WriteString("\nQuestion: " + query)
		user = sb.String()
	}

	out, err := e.completer.Complete(ctx, expandSystemPrompt, user, 0.5, 150)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"operation": "expand",
			"query_len": len(query),
			"history":   len(history),
			"error":     err.Error(),
		}).Warn("query expansion failed, skipping expansions")
		return nil
	}
	return parseLines(out, 3)
}

// parseLines extracts up to max non-empty lines, stripping list markers
func parseLines(text string, max int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(lineMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) >= max {
			break
		}
	}
	return out
}

// dedupeStrings removes duplicates, keeping first occurrence
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
