// ABOUTME: Pipeline composes retrieval, context synthesis and citation building
// ABOUTME: Produces the answer-ready context plus validated citations for a query
package retrieval

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/models"
)

// Synthesizer condenses retrieved chunks into answer context
type Synthesizer interface {
	Synthesize(ctx context.Context, chunks []string, query string) models.ContextRewriteResult
}

// CitationBuilder turns retrieval results into presentable citations
type CitationBuilder interface {
	Build(result models.RAGResult, query string) models.EnhancedCitation
	Validate(c models.EnhancedCitation) error
}

// Answer is the full response for one question
type Answer struct {
	ContextText    string                    `json:"contextText"`
	Summary        string                    `json:"summary,omitempty"`
	RelevanceScore float64                   `json:"relevanceScore"`
	Citations      []models.EnhancedCitation `json:"citations"`
	Results        []models.RAGResult        `json:"-"`
}

// Pipeline runs the retrieve-synthesize-cite sequence
type Pipeline struct {
	orchestrator *Orchestrator
	synthesizer  Synthesizer
	citations    CitationBuilder
	logger       *logrus.Logger
}

// NewPipeline wires the stages together
func NewPipeline(orchestrator *Orchestrator, synthesizer Synthesizer, citations CitationBuilder, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{
		orchestrator: orchestrator,
		synthesizer:  synthesizer,
		citations:    citations,
		logger:       logger,
	}
}

// Ask answers a question against the owner's documents. An empty
// corpus or zero retrieval hits yields an empty Answer, not an error.
// Citations that fail validation are dropped rather than surfaced.
func (p *Pipeline) Ask(ctx context.Context, query string, history []models.ChatTurn, k int, owner models.OwnerScope) (*Answer, error) {
	results, err := p.orchestrator.Retrieve(ctx, query, history, k, owner)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		p.logger.WithFields(logrus.Fields{
			"operation": "ask",
			"query_len": len(query),
		}).Debug("no results retrieved")
		return &Answer{Citations: []models.EnhancedCitation{}}, nil
	}

	chunks := make([]string, len(results))
	for i, r := range results {
		chunks[i] = r.PageContent
	}
	rewrite := p.synthesizer.Synthesize(ctx, chunks, query)

	citations := make([]models.EnhancedCitation, 0, len(results))
	for _, r := range results {
		c := p.citations.Build(r, query)
		if err := p.citations.Validate(c); err != nil {
			p.logger.WithFields(logrus.Fields{
				"operation": "ask",
				"chunk_id":  c.ID,
				"error":     err.Error(),
			}).Debug("dropping invalid citation")
			continue
		}
		citations = append(citations, c)
	}

	return &Answer{
		ContextText:    rewrite.RewrittenContext,
		Summary:        rewrite.CondensedSummary,
		RelevanceScore: rewrite.RelevanceScore,
		Citations:      citations,
		Results:        results,
	}, nil
}
