// ABOUTME: RetrievalOrchestrator fans out enhanced queries and ranks combined results
// ABOUTME: Hybrid scoring blends keyword overlap, vector confidence and content quality
package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/models"
)

// Enhancer expands a query into search strategies
type Enhancer interface {
	Enhance(ctx context.Context, query string, history []models.ChatTurn) []string
}

// Embedder converts texts into fixed-dimension vectors
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher performs owner-scoped nearest-neighbor search
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int, owner models.OwnerScope) ([]models.RAGResult, error)
}

// RankWeights are the hybrid scoring weights. They are tunable
// configuration, not derived constants.
type RankWeights struct {
	Keyword    float64
	Confidence float64
	Quality    float64
}

// DefaultRankWeights returns the standard weight split
func DefaultRankWeights() RankWeights {
	return RankWeights{Keyword: 0.4, Confidence: 0.4, Quality: 0.2}
}

// Orchestrator coordinates multi-strategy retrieval. Pure vector
// similarity can surface semantically-close but keyword-irrelevant
// passages; blending keyword overlap back in restores precision for
// exact-term queries like names and numbers.
type Orchestrator struct {
	enhancer    Enhancer
	embedder    Embedder
	store       Searcher
	weights     RankWeights
	concurrency int
	logger      *logrus.Logger
}

// NewOrchestrator wires the retrieval fan-out. concurrency bounds the
// number of simultaneous strategy searches.
func NewOrchestrator(enhancer Enhancer, embedder Embedder, store Searcher, weights RankWeights, concurrency int, logger *logrus.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 5
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{
		enhancer:    enhancer,
		embedder:    embedder,
		store:       store,
		weights:     weights,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Retrieve runs every enhancement strategy against the store,
// deduplicates by chunk id (first occurrence wins, so the literal query
// keeps priority), ranks by the hybrid score and returns the top k.
// Strategy searches run concurrently; ranking, not arrival order,
// determines the final order.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, history []models.ChatTurn, k int, owner models.OwnerScope) ([]models.RAGResult, error) {
	if k <= 0 {
		k = 5
	}

	strategies := []string{query}
	if o.enhancer != nil {
		strategies = o.enhancer.Enhance(ctx, query, history)
	}

	perStrategy := make([][]models.RAGResult, len(strategies))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, strategy := range strategies {
		wg.Add(1)
		go func(i int, strategy string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vectors, err := o.embedder.Embed(ctx, []string{strategy})
			if err != nil || len(vectors) != 1 {
				o.logger.WithFields(logrus.Fields{
					"operation": "retrieve",
					"strategy":  i,
					"error":     errString(err),
				}).Warn("strategy embedding failed, skipping strategy")
				return
			}

			results, err := o.store.Search(ctx, vectors[0], k, owner)
			if err != nil {
				o.logger.WithFields(logrus.Fields{
					"operation": "retrieve",
					"strategy":  i,
					"error":     err.Error(),
				}).Warn("strategy search failed, skipping strategy")
				return
			}
			perStrategy[i] = results
		}(i, strategy)
	}
	wg.Wait()

	// Dedupe in strategy order so earlier strategies take precedence
	var combined []models.RAGResult
	seen := make(map[string]bool)
	for _, results := range perStrategy {
		for _, r := range results {
			if r.Metadata.ChunkID != "" && seen[r.Metadata.ChunkID] {
				continue
			}
			seen[r.Metadata.ChunkID] = true
			combined = append(combined, r)
		}
	}

	ranked := o.rank(query, combined)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// rank sorts candidates by the weighted hybrid score, descending.
// The sort is stable so equal scores keep dedup order.
func (o *Orchestrator) rank(query string, candidates []models.RAGResult) []models.RAGResult {
	type scored struct {
		result models.RAGResult
		score  float64
	}

	scoredResults := make([]scored, len(candidates))
	for i, c := range candidates {
		scoredResults[i] = scored{result: c, score: o.combinedScore(query, c)}
	}

	sort.SliceStable(scoredResults, func(i, j int) bool {
		return scoredResults[i].score > scoredResults[j].score
	})

	out := make([]models.RAGResult, len(scoredResults))
	for i, s := range scoredResults {
		out[i] = s.result
	}
	return out
}

func (o *Orchestrator) combinedScore(query string, r models.RAGResult) float64 {
	return o.weights.Keyword*KeywordOverlap(query, r.PageContent) +
		o.weights.Confidence*confidence(r) +
		o.weights.Quality*contentQuality(r.PageContent)
}

// KeywordOverlap returns the fraction of query terms longer than two
// characters literally present in the candidate text
func KeywordOverlap(query, content string) float64 {
	lowerContent := strings.ToLower(content)
	terms := 0
	matches := 0
	for _, term := range strings.Fields(strings.ToLower(query)) {
		term = strings.Trim(term, ".,!?;:\"'()")
		if len(term) <= 2 {
			continue
		}
		terms++
		if strings.Contains(lowerContent, term) {
			matches++
		}
	}
	if terms == 0 {
		return 0
	}
	return float64(matches) / float64(terms)
}

// confidence is the vector similarity from the store, defaulting to 0.5
// when the store supplied none
func confidence(r models.RAGResult) float64 {
	if r.Metadata.Score <= 0 {
		return 0.5
	}
	return r.Metadata.Score
}

// contentQuality favors substantial passages, saturating at 1000 chars
func contentQuality(content string) float64 {
	q := float64(len(content)) / 1000
	if q > 1 {
		return 1
	}
	return q
}

func errString(err error) string {
	if err == nil {
		return "short embed result"
	}
	return err.Error()
}
