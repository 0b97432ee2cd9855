// ABOUTME: Tests for multi-strategy retrieval, deduplication and hybrid ranking
// ABOUTME: Uses fakes for the enhancer, embedder and vector store
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/citeseek/citeseek/internal/models"
)

type fakeEnhancer struct {
	strategies []string
}

func (f *fakeEnhancer) Enhance(_ context.Context, query string, _ []models.ChatTurn) []string {
	if f.strategies == nil {
		return []string{query}
	}
	return f.strategies
}

// fakeEmbedder encodes the strategy index into the first vector element
// so the fake store can tell strategies apart
type fakeEmbedder struct {
	index   map[string]float32
	failOn  string
	callErr error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 1 && texts[0] == f.failOn {
		return nil, errors.New("embedding provider down")
	}
	if f.callErr != nil {
		return nil, f.callErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{f.index[t], 0, 0}
	}
	return out, nil
}

type fakeStore struct {
	byStrategy map[float32][]models.RAGResult
	err        error
}

func (f *fakeStore) Search(_ context.Context, vector []float32, _ int, _ models.OwnerScope) ([]models.RAGResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byStrategy[vector[0]], nil
}

func result(chunkID, content string, score float64) models.RAGResult {
	return models.RAGResult{
		PageContent: content,
		Metadata: models.RAGMetadata{
			ChunkID:  chunkID,
			FileName: "report.pdf",
			Score:    score,
		},
	}
}

func newTestOrchestrator(enh Enhancer, emb Embedder, store Searcher) *Orchestrator {
	return NewOrchestrator(enh, emb, store, DefaultRankWeights(), 5, nil)
}

func TestRetrieve_DeduplicatesByChunkID(t *testing.T) {
	enh := &fakeEnhancer{strategies: []string{"original", "rewrite"}}
	emb := &fakeEmbedder{index: map[string]float32{"original": 1, "rewrite": 2}}
	store := &fakeStore{byStrategy: map[float32][]models.RAGResult{
		1: {result("c1", "alpha content", 0.9), result("c2", "beta content", 0.8)},
		2: {result("c1", "alpha content", 0.7), result("c3", "gamma content", 0.6)},
	}}

	results, err := newTestOrchestrator(enh, emb, store).Retrieve(context.Background(), "original", nil, 10, models.OwnerScope{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 unique chunks, got %d", len(results))
	}
	seen := map[string]int{}
	for _, r := range results {
		seen[r.Metadata.ChunkID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("chunk %s appeared %d times", id, n)
		}
	}
}

func TestRetrieve_KeywordMatchOutranksSimilarityAlone(t *testing.T) {
	query := "quarterly revenue figures"
	matching := result("c1", "The quarterly revenue figures exceeded projections.", 0.3)
	unrelated := result("c2", "The weather in spring was unusually mild this year.", 0.9)

	enh := &fakeEnhancer{strategies: []string{query}}
	emb := &fakeEmbedder{index: map[string]float32{query: 1}}
	store := &fakeStore{byStrategy: map[float32][]models.RAGResult{
		1: {unrelated, matching},
	}}

	results, err := newTestOrchestrator(enh, emb, store).Retrieve(context.Background(), query, nil, 2, models.OwnerScope{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if results[0].Metadata.ChunkID != "c1" {
		t.Errorf("expected keyword-matching chunk first, got %s", results[0].Metadata.ChunkID)
	}
}

func TestRetrieve_TruncatesToK(t *testing.T) {
	var many []models.RAGResult
	for i := 0; i < 8; i++ {
		many = append(many, result(fmt.Sprintf("c%d", i), "content body text", 0.5))
	}
	enh := &fakeEnhancer{strategies: []string{"q"}}
	emb := &fakeEmbedder{index: map[string]float32{"q": 1}}
	store := &fakeStore{byStrategy: map[float32][]models.RAGResult{1: many}}

	results, err := newTestOrchestrator(enh, emb, store).Retrieve(context.Background(), "q", nil, 3, models.OwnerScope{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected k=3 results, got %d", len(results))
	}
}

func TestRetrieve_SkipsFailedStrategy(t *testing.T) {
	enh := &fakeEnhancer{strategies: []string{"good", "bad"}}
	emb := &fakeEmbedder{index: map[string]float32{"good": 1}, failOn: "bad"}
	store := &fakeStore{byStrategy: map[float32][]models.RAGResult{
		1: {result("c1", "alpha content", 0.9)},
	}}

	results, err := newTestOrchestrator(enh, emb, store).Retrieve(context.Background(), "good", nil, 5, models.OwnerScope{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected surviving strategy results, got %d", len(results))
	}
}

func TestRetrieve_StrategyOrderDoesNotChangeRanking(t *testing.T) {
	content := "The quarterly revenue figures exceeded projections this year."
	emb := &fakeEmbedder{index: map[string]float32{"original": 1, "rewrite": 2, "expanded": 3}}
	store := &fakeStore{byStrategy: map[float32][]models.RAGResult{
		1: {result("c1", content, 0.9), result("c2", content, 0.7)},
		2: {result("c2", content, 0.7), result("c3", content, 0.5)},
		3: {result("c4", content, 0.3)},
	}}

	forward := &fakeEnhancer{strategies: []string{"original", "rewrite", "expanded"}}
	reversed := &fakeEnhancer{strategies: []string{"expanded", "rewrite", "original"}}

	first, err := newTestOrchestrator(forward, emb, store).Retrieve(context.Background(), "revenue figures", nil, 3, models.OwnerScope{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	second, err := newTestOrchestrator(reversed, emb, store).Retrieve(context.Background(), "revenue figures", nil, 3, models.OwnerScope{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Metadata.ChunkID != second[i].Metadata.ChunkID {
			t.Errorf("rank %d differs: %s vs %s", i, first[i].Metadata.ChunkID, second[i].Metadata.ChunkID)
		}
	}
}

func TestRetrieve_AllStrategiesFailedReturnsEmpty(t *testing.T) {
	enh := &fakeEnhancer{strategies: []string{"q"}}
	emb := &fakeEmbedder{index: map[string]float32{"q": 1}}
	store := &fakeStore{err: errors.New("connection refused")}

	results, err := newTestOrchestrator(enh, emb, store).Retrieve(context.Background(), "q", nil, 5, models.OwnerScope{})
	if err != nil {
		t.Fatalf("degraded retrieval should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestKeywordOverlap(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		content string
		want    float64
	}{
		{"full match", "revenue growth", "Revenue growth was strong.", 1.0},
		{"half match", "revenue decline", "Revenue was strong.", 0.5},
		{"no match", "revenue growth", "Unrelated text entirely.", 0.0},
		{"short terms ignored", "is it on", "is it on", 0.0},
		{"punctuation stripped", "revenue?", "strong revenue numbers", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeywordOverlap(tt.query, tt.content)
			if got != tt.want {
				t.Errorf("KeywordOverlap(%q, %q) = %v, want %v", tt.query, tt.content, got, tt.want)
			}
		})
	}
}

func TestConfidence_DefaultsWhenAbsent(t *testing.T) {
	r := result("c1", "text", 0)
	if got := confidence(r); got != 0.5 {
		t.Errorf("expected default confidence 0.5, got %v", got)
	}
	r = result("c2", "text", 0.8)
	if got := confidence(r); got != 0.8 {
		t.Errorf("expected stored confidence 0.8, got %v", got)
	}
}
