// ABOUTME: Shared application wiring for CLI commands
// ABOUTME: Builds the ingest and retrieval pipelines from environment configuration
package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/citeseek/citeseek/internal/chunker"
	"github.com/citeseek/citeseek/internal/citation"
	"github.com/citeseek/citeseek/internal/config"
	"github.com/citeseek/citeseek/internal/embedding"
	"github.com/citeseek/citeseek/internal/enhancer"
	"github.com/citeseek/citeseek/internal/extract"
	"github.com/citeseek/citeseek/internal/ingest"
	"github.com/citeseek/citeseek/internal/llm"
	"github.com/citeseek/citeseek/internal/models"
	"github.com/citeseek/citeseek/internal/registry"
	"github.com/citeseek/citeseek/internal/retrieval"
	"github.com/citeseek/citeseek/internal/synthesis"
	"github.com/citeseek/citeseek/internal/vectorstore"
)

// app holds the wired components a command needs
type app struct {
	cfg      *config.Config
	store    *vectorstore.FailoverStore
	ingestor *ingest.Ingestor
	pipeline *retrieval.Pipeline
	registry *registry.Registry
}

// ownerFlags are the shared --user and --session flags
type ownerFlags struct {
	userID    string
	sessionID string
}

func (o *ownerFlags) scope() models.OwnerScope {
	return models.OwnerScope{UserID: o.userID, SessionID: o.sessionID}
}

// buildApp constructs the full pipeline from environment config.
// withRegistry controls whether the charm document registry is opened;
// commands that never touch metadata skip it to avoid the connection.
func buildApp(ctx context.Context, withRegistry bool) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := logrus.StandardLogger()

	var client *llm.Client
	if cfg.OpenAIKey != "" {
		client, err = llm.NewClient(&llm.ClientConfig{
			APIKey:         cfg.OpenAIKey,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: llm.EmbeddingModel(cfg.EmbeddingModel),
			MaxRetries:     cfg.MaxRetries,
			RetryDelay:     cfg.RetryDelay,
			Timeout:        cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing OpenAI client: %w", err)
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, embeddings fall back to random vectors and query enhancement is disabled")
	}

	var provider embedding.Provider
	if client != nil {
		provider = client
	}
	embedder := embedding.NewService(provider, embedding.Options{
		Dimension: cfg.VectorDimension,
		BatchSize: cfg.EmbedBatchSize,
	}, nil, logger)

	// Qdrant is the primary store; search and writes degrade to the
	// in-memory fallback when it is unreachable
	var primary vectorstore.Store
	qdrant, err := vectorstore.NewQdrantStore(&vectorstore.QdrantConfig{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.Collection,
		Dimension:  cfg.VectorDimension,
		Timeout:    cfg.QdrantTimeout,
	}, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Warn("qdrant unavailable, using in-memory store only")
	} else {
		if err := qdrant.EnsureCollection(ctx); err != nil {
			logger.WithField("error", err.Error()).Warn("could not ensure qdrant collection, continuing degraded")
		}
		primary = qdrant
	}
	store := vectorstore.NewFailoverStore(primary, vectorstore.NewMemoryStore(), logger)

	var reg *registry.Registry
	if withRegistry {
		reg, err = registry.Open(registry.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: true,
		})
		if err != nil {
			logger.WithField("error", err.Error()).Warn("document registry unavailable, continuing without metadata tracking")
			reg = nil
		}
	}

	ch := chunker.New(chunker.Options{
		ChunkSize:         cfg.ChunkSize,
		ChunkOverlap:      cfg.ChunkOverlap,
		PreserveStructure: true,
	})

	var ingestRecorder ingest.Recorder
	if reg != nil {
		ingestRecorder = reg
	}
	ingestor := ingest.New(extract.NewExtractor(), ch, embedder, store, ingestRecorder, cfg.IngestConcurrency, logger)

	var completer enhancer.Completer
	if client != nil {
		completer = client
	}
	enh := enhancer.New(completer, cfg.MaxStrategies, logger)

	orch := retrieval.NewOrchestrator(enh, embedder, store, retrieval.RankWeights{
		Keyword:    cfg.KeywordWeight,
		Confidence: cfg.ConfidenceWeight,
		Quality:    cfg.QualityWeight,
	}, cfg.SearchConcurrency, logger)

	var synthCompleter synthesis.Completer
	if client != nil {
		synthCompleter = client
	}
	synth := synthesis.NewSynthesizer(synthCompleter, cfg.MaxContextLength, logger)

	pipeline := retrieval.NewPipeline(orch, synth, citation.NewBuilder(), logger)

	return &app{
		cfg:      cfg,
		store:    store,
		ingestor: ingestor,
		pipeline: pipeline,
		registry: reg,
	}, nil
}
