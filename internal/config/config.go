// ABOUTME: Centralized configuration for the citeseek retrieval engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the retrieval pipeline
type Config struct {
	// Qdrant settings
	QdrantURL     string
	QdrantAPIKey  string
	Collection    string
	QdrantTimeout time.Duration

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Vector settings
	VectorDimension int

	// Chunking settings
	ChunkSize    int
	ChunkOverlap int

	// Embedding settings
	EmbedBatchSize int

	// Retrieval settings
	MaxStrategies     int
	SearchConcurrency int
	IngestConcurrency int
	KeywordWeight     float64
	ConfidenceWeight  float64
	QualityWeight     float64

	// Synthesis settings
	MaxContextLength int

	// Registry settings
	CharmHost   string
	CharmDBName string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		QdrantURL:         getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		Collection:        getEnv("QDRANT_COLLECTION", "citeseek"),
		QdrantTimeout:     getEnvDuration("QDRANT_TIMEOUT", 30*time.Second),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		ChatModel:         getEnv("CITESEEK_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:    getEnv("CITESEEK_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:           getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension:   getEnvInt("VECTOR_DIMENSION", 1536),
		ChunkSize:         getEnvInt("CITESEEK_CHUNK_SIZE", 1000),
		ChunkOverlap:      getEnvInt("CITESEEK_CHUNK_OVERLAP", 200),
		EmbedBatchSize:    getEnvInt("CITESEEK_EMBED_BATCH", 10),
		MaxStrategies:     getEnvInt("CITESEEK_MAX_STRATEGIES", 5),
		SearchConcurrency: getEnvInt("CITESEEK_SEARCH_CONCURRENCY", 5),
		IngestConcurrency: getEnvInt("CITESEEK_INGEST_CONCURRENCY", 3),
		KeywordWeight:     getEnvFloat("CITESEEK_KEYWORD_WEIGHT", 0.4),
		ConfidenceWeight:  getEnvFloat("CITESEEK_CONFIDENCE_WEIGHT", 0.4),
		QualityWeight:     getEnvFloat("CITESEEK_QUALITY_WEIGHT", 0.2),
		MaxContextLength:  getEnvInt("CITESEEK_MAX_CONTEXT", 2000),
		CharmHost:         getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:       getEnv("CHARM_DB", "citeseek"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CITESEEK_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CITESEEK_CHUNK_OVERLAP must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"CITESEEK_KEYWORD_WEIGHT", c.KeywordWeight},
		{"CITESEEK_CONFIDENCE_WEIGHT", c.ConfidenceWeight},
		{"CITESEEK_QUALITY_WEIGHT", c.QualityWeight},
	} {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be 0-1, got %f", w.name, w.value)
		}
	}
	if c.MaxStrategies < 1 {
		return fmt.Errorf("CITESEEK_MAX_STRATEGIES must be at least 1, got %d", c.MaxStrategies)
	}
	return nil
}

// getEnv returns env var value or default
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns env var as int or default
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvFloat returns env var as float64 or default
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvDuration returns env var as duration or default
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
