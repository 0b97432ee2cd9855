// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.QdrantURL != "http://localhost:6333" {
		t.Errorf("QdrantURL = %s, want http://localhost:6333", cfg.QdrantURL)
	}
	if cfg.Collection != "citeseek" {
		t.Errorf("Collection = %s, want citeseek", cfg.Collection)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %s, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.VectorDimension != 1536 {
		t.Errorf("VectorDimension = %d, want 1536", cfg.VectorDimension)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %d, want 200", cfg.ChunkOverlap)
	}
	if cfg.KeywordWeight != 0.4 || cfg.ConfidenceWeight != 0.4 || cfg.QualityWeight != 0.2 {
		t.Errorf("weights = %f/%f/%f, want 0.4/0.4/0.2",
			cfg.KeywordWeight, cfg.ConfidenceWeight, cfg.QualityWeight)
	}
	if cfg.MaxStrategies != 5 {
		t.Errorf("MaxStrategies = %d, want 5", cfg.MaxStrategies)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	os.Setenv("QDRANT_URL", "http://qdrant.internal:6333")
	os.Setenv("QDRANT_COLLECTION", "research")
	os.Setenv("OPENAI_TIMEOUT", "60s")
	os.Setenv("OPENAI_MAX_RETRIES", "5")
	os.Setenv("VECTOR_DIMENSION", "3072")
	os.Setenv("CITESEEK_CHUNK_SIZE", "500")
	os.Setenv("CITESEEK_CHUNK_OVERLAP", "50")
	os.Setenv("CITESEEK_KEYWORD_WEIGHT", "0.6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.QdrantURL != "http://qdrant.internal:6333" {
		t.Errorf("QdrantURL = %s", cfg.QdrantURL)
	}
	if cfg.Collection != "research" {
		t.Errorf("Collection = %s", cfg.Collection)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.VectorDimension != 3072 {
		t.Errorf("VectorDimension = %d", cfg.VectorDimension)
	}
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.KeywordWeight != 0.6 {
		t.Errorf("KeywordWeight = %f", cfg.KeywordWeight)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dimension", func(c *Config) { c.VectorDimension = 0 }},
		{"negative dimension", func(c *Config) { c.VectorDimension = -1 }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"overlap >= chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }},
		{"weight above one", func(c *Config) { c.KeywordWeight = 1.5 }},
		{"negative weight", func(c *Config) { c.QualityWeight = -0.1 }},
		{"zero strategies", func(c *Config) { c.MaxStrategies = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("VECTOR_DIMENSION", "not-a-number")
	os.Setenv("OPENAI_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.VectorDimension != 1536 {
		t.Errorf("VectorDimension = %d, want default 1536", cfg.VectorDimension)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", cfg.Timeout)
	}
}
