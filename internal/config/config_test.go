package config

import "testing"

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("CHUNK_OVERLAP", "")
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("GEN_RETRY_MAX_ATTEMPTS", "")

	cfg := Load()
	if cfg.ChunkSize != 800 {
		t.Fatalf("expected default chunk size 800, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 80 {
		t.Fatalf("expected default chunk overlap 80, got %d", cfg.ChunkOverlap)
	}
	if cfg.RAGTopK != 5 {
		t.Fatalf("expected default top-k 5, got %d", cfg.RAGTopK)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected default retry attempts 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.CORSOrigin != "http://localhost:3000" {
		t.Fatalf("expected default cors origin, got %q", cfg.CORSOrigin)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("LLAMA_TEMPERATURE", "0.7")
	t.Setenv("API_RATE_LIMIT_RPS", "25")

	cfg := Load()
	if cfg.ChunkSize != 1000 {
		t.Fatalf("expected chunk size 1000, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 100 {
		t.Fatalf("expected chunk overlap 100, got %d", cfg.ChunkOverlap)
	}
	if cfg.RAGTopK != 8 {
		t.Fatalf("expected top-k 8, got %d", cfg.RAGTopK)
	}
	if cfg.LlamaTemperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", cfg.LlamaTemperature)
	}
	if cfg.APIRateLimitRPS != 25 {
		t.Fatalf("expected rate limit 25, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	cfg := Load()
	if cfg.ChunkSize != 800 {
		t.Fatalf("expected fallback chunk size 800, got %d", cfg.ChunkSize)
	}
}
