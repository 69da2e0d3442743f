package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
		LLM:       LLMConfig{Model: "gpt-4o-mini"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingEmbeddingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_MissingLLMModel(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing llm model")
	}
}

func TestValidate_ThresholdTooHigh(t *testing.T) {
	cfg := validConfig()
	cfg.Similarity.Threshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Corpus.Path != "question.json" {
		t.Errorf("expected Corpus.Path='question.json', got %q", cfg.Corpus.Path)
	}
	if cfg.Cache.TTLHours != 168 {
		t.Errorf("expected TTLHours=168, got %d", cfg.Cache.TTLHours)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected Provider='openai', got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.MaxBatchSize != 64 {
		t.Errorf("expected MaxBatchSize=64, got %d", cfg.Embedding.MaxBatchSize)
	}
	if cfg.LLM.ValidationTemperature != 0.1 {
		t.Errorf("expected ValidationTemperature=0.1, got %g", cfg.LLM.ValidationTemperature)
	}
	if cfg.LLM.RefinementTemperature != 0.3 {
		t.Errorf("expected RefinementTemperature=0.3, got %g", cfg.LLM.RefinementTemperature)
	}
	if cfg.Similarity.Threshold != 0.8 {
		t.Errorf("expected Threshold=0.8, got %g", cfg.Similarity.Threshold)
	}
	if cfg.Similarity.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Similarity.TopK)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Corpus:     CorpusConfig{Path: "data/questions.json"},
		Similarity: SimilarityConfig{Threshold: 0.9, TopK: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Corpus.Path != "data/questions.json" {
		t.Errorf("expected Corpus.Path preserved, got %q", cfg.Corpus.Path)
	}
	if cfg.Similarity.Threshold != 0.9 {
		t.Errorf("expected Threshold=0.9, got %g", cfg.Similarity.Threshold)
	}
	if cfg.Similarity.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Similarity.TopK)
	}
}

func TestApplyDefaults_StripsEmptyCacheAddrs(t *testing.T) {
	cfg := Config{Cache: CacheConfig{Addrs: []string{"", "localhost:6379", ""}}}
	cfg.ApplyDefaults()

	if len(cfg.Cache.Addrs) != 1 || cfg.Cache.Addrs[0] != "localhost:6379" {
		t.Errorf("expected empty addrs stripped, got %v", cfg.Cache.Addrs)
	}
}

func TestCacheConfig_Enabled(t *testing.T) {
	if (CacheConfig{}).Enabled() {
		t.Error("cache with no addrs should be disabled")
	}
	if !(CacheConfig{Addrs: []string{"localhost:6379"}}).Enabled() {
		t.Error("cache with addrs should be enabled")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MATHDEX_TEST_KEY", "sk-test")

	in := []byte("api_key: ${MATHDEX_TEST_KEY}\nmodel: ${MATHDEX_TEST_MODEL:-gpt-4o-mini}\n")
	out := string(expandEnvVars(in))

	want := "api_key: sk-test\nmodel: gpt-4o-mini\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := []byte(`
http:
  port: 9999
embedding:
  model: text-embedding-3-small
llm:
  model: gpt-4o-mini
similarity:
  threshold: 0.75
`)
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.HTTP.Port)
	}
	if cfg.Similarity.Threshold != 0.75 {
		t.Errorf("expected threshold 0.75, got %g", cfg.Similarity.Threshold)
	}
	// Defaults fill in the rest
	if cfg.Similarity.TopK != 10 {
		t.Errorf("expected default TopK=10, got %d", cfg.Similarity.TopK)
	}
}
