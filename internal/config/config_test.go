package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.CORSOrigin != "https://syngent-ai.vercel.app" {
		t.Errorf("unexpected cors origin: %q", cfg.Server.CORSOrigin)
	}
	if cfg.Server.SecretKey != "devkey" {
		t.Errorf("unexpected secret key default: %q", cfg.Server.SecretKey)
	}
	if cfg.VectorDB.Provider != "local" || cfg.VectorDB.Dir != "app/vector_store" {
		t.Errorf("unexpected vectordb defaults: %+v", cfg.VectorDB)
	}
	if cfg.LLM.Region != "us-east-1" {
		t.Errorf("unexpected region default: %q", cfg.LLM.Region)
	}
	if cfg.Query.TopK != 5 {
		t.Errorf("unexpected topK default: %d", cfg.Query.TopK)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  listen_addr: \":9000\"\nvectordb:\n  dir: from-file\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("VECTORDIR", "from-env")
	t.Setenv("BEDROCK_API_KEY", "key-123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("file value lost: %q", cfg.Server.ListenAddr)
	}
	if cfg.VectorDB.Dir != "from-env" {
		t.Errorf("env should override file, got %q", cfg.VectorDB.Dir)
	}
	if cfg.LLM.APIKey != "key-123" || cfg.Embedding.APIKey != "key-123" {
		t.Errorf("api key not applied to both providers: %q / %q", cfg.LLM.APIKey, cfg.Embedding.APIKey)
	}
}

func TestMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
