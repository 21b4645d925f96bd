package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kumar-cmd/syngenta-ai/internal/config"
)

func TestBedrockGetEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req bedrockEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.ModelID != "amazon-embedding-v2" {
			t.Errorf("unexpected model id: %q", req.ModelID)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{"embedding": []float32{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	p, err := NewBedrockProvider(config.EmbeddingConfig{
		APIKey:  "key-123",
		BaseURL: srv.URL,
		Model:   "amazon-embedding-v2",
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	vec, err := p.GetEmbedding(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestBedrockEmptyEmbeddingIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"response": map[string]any{"embedding": []float32{}}})
	}))
	defer srv.Close()

	p, err := NewBedrockProvider(config.EmbeddingConfig{BaseURL: srv.URL, Model: "amazon-embedding-v2"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := p.GetEmbedding(context.Background(), "text"); err == nil {
		t.Fatal("expected error on empty embedding")
	}
}
