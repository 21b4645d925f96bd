package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kumar-cmd/syngenta-ai/internal/config"
	"github.com/kumar-cmd/syngenta-ai/internal/httpx"
	"github.com/kumar-cmd/syngenta-ai/internal/llm"
)

// BedrockProvider fetches embeddings from the Lambda-fronted Bedrock
// endpoint, same envelope as the generation side but an embedding model id.
type BedrockProvider struct {
	url     string
	apiKey  string
	modelID string
	client  *httpx.Client
}

type bedrockEmbedRequest struct {
	APIKey  string `json:"api_key"`
	Prompt  string `json:"prompt"`
	ModelID string `json:"model_id"`
}

type bedrockEmbedResponse struct {
	Response struct {
		Embedding []float32 `json:"embedding"`
	} `json:"response"`
}

func NewBedrockProvider(cfg config.EmbeddingConfig) (*BedrockProvider, error) {
	url := cfg.BaseURL
	if url == "" {
		url = llm.DefaultBedrockURL
	}
	return &BedrockProvider{
		url:     url,
		apiKey:  cfg.APIKey,
		modelID: cfg.Model,
		client: httpx.New(httpx.Options{
			Timeout: 30 * time.Second,
			Retry:   2,
		}),
	}, nil
}

func (p *BedrockProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(bedrockEmbedRequest{
		APIKey:  p.apiKey,
		Prompt:  text,
		ModelID: p.modelID,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bedrock embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("bedrock embedding returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out bedrockEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode bedrock embedding response: %w", err)
	}
	if len(out.Response.Embedding) == 0 {
		return nil, fmt.Errorf("bedrock embedding response was empty")
	}
	return out.Response.Embedding, nil
}

func (p *BedrockProvider) GetProviderType() string { return "bedrock" }
