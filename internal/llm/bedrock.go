package llm

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
)

// DefaultBedrockURL is the hosted Lambda front for Bedrock models used in
// non-production contexts when no endpoint is configured.
const DefaultBedrockURL = "https://quchnti6xu7yzw7hfzt5yjqtvi0kafsq.lambda-url.eu-central-1.on.aws/"

// BedrockProvider calls a Lambda-fronted Bedrock endpoint. The endpoint
// accepts a JSON envelope carrying the api key, prompt and model params
// and returns Anthropic-style content blocks.
type BedrockProvider struct {
	url         string
	apiKey      string
	modelID     string
	temperature float64
	maxTokens   int
	client      *httpx.Client
}

type bedrockRequest struct {
	APIKey      string             `json:"api_key"`
	Prompt      string             `json:"prompt"`
	ModelID     string             `json:"model_id"`
	ModelParams bedrockModelParams `json:"model_params"`
}

type bedrockModelParams struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type bedrockResponse struct {
	Response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"response"`
}

func NewBedrockProvider(cfg config.LLMConfig) (*BedrockProvider, error) {
	url := cfg.BaseURL
	if url == "" {
		url = DefaultBedrockURL
	}
	return &BedrockProvider{
		url:         url,
		apiKey:      cfg.APIKey,
		modelID:     cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client: httpx.New(httpx.Options{
			Timeout: 60 * time.Second,
			Retry:   2,
		}),
	}, nil
}

func (p *BedrockProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	payload := bedrockRequest{
		APIKey:  p.apiKey,
		Prompt:  prompt,
		ModelID: p.modelID,
		ModelParams: bedrockModelParams{
			MaxTokens:   p.maxTokens,
			Temperature: p.temperature,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bedrock request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("bedrock returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out bedrockResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode bedrock response: %w", err)
	}
	if len(out.Response.Content) == 0 {
		return "", fmt.Errorf("bedrock response contained no content blocks")
	}
	return out.Response.Content[0].Text, nil
}

func (p *BedrockProvider) GetProviderType() string { return "bedrock" }
