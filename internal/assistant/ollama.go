package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ollamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

func newOllamaClient(cfg Config) (LLM, error) {
	return &ollamaClient{
		httpClient:  newHTTPClient(cfg.Timeout),
		baseURL:     strings.TrimRight(orDefault(cfg.BaseURL, "http://localhost:11434"), "/"),
		model:       orDefault(cfg.Model, "llama3.1"),
		temperature: cfg.Temperature,
		maxTokens:   maxTokensOrDefault(cfg.MaxTokens),
	}, nil
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

func (c *ollamaClient) Name() string {
	return string(ProviderOllama)
}

func (c *ollamaClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:    c.model,
		Messages: messages,
		Format:   "json",
		Options:  ollamaOptions{Temperature: c.temperature, NumPredict: c.maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	payload, err := post(ctx, c.httpClient, c.baseURL+"/api/chat", body, nil)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}

	var resp ollamaResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("ollama: failed to parse response: %w", err)
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("ollama: no content in response")
	}
	return resp.Message.Content, nil
}
