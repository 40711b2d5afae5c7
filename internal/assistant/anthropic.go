package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type anthropicClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newAnthropicClient(cfg Config) (LLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	return &anthropicClient{
		httpClient:  newHTTPClient(cfg.Timeout),
		baseURL:     strings.TrimRight(orDefault(cfg.BaseURL, "https://api.anthropic.com"), "/"),
		apiKey:      cfg.APIKey,
		model:       orDefault(cfg.Model, "claude-3-5-haiku-latest"),
		temperature: cfg.Temperature,
		maxTokens:   maxTokensOrDefault(cfg.MaxTokens),
	}, nil
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) Name() string {
	return string(ProviderAnthropic)
}

// Complete lifts system turns into the top-level system field; the messages
// API only accepts user and assistant roles.
func (c *anthropicClient) Complete(ctx context.Context, messages []Message) (string, error) {
	var system []string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"system":      strings.Join(system, "\n\n"),
		"messages":    turns,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	payload, err := post(ctx, c.httpClient, c.baseURL+"/v1/messages", body, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("anthropic: failed to parse response: %w", err)
	}
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: no content in response")
	}
	return text.String(), nil
}
