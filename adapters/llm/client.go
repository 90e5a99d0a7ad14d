package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the minimal chat-completion surface the answer service
// needs.
type Client interface {
	ChatCompletion(ctx context.Context, model, system, user string) (string, error)
}

// Config holds OpenRouter client settings
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// OpenRouterClient implements Client against the OpenRouter
// chat-completions API
type OpenRouterClient struct {
	config Config
	http   *http.Client
}

// NewOpenRouterClient creates an OpenRouter client from config
func NewOpenRouterClient(config Config) *OpenRouterClient {
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://openrouter.ai/api/v1"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	return &OpenRouterClient{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
}

func (c *OpenRouterClient) ChatCompletion(ctx context.Context, model, system, user string) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("missing OpenRouter API key")
	}
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("missing model")
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://datasight.local")
	httpReq.Header.Set("X-Title", "Data Analysis Platform")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openrouter http %d: %s", resp.StatusCode, string(respRaw))
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type respBody struct {
		Choices []choice `json:"choices"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("openrouter response missing choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

// MockClient is a canned-response client for tests
type MockClient struct {
	Response string
	Error    error

	// LastModel and LastPrompt record the most recent call
	LastModel  string
	LastPrompt string
}

func (m *MockClient) ChatCompletion(ctx context.Context, model, system, user string) (string, error) {
	m.LastModel = model
	m.LastPrompt = user
	if m.Error != nil {
		return "", m.Error
	}
	return m.Response, nil
}
