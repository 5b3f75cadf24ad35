// Package openai is a chat-completions client for the coach.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/logger"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	apiKey     string
	baseURL    string
	config     *config.OpenAIConfig
	logger     *logger.Log
	httpClient *http.Client
}

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse keeps only what Generate reads.
type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		config:     cfg,
		logger:     logger.New(),
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}, nil
}

// call sends body (nil for none) to path. Non-200 answers are errors.
func (c *Client) call(ctx context.Context, method, path string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug(fmt.Sprintf("OpenAI %s returned %d: %s", path, resp.StatusCode, data))
		return nil, fmt.Errorf("openai API error: status %d", resp.StatusCode)
	}
	return data, nil
}

func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	var messages []Message
	if strings.TrimSpace(system) != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	data, err := c.call(ctx, http.MethodPost, "/chat/completions", ChatRequest{
		Model:          c.config.Model,
		Messages:       messages,
		Temperature:    0.6,
		MaxTokens:      c.config.MaxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		c.logger.WithError(err).Error("Coach request to OpenAI failed")
		return "", err
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if chat.Error != nil {
		return "", fmt.Errorf("openai API error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return chat.Choices[0].Message.Content, nil
}

// IsModelAvailable checks the configured model against GET /models.
func (c *Client) IsModelAvailable(ctx context.Context) error {
	data, err := c.call(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to unmarshal models response: %w", err)
	}
	for _, m := range list.Data {
		if m.ID == c.config.Model {
			return nil
		}
	}
	return fmt.Errorf("model %s not offered by %s", c.config.Model, c.baseURL)
}
