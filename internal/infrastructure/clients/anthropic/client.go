package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
	"github.com/zatekoja/claim-appeal/backend/pkg/config"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	apiVersion       = "2023-06-01"
	providerName     = "anthropic"
	maxErrorBodySize = 4096
)

// Client implements TextGenerationProvider against the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Anthropic client.
func NewClient(cfg *config.GenerationConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt and returns the first text block of the reply.
func (c *Client) Generate(ctx context.Context, req *providers.GenerationRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: generation request is required", providers.ErrProviderFailure)
	}

	body, err := json.Marshal(messagesRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.SystemInstruction,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordGenerationMetric(ctx, providerName, req.Model, 0, time.Since(start), err)
		return "", fmt.Errorf("%w: anthropic request failed: %v", providers.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("anthropic request failed with status %d%s", resp.StatusCode, errorDetail(resp.Body))
		observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), statusErr)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", fmt.Errorf("%w: %w: %v", providers.ErrProviderFailure, providers.ErrProviderUnauthorized, statusErr)
		}
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, statusErr)
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), err)
		return "", fmt.Errorf("%w: failed to decode anthropic response: %v", providers.ErrProviderFailure, err)
	}

	var text string
	for _, block := range decoded.Content {
		if block.Type == "text" && block.Text != "" {
			text = block.Text
			break
		}
	}

	if strings.TrimSpace(text) == "" {
		err := errors.New("anthropic response missing text content")
		observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), err)
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, err)
	}

	observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), nil)
	return text, nil
}

// errorDetail extracts the provider's error message, if the body carries one.
func errorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return ": " + envelope.Error.Message
	}
	return ""
}
