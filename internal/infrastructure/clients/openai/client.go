package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
	"github.com/zatekoja/claim-appeal/backend/pkg/config"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	providerName   = "openai"
)

// Client implements TextGenerationProvider against the OpenAI Responses API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.GenerationConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
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

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// Generate sends the prompt and returns the first output_text of the reply.
func (c *Client) Generate(ctx context.Context, req *providers.GenerationRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: generation request is required", providers.ErrProviderFailure)
	}

	payload := map[string]interface{}{
		"model": req.Model,
		"input": []map[string]string{
			{"role": "system", "content": req.SystemInstruction},
			{"role": "user", "content": req.Prompt},
		},
		"temperature":       req.Temperature,
		"max_output_tokens": req.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordGenerationMetric(ctx, providerName, req.Model, 0, time.Since(start), err)
		return "", fmt.Errorf("%w: openai request failed: %v", providers.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("openai request failed with status %d", resp.StatusCode)
		observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), statusErr)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", fmt.Errorf("%w: %w: %v", providers.ErrProviderFailure, providers.ErrProviderUnauthorized, statusErr)
		}
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, statusErr)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), err)
		return "", fmt.Errorf("%w: failed to decode openai response: %v", providers.ErrProviderFailure, err)
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if strings.TrimSpace(text) == "" {
		err := errors.New("openai response missing output text")
		observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), err)
		return "", fmt.Errorf("%w: %v", providers.ErrProviderFailure, err)
	}

	observability.RecordGenerationMetric(ctx, providerName, req.Model, resp.StatusCode, time.Since(start), nil)
	return text, nil
}
