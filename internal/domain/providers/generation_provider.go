package providers

import (
	"context"
	"errors"
)

// ErrProviderFailure marks any failure of the text-generation provider:
// transport errors, non-2xx responses and empty or undecodable bodies.
var ErrProviderFailure = errors.New("text generation provider failure")

// ErrProviderUnauthorized is returned when the provider rejects the API key.
var ErrProviderUnauthorized = errors.New("text generation provider unauthorized")

// GenerationRequest is a single prompt sent to a text-generation provider.
type GenerationRequest struct {
	Model             string
	MaxTokens         int
	Temperature       float64
	SystemInstruction string
	Prompt            string
}

// TextGenerationProvider sends a prompt to an external model and returns the
// raw completion text. Implementations never retry.
type TextGenerationProvider interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}
