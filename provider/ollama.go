package provider

import (
	"context"
	"fmt"
	"strings"

	"fabula/model"
	"fabula/ollama"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
//
// It handles the conversion between Fabula's provider-agnostic message type
// and Ollama's api.Message.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// baseURL defaults to "http://localhost:11434" and model to
// "llama3.1:latest" when empty. Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Generate implements Provider.Generate by streaming into a builder.
//
// Ollama's chat endpoint is stream-first, so the non-streaming variant is
// just an accumulation of the streamed chunks.
func (p *OllamaProvider) Generate(ctx context.Context, messages []model.Message) (string, error) {
	var sb strings.Builder
	err := p.Stream(ctx, messages, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Stream implements Provider.Stream by converting messages and delegating
// to the Ollama client.
func (p *OllamaProvider) Stream(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	ollamaMessages := ConvertToOllamaMessages(messages)

	return p.client.Chat(ctx, ollamaMessages, func(chunk string) error {
		if callback == nil {
			return nil
		}
		return callback(chunk)
	})
}

// GenerateImage implements Provider.GenerateImage. Ollama has no image
// generation endpoint.
func (p *OllamaProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("ollama provider does not support image generation: %w", model.ErrNoImageProvider)
}

// Capabilities implements Provider.Capabilities.
func (p *OllamaProvider) Capabilities() []model.Capability {
	return []model.Capability{model.CapabilityText, model.CapabilityStreaming}
}

// ListModels implements Provider.ListModels (direct passthrough).
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// GetModel implements Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// GetDisplayName implements Provider.GetDisplayName.
//
// For Ollama, the display name is the same as the model name.
func (p *OllamaProvider) GetDisplayName() string {
	return p.client.GetModel()
}

// SetModel implements Provider.SetModel (direct passthrough).
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping implements Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
