package model

import (
	"context"
	"errors"

	"fabula/ollama"
)

// ErrNoImageProvider is reported when image generation is requested but no
// configured provider advertises the image capability.
var ErrNoImageProvider = errors.New("no provider with image capability is configured")

// Capability tags what a provider can do. The router uses these to pick a
// provider for a given request instead of hard-coding provider names.
type Capability string

const (
	CapabilityText      Capability = "text"
	CapabilityStreaming Capability = "streaming"
	CapabilityImage     Capability = "image"
)

// StreamCallback is called for each chunk of a streamed response.
type StreamCallback func(chunk string) error

// Provider abstracts model providers (Ollama, OpenAI, Anthropic) using
// provider-agnostic types from the model layer.
//
// This interface lives in the model package (not provider) to avoid import
// cycles: provider implementations import model, and model can use the
// interface without importing provider.
type Provider interface {
	// Generate sends messages and returns the full response.
	Generate(ctx context.Context, messages []Message) (string, error)

	// Stream sends messages and streams the response back via callback.
	Stream(ctx context.Context, messages []Message, callback StreamCallback) error

	// GenerateImage produces an image for the prompt and returns a
	// reference to it (URL or data URI). Providers without the image
	// capability return an error.
	GenerateImage(ctx context.Context, prompt string) (string, error)

	// Capabilities returns the set of tags this provider supports.
	Capabilities() []Capability

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// GetDisplayName returns the model name formatted for UI display.
	GetDisplayName() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// ProviderPicker selects a provider for a capability. The provider package
// supplies the implementation; the indirection keeps this package free of a
// dependency on it.
type ProviderPicker interface {
	ForCapability(c Capability) (string, Provider, error)
}

// HasCapability reports whether p advertises the given tag.
func HasCapability(p Provider, c Capability) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}
