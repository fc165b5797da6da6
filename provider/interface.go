// Package provider implements the narrator backends (Ollama, OpenAI,
// Anthropic) behind a common interface.
//
// The Provider interface itself is defined in the model package
// (model/provider.go) to avoid import cycles: implementations here import
// model, and the rest of the application works against model.Provider
// without importing this package.
//
// The provider layer owns all type conversions between Fabula's
// provider-agnostic message types and each SDK's wire types. See
// conversions.go.
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama    ProviderType = "ollama"
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/Anthropic (unused for Ollama)
}
