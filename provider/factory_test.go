package provider

import (
	"testing"

	"fabula/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "ollama with defaults",
			cfg: Config{
				Type: ProviderTypeOllama,
			},
			wantErr: false,
		},
		{
			name: "ollama with explicit URL",
			cfg: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			wantErr: false,
		},
		{
			name: "openai without API key",
			cfg: Config{
				Type:  ProviderTypeOpenAI,
				Model: "gpt-4o-mini",
			},
			wantErr: true,
		},
		{
			name: "openai with API key",
			cfg: Config{
				Type:   ProviderTypeOpenAI,
				APIKey: "sk-test",
			},
			wantErr: false,
		},
		{
			name: "anthropic without API key",
			cfg: Config{
				Type: ProviderTypeAnthropic,
			},
			wantErr: true,
		},
		{
			name: "anthropic with API key",
			cfg: Config{
				Type:   ProviderTypeAnthropic,
				APIKey: "sk-ant-test",
			},
			wantErr: false,
		},
		{
			name: "unknown type",
			cfg: Config{
				Type: ProviderType("mystery"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && p == nil {
				t.Fatal("NewProvider() returned nil provider without error")
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"ollama", ProviderTypeOllama},
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"custom", ProviderType("custom")},
	}

	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestProviderCapabilities(t *testing.T) {
	ollamaProvider, err := NewOllamaProvider("", "")
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}
	openaiProvider, err := NewOpenAIProvider("", "sk-test", "")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	anthropicProvider, err := NewAnthropicProvider("", "sk-ant-test", "")
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	if !model.HasCapability(ollamaProvider, model.CapabilityStreaming) {
		t.Error("ollama provider should advertise streaming")
	}
	if model.HasCapability(ollamaProvider, model.CapabilityImage) {
		t.Error("ollama provider should not advertise image")
	}
	if !model.HasCapability(openaiProvider, model.CapabilityImage) {
		t.Error("openai provider should advertise image")
	}
	if model.HasCapability(anthropicProvider, model.CapabilityImage) {
		t.Error("anthropic provider should not advertise image")
	}
}
