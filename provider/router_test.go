package provider

import (
	"context"
	"errors"
	"testing"

	"fabula/model"
	"fabula/ollama"
)

// fakeProvider is a minimal Provider implementation for router tests.
type fakeProvider struct {
	name string
	caps []model.Capability
}

func (f *fakeProvider) Generate(ctx context.Context, messages []model.Message) (string, error) {
	return "", nil
}

func (f *fakeProvider) Stream(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return nil
}

func (f *fakeProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (f *fakeProvider) Capabilities() []model.Capability { return f.caps }

func (f *fakeProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return nil, nil
}

func (f *fakeProvider) GetModel() string        { return f.name }
func (f *fakeProvider) GetDisplayName() string  { return f.name }
func (f *fakeProvider) SetModel(model string)   {}
func (f *fakeProvider) Ping(ctx context.Context) error { return nil }

func textOnly(name string) *fakeProvider {
	return &fakeProvider{name: name, caps: []model.Capability{model.CapabilityText, model.CapabilityStreaming}}
}

func withImages(name string) *fakeProvider {
	return &fakeProvider{name: name, caps: []model.Capability{model.CapabilityText, model.CapabilityStreaming, model.CapabilityImage}}
}

func TestRouterPrefersPreferredProvider(t *testing.T) {
	providers := map[string]model.Provider{
		"ollama": textOnly("ollama"),
		"openai": withImages("openai"),
	}
	r := NewRouter(providers, []string{"ollama", "openai"}, "ollama")

	id, p, err := r.ForCapability(model.CapabilityText)
	if err != nil {
		t.Fatalf("ForCapability(text) error = %v", err)
	}
	if id != "ollama" {
		t.Errorf("ForCapability(text) picked %q, want preferred %q", id, "ollama")
	}
	if p == nil {
		t.Fatal("ForCapability(text) returned nil provider")
	}
}

func TestRouterFallsBackForImageCapability(t *testing.T) {
	providers := map[string]model.Provider{
		"ollama": textOnly("ollama"),
		"openai": withImages("openai"),
	}
	r := NewRouter(providers, []string{"ollama", "openai"}, "ollama")

	id, _, err := r.ForCapability(model.CapabilityImage)
	if err != nil {
		t.Fatalf("ForCapability(image) error = %v", err)
	}
	if id != "openai" {
		t.Errorf("ForCapability(image) picked %q, want fallback %q", id, "openai")
	}
}

func TestRouterNoImageProvider(t *testing.T) {
	providers := map[string]model.Provider{
		"ollama":    textOnly("ollama"),
		"anthropic": textOnly("anthropic"),
	}
	r := NewRouter(providers, []string{"ollama", "anthropic"}, "ollama")

	_, _, err := r.ForCapability(model.CapabilityImage)
	if !errors.Is(err, model.ErrNoImageProvider) {
		t.Fatalf("ForCapability(image) error = %v, want ErrNoImageProvider", err)
	}
}

func TestRouterUnknownPreferredFallsBack(t *testing.T) {
	providers := map[string]model.Provider{
		"anthropic": textOnly("anthropic"),
	}
	r := NewRouter(providers, []string{"ollama", "anthropic"}, "ollama")

	id, _, err := r.ForCapability(model.CapabilityText)
	if err != nil {
		t.Fatalf("ForCapability(text) error = %v", err)
	}
	if id != "anthropic" {
		t.Errorf("ForCapability(text) picked %q, want %q", id, "anthropic")
	}
}
