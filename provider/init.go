package provider

import (
	"fabula/config"
	"fabula/model"
)

// InitializeProviders creates all provider instances for the application.
//
// This function is the single entry point for provider initialization.
// It handles:
//   - Creating the Ollama provider (always attempted)
//   - Creating all enabled cloud providers from config
//   - Loading API keys from the credential store
//   - Graceful degradation (logs but doesn't fail)
//
// The map will include an "ollama" entry when the Ollama client could be
// created, plus any enabled cloud providers. A missing or unreachable
// provider is skipped so the application can still start offline.
func InitializeProviders(cfg *config.Config) map[string]model.Provider {
	providers := make(map[string]model.Provider)

	ollamaProvider := initializeOllama(cfg)
	if ollamaProvider != nil {
		providers["ollama"] = ollamaProvider
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized Ollama provider")
		}
	} else {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Ollama provider initialization failed (offline mode)")
		}
	}

	for _, providerCfg := range cfg.Providers {
		if !providerCfg.Enabled || providerCfg.ID == "ollama" {
			continue
		}

		apiKey := ""
		if cfg.CredentialStore != nil {
			apiKey = cfg.CredentialStore.Get(providerCfg.ID)
		}

		p, err := NewProvider(Config{
			Type:    MapProviderIDToType(providerCfg.ID),
			BaseURL: providerCfg.BaseURL,
			APIKey:  apiKey,
			Model:   providerCfg.DefaultModel,
		})

		if err != nil {
			// Log but don't fail, the app can start without this provider
			if config.Debug {
				config.DebugLog.Printf("[Provider] Warning: failed to initialize provider %s: %v", providerCfg.ID, err)
			}
			continue
		}

		providers[providerCfg.ID] = p
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized provider: %s", providerCfg.ID)
		}
	}

	return providers
}

// NewRouterFromConfig builds the capability router over the initialized
// providers, preferring the configured default provider and falling back in
// config order.
func NewRouterFromConfig(cfg *config.Config, providers map[string]model.Provider) *Router {
	order := make([]string, 0, len(cfg.Providers)+1)
	order = append(order, "ollama")
	for _, providerCfg := range cfg.Providers {
		if providerCfg.ID != "ollama" {
			order = append(order, providerCfg.ID)
		}
	}

	preferred := cfg.DefaultProvider
	if preferred == "" {
		preferred = "ollama"
	}

	return NewRouter(providers, order, preferred)
}

// initializeOllama creates the Ollama provider instance.
// Returns nil if initialization fails (allows offline mode).
func initializeOllama(cfg *config.Config) model.Provider {
	p, err := NewProvider(Config{
		Type:    ProviderTypeOllama,
		BaseURL: cfg.OllamaHost,
		Model:   cfg.DefaultModel,
	})
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Ollama provider creation failed: %v", err)
		}
		return nil
	}

	return p
}
