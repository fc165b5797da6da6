package model

import (
	"fabula/branch"
	"fabula/config"
)

// Model holds the core application data and business logic state.
type Model struct {
	// Core dependencies
	Config    *config.Config
	Store     *branch.Store
	Providers map[string]Provider // providerID → client
	Provider  Provider            // active provider
	Picker    ProviderPicker      // capability-based provider selection

	// Application data: the current branch's messages, as displayed
	Messages []Message

	// Runtime state (not UI)
	Streaming          bool
	BranchDirty        bool
	NeedsInitialRender bool
	Quitting           bool

	// Application metadata
	Version string
	License string
}

// NewModel creates a Model over an already-constructed store and provider
// set. The current branch's messages are loaded immediately so the first
// frame shows the story so far.
func NewModel(cfg *config.Config, store *branch.Store, providers map[string]Provider, version, license string) *Model {
	m := &Model{
		Config:    cfg,
		Store:     store,
		Providers: providers,
		Version:   version,
		License:   license,
	}

	if active, ok := providers[cfg.DefaultProvider]; ok {
		m.Provider = active
	} else {
		// Fall back to any constructed provider
		for _, p := range providers {
			m.Provider = p
			break
		}
	}

	current := store.CurrentBranch()
	m.Messages = FromBranchMessages(current.Messages)
	m.NeedsInitialRender = len(m.Messages) > 0

	return m
}

// SwitchProvider activates the provider with the given id, if constructed.
func (m *Model) SwitchProvider(providerID string) bool {
	p, ok := m.Providers[providerID]
	if !ok {
		return false
	}
	m.Provider = p
	return true
}

// NarratorPrompt returns the system prompt steering the storyteller.
func (m *Model) NarratorPrompt() string {
	if m.Config.NarratorPrompt != "" {
		return m.Config.NarratorPrompt
	}
	return config.DefaultNarratorPrompt
}
