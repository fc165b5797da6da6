package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"fabula/branch"
	"fabula/config"
	"fabula/model"
	"fabula/provider"
	"fabula/storage"
	"fabula/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func main() {
	// Env-var configuration is all-or-nothing
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		fmt.Fprintf(os.Stderr, "Missing environment variable: %s\n\n"+
			"When using environment variables, all 3 must be set:\n"+
			"  • FABULA_OLLAMA_HOST\n"+
			"  • FABULA_OLLAMA_MODEL\n"+
			"  • FABULA_DATA_DIR\n\n"+
			"Set the missing variable(s) before launching fabula.\n",
			config.GetMissingEnvVar())
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())

	kv, cleanup := openStorage(cfg)
	defer cleanup()

	store := branch.NewStore(kv)

	providers := provider.InitializeProviders(cfg)
	if len(providers) == 0 {
		fmt.Printf("No providers could be initialized. Is Ollama running at %s?\n", cfg.OllamaHost)
		os.Exit(1)
	}

	dataModel := model.NewModel(cfg, store, providers, Version, License)
	dataModel.Picker = provider.NewRouterFromConfig(cfg, providers)

	p := tea.NewProgram(
		ui.NewStoryView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running fabula: %v\n", err)
		os.Exit(1)
	}
}

// openStorage picks the persistence backend from config. A backend that
// fails to open degrades to in-memory storage so the story can still be
// played, just not saved.
func openStorage(cfg *config.Config) (storage.KV, func()) {
	dataDir := cfg.DataDir()

	switch cfg.StorageBackend {
	case "file":
		kv, err := storage.NewFileKV(dataDir)
		if err == nil {
			return kv, func() {}
		}
		fmt.Fprintf(os.Stderr, "Warning: file storage unavailable (%v), conversations will not persist\n", err)

	default: // "sqlite"
		kv, err := storage.NewSQLiteKV(dataDir)
		if err == nil {
			return kv, func() { kv.Close() }
		}
		fmt.Fprintf(os.Stderr, "Warning: sqlite storage unavailable (%v), conversations will not persist\n", err)
	}

	return storage.NewMemoryKV(), func() {}
}
