package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tilde prefix", "~/.local/share/fabula", filepath.Join(home, ".local/share/fabula")},
		{"bare tilde", "~", home},
		{"absolute path unchanged", "/tmp/fabula", "/tmp/fabula"},
		{"empty unchanged", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUserConfigRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	cfg := DefaultUserConfig()
	cfg.Ollama.Host = "http://example.test:11434"
	cfg.DefaultProvider = "anthropic"
	cfg.NarratorPrompt = "You narrate a noir mystery."
	cfg.StorageBackend = "file"

	if err := SaveUserConfig(dataDir, cfg); err != nil {
		t.Fatalf("SaveUserConfig() error = %v", err)
	}

	loaded, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}

	if loaded.Ollama.Host != cfg.Ollama.Host {
		t.Errorf("host = %q, want %q", loaded.Ollama.Host, cfg.Ollama.Host)
	}
	if loaded.DefaultProvider != "anthropic" {
		t.Errorf("default provider = %q, want %q", loaded.DefaultProvider, "anthropic")
	}
	if loaded.NarratorPrompt != cfg.NarratorPrompt {
		t.Errorf("narrator prompt = %q, want %q", loaded.NarratorPrompt, cfg.NarratorPrompt)
	}
	if loaded.StorageBackend != "file" {
		t.Errorf("storage backend = %q, want %q", loaded.StorageBackend, "file")
	}
}

func TestLoadUserConfigCreatesDefault(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}
	if cfg.DefaultProvider != "ollama" {
		t.Errorf("default provider = %q, want %q", cfg.DefaultProvider, "ollama")
	}

	// The template should now exist on disk
	if !FileExists(filepath.Join(dataDir, "config.toml")) {
		t.Error("expected config.toml to be created")
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "config.toml"))
	if err != nil {
		t.Fatalf("failed to read created config: %v", err)
	}
	if !strings.Contains(string(data), "storage_backend") {
		t.Error("template should mention storage_backend")
	}
}

func TestCredentialStorePlainTextRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	store.Set("openai", "sk-test-123")
	store.Set("anthropic", "sk-ant-456")

	if err := store.Save(dataDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := NewCredentialStore(SecurityPlainText, "")
	if err := reloaded.Load(dataDir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := reloaded.Get("openai"); got != "sk-test-123" {
		t.Errorf("openai key = %q, want %q", got, "sk-test-123")
	}
	if got := reloaded.Get("anthropic"); got != "sk-ant-456" {
		t.Errorf("anthropic key = %q, want %q", got, "sk-ant-456")
	}

	reloaded.Delete("openai")
	if got := reloaded.Get("openai"); got != "" {
		t.Errorf("deleted key = %q, want empty", got)
	}
}

func TestCredentialStoreLoadMissingFile(t *testing.T) {
	store := NewCredentialStore(SecurityPlainText, "")
	if err := store.Load(t.TempDir()); err != nil {
		t.Fatalf("Load() on empty dir error = %v", err)
	}
	if got := store.Get("openai"); got != "" {
		t.Errorf("key in empty store = %q, want empty", got)
	}
}

func TestCredentialFilePermissions(t *testing.T) {
	dataDir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	store.Set("openai", "sk-test")
	if err := store.Save(dataDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dataDir, "credentials.json"))
	if err != nil {
		t.Fatalf("stat credentials: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials mode = %o, want 0600", perm)
	}
}
