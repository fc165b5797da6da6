package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DefaultNarratorPrompt steers the model toward interactive fiction when
// the user hasn't written their own.
const DefaultNarratorPrompt = "You are the narrator of an interactive story. " +
	"Continue the tale from the user's actions in vivid second-person prose, " +
	"two to four paragraphs at a time, and always end at a moment where the " +
	"user can act."

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

type SecurityConfig struct {
	Method     string `toml:"method"` // "plaintext" or "ssh_key"
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type ProviderConfig struct {
	ID           string `toml:"id"`
	Enabled      bool   `toml:"enabled"`
	BaseURL      string `toml:"base_url,omitempty"`
	DefaultModel string `toml:"default_model,omitempty"`
}

type UserConfig struct {
	Ollama          OllamaConfig     `toml:"ollama"`
	DefaultProvider string           `toml:"default_provider"`
	NarratorPrompt  string           `toml:"narrator_prompt,omitempty"`
	StorageBackend  string           `toml:"storage_backend"` // "sqlite" or "file"
	Security        SecurityConfig   `toml:"security"`
	Providers       []ProviderConfig `toml:"providers"`
}

type Config struct {
	DataDirectory   string
	OllamaHost      string
	DefaultModel    string
	DefaultProvider string
	NarratorPrompt  string
	StorageBackend  string
	Providers       []ProviderConfig
	CredentialStore *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("FABULA_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("FABULA_OLLAMA_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("FABULA_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("FABULA_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - may contain conversation excerpts
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (FABULA_DEBUG=%s) ===", os.Getenv("FABULA_DEBUG"))
}

func HasAllEnvVars() bool {
	return os.Getenv("FABULA_OLLAMA_HOST") != "" &&
		os.Getenv("FABULA_OLLAMA_MODEL") != "" &&
		os.Getenv("FABULA_DATA_DIR") != ""
}

func HasAnyEnvVar() bool {
	return os.Getenv("FABULA_OLLAMA_HOST") != "" ||
		os.Getenv("FABULA_OLLAMA_MODEL") != "" ||
		os.Getenv("FABULA_DATA_DIR") != ""
}

func GetMissingEnvVar() string {
	if os.Getenv("FABULA_OLLAMA_HOST") == "" {
		return "FABULA_OLLAMA_HOST"
	}
	if os.Getenv("FABULA_OLLAMA_MODEL") == "" {
		return "FABULA_OLLAMA_MODEL"
	}
	if os.Getenv("FABULA_DATA_DIR") == "" {
		return "FABULA_DATA_DIR"
	}
	return ""
}

// Load reads the system config (data directory location) and the user
// config inside it, falling back to environment variables or defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   "~/.local/share/fabula",
		OllamaHost:      "http://localhost:11434",
		DefaultModel:    "llama3.1:latest",
		DefaultProvider: "ollama",
		StorageBackend:  "sqlite",
	}

	if !FileExists(GetSettingsFilePath()) && HasAllEnvVars() {
		cfg.applyEnvOverrides()
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		userCfg, err := LoadUserConfig(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.OllamaHost = userCfg.Ollama.Host
		cfg.DefaultModel = userCfg.Ollama.DefaultModel
		if userCfg.DefaultProvider != "" {
			cfg.DefaultProvider = userCfg.DefaultProvider
		}
		cfg.NarratorPrompt = userCfg.NarratorPrompt
		if userCfg.StorageBackend != "" {
			cfg.StorageBackend = userCfg.StorageBackend
		}
		cfg.Providers = userCfg.Providers

		cfg.CredentialStore = NewCredentialStore(
			SecurityMethod(userCfg.Security.Method),
			ExpandPath(userCfg.Security.SSHKeyPath),
		)
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	if cfg.CredentialStore == nil {
		cfg.CredentialStore = NewCredentialStore(SecurityPlainText, "")
	}
	if err := cfg.CredentialStore.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	return cfg, nil
}

// ProviderEnabled reports whether the provider id is enabled in config.
// Ollama defaults to enabled when no providers section exists at all.
func (c *Config) ProviderEnabled(id string) bool {
	if len(c.Providers) == 0 {
		return id == "ollama"
	}
	for _, p := range c.Providers {
		if p.ID == id {
			return p.Enabled
		}
	}
	return false
}
