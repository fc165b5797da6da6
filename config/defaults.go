package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/fabula",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		DefaultProvider: "ollama",
		StorageBackend:  "sqlite",
		Security: SecurityConfig{
			Method: "plaintext",
		},
		Providers: []ProviderConfig{
			{ID: "ollama", Enabled: true, BaseURL: "http://localhost:11434", DefaultModel: "llama3.1:latest"},
			{ID: "openai", Enabled: false, DefaultModel: "gpt-4o-mini"},
			{ID: "anthropic", Enabled: false, DefaultModel: "claude-sonnet-4-5-20250929"},
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Fabula System Configuration
# Location: ~/.config/fabula/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations and user config are stored
data_directory = "~/.local/share/fabula"
`
}

func GenerateUserConfigTemplate() string {
	return `# Fabula User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[ollama]
# Ollama server URL
host = "http://localhost:11434"

# Default model for the narrator
default_model = "llama3.1:latest"

# Provider used for new stories: "ollama", "openai" or "anthropic"
default_provider = "ollama"

# System prompt steering the narrator (optional; a built-in interactive
# fiction prompt is used when empty)
narrator_prompt = ""

# Where conversation state is persisted: "sqlite" (one database file) or
# "file" (one JSON file per key)
storage_backend = "sqlite"

[security]
# How API keys are stored: "plaintext" or "ssh_key" (AES-GCM, key derived
# from an SSH key signature)
method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"

[[providers]]
id = "ollama"
enabled = true
base_url = "http://localhost:11434"
default_model = "llama3.1:latest"

[[providers]]
id = "openai"
enabled = false
default_model = "gpt-4o-mini"

[[providers]]
id = "anthropic"
enabled = false
default_model = "claude-sonnet-4-5-20250929"
`
}
