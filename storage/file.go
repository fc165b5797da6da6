package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores each key as one file under <dataDir>/state. It is the
// fallback medium for users who disable sqlite in config, and keeps the
// on-disk data trivially inspectable.
type FileKV struct {
	stateDir string
}

// NewFileKV creates the state directory if needed (0700 - user-only access).
func NewFileKV(dataDir string) (*FileKV, error) {
	stateDir := filepath.Join(dataDir, "state")

	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &FileKV{stateDir: stateDir}, nil
}

func (f *FileKV) path(key string) string {
	// Keys are internal identifiers, but sanitize anyway so a bad key can
	// never escape the state directory.
	key = strings.ReplaceAll(key, "/", "-")
	key = strings.ReplaceAll(key, "\\", "-")
	key = strings.ReplaceAll(key, "..", "-")
	return filepath.Join(f.stateDir, key+".json")
}

func (f *FileKV) Load(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state file: %w", err)
	}
	return string(data), true, nil
}

func (f *FileKV) Save(key, value string) error {
	// 0600 permissions - state files contain conversation history
	if err := os.WriteFile(f.path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

func (f *FileKV) Remove(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
