package branch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportJSON writes one branch to a JSON file at the given path, creating
// parent directories as needed.
func (s *Store) ExportJSON(branchID, exportPath string) error {
	state := s.ensureState()

	branch, ok := state.Branches[branchID]
	if !ok {
		return ErrBranchNotFound
	}

	data, err := json.MarshalIndent(branch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal branch: %w", err)
	}

	// 0700 dir / 0600 file - exports contain conversation history
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// ImportJSON loads a branch from a JSON file and adds it to the tree under
// a fresh id with fresh timestamps. The imported branch does not become
// current; any parentId in the file is dropped since it points into someone
// else's tree.
func (s *Store) ImportJSON(path string) (*Branch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var imported Branch
	if err := json.Unmarshal(data, &imported); err != nil {
		return nil, fmt.Errorf("invalid branch file: %w", err)
	}
	if len(imported.Messages) == 0 {
		return nil, fmt.Errorf("invalid branch file: no messages")
	}

	state := s.ensureState()

	imported.ID = uuid.New().String()
	imported.ParentID = ""
	imported.Timestamp = now()
	if imported.Title == "" {
		imported.Title = TitleFromContent(imported.Messages[0].Content)
	}

	state.Branches[imported.ID] = &imported
	state.LastUpdated = imported.Timestamp

	s.persist()
	return &imported, nil
}

// SanitizeFilename removes characters that are invalid in filenames so a
// branch title can be used in an export path.
func SanitizeFilename(name string) string {
	for _, ch := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " ", "\n", "\r"} {
		name = strings.ReplaceAll(name, ch, "-")
	}

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "branch"
	}

	return name
}

// GenerateExportPath builds a default export path for a branch under the
// user's Downloads directory.
func GenerateExportPath(branchTitle string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE") // Windows fallback
	}

	filename := fmt.Sprintf("fabula-branch-%s-%s.json",
		SanitizeFilename(branchTitle),
		time.Now().Format("20060102-150405"))

	return filepath.Join(homeDir, "Downloads", filename)
}
