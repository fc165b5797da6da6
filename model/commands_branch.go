package model

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"fabula/branch"
)

// FetchBranchList retrieves the branch list, newest first.
func (m *Model) FetchBranchList() tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		return BranchesListMsg{Branches: store.Branches()}
	}
}

// SaveCurrentBranch writes the displayed messages back to the current
// branch. Persistence runs off the UI goroutine.
func (m *Model) SaveCurrentBranch() tea.Cmd {
	store := m.Store
	messages := ToBranchMessages(m.Messages)
	m.BranchDirty = false

	return func() tea.Msg {
		store.SaveMessages(messages)
		return BranchSavedMsg{}
	}
}

// ForkBranch creates a new branch from the story up to and including the
// message at forkIndex, and switches the display to it.
func (m *Model) ForkBranch(forkIndex int) tea.Cmd {
	if forkIndex < 0 || forkIndex >= len(m.Messages) {
		return nil
	}

	store := m.Store
	forkMessageID := m.Messages[forkIndex].ID
	prefix := ToBranchMessages(m.Messages[:forkIndex+1])

	return func() tea.Msg {
		id := store.CreateBranch(forkMessageID, prefix)
		return BranchForkedMsg{BranchID: id}
	}
}

// SwitchBranchCmd makes branchID current.
func (m *Model) SwitchBranchCmd(branchID string) tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		b, err := store.SwitchBranch(branchID)
		return BranchSwitchedMsg{Branch: b, Err: err}
	}
}

// DeleteBranchCmd removes a branch and refreshes the list. The store
// refuses to delete the last branch; the error surfaces to the UI.
func (m *Model) DeleteBranchCmd(branchID string) tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		if err := store.DeleteBranch(branchID); err != nil {
			return BranchDeletedMsg{Err: err}
		}
		return BranchesListMsg{Branches: store.Branches()}
	}
}

// RenameBranchCmd retitles a branch and refreshes the list.
func (m *Model) RenameBranchCmd(branchID, title string) tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		if err := store.RenameBranch(branchID, title); err != nil {
			return BranchRenamedMsg{Err: err}
		}
		return BranchesListMsg{Branches: store.Branches()}
	}
}

// ClearAllConversationsCmd erases everything. The next read from the store
// recreates the welcome state.
func (m *Model) ClearAllConversationsCmd() tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		store.ClearAllConversations()
		return ConversationsClearedMsg{}
	}
}

// ExportBranchCmd writes a branch to a JSON file. Cancellation points let
// the UI abandon a slow export cleanly.
func (m *Model) ExportBranchCmd(ctx context.Context, branchID, exportPath string) tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return BranchExportedMsg{Cancelled: true}
		default:
		}

		if err := store.ExportJSON(branchID, exportPath); err != nil {
			return BranchExportedMsg{Err: err}
		}
		return BranchExportedMsg{Path: exportPath}
	}
}

// ImportBranchCmd loads a branch from a JSON file into the tree.
func (m *Model) ImportBranchCmd(path string) tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		imported, err := store.ImportJSON(path)
		if err != nil {
			return BranchImportedMsg{Err: fmt.Errorf("failed to import branch: %w", err)}
		}
		return BranchImportedMsg{Branch: imported}
	}
}

// SearchBranchesCmd searches every branch for the query.
func (m *Model) SearchBranchesCmd(query string) tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		return SearchResultsMsg{Query: query, Matches: store.SearchMessages(query)}
	}
}

// LoadBranchMessages swaps the displayed messages for the given branch's.
// Called after a successful switch or fork.
func (m *Model) LoadBranchMessages(b *branch.Branch) {
	m.Messages = FromBranchMessages(b.Messages)
	m.BranchDirty = false
	m.NeedsInitialRender = len(m.Messages) > 0
}
