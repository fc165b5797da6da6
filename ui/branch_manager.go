package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"fabula/branch"
	"fabula/config"
)

func (s StoryView) renderBranchManager() string {
	width, height := s.width, s.height

	modalWidth := width - 10
	if modalWidth > 110 {
		modalWidth = 110
	}
	modalHeight := height - 6

	// Sub-modals take over the whole screen
	if s.confirmDelete != nil {
		warningText := lipgloss.NewStyle().Foreground(dangerColor).Render("This action cannot be undone.")
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "⚠ Delete Branch",
			Message: fmt.Sprintf("Are you sure you want to delete:\n\"%s\"\n%s", s.confirmDelete.Title, warningText),
		}, width, height)
	}

	if s.confirmClearAll {
		warningText := lipgloss.NewStyle().Foreground(dangerColor).Render("Every branch will be erased. This cannot be undone.")
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "⚠ Clear All Stories",
			Message: fmt.Sprintf("Delete all %d branches and start over?\n%s", len(s.branchList), warningText),
		}, width, height)
	}

	if s.exportingBranch {
		return renderSpinnerModal("Exporting Branch", "Writing JSON...", s.exportSpinner, width, height)
	}

	if s.branchExportMode {
		return renderPathInputModal("Export Branch to JSON", "Export to:", s.branchExportInput, width, height)
	}

	if s.branchImportMode {
		return renderPathInputModal("Import Branch from JSON", "Import from:", s.branchImportInput, width, height)
	}

	if s.importSuccess != nil {
		return RenderThreeSectionModal(
			"✓ Import Successful",
			[]string{
				fmt.Sprintf("Imported: %s", s.importSuccess.Title),
				fmt.Sprintf("Messages: %d", len(s.importSuccess.Messages)),
			},
			FormatFooter("Enter", "OK"),
			successColor,
			width,
			height,
		)
	}

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Story Branches")

	// Header: filter input or count
	var header string
	if s.branchFilterMode {
		header = s.branchFilterInput.View()
	} else {
		displayList := s.getBranchList()
		if len(displayList) == len(s.branchList) {
			header = fmt.Sprintf("%d branches", len(s.branchList))
		} else {
			header = fmt.Sprintf("%d of %d branches", len(displayList), len(s.branchList))
		}
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	displayList := s.getBranchList()
	currentID := s.dataModel.Store.CurrentBranch().ID

	var branchLines []string
	maxLines := modalHeight - 8 // Title, borders, header, footer

	if len(displayList) == 0 {
		emptyMsg := "No branches yet."
		if s.branchFilterMode {
			emptyMsg = "No matches found"
		}
		branchLines = append(branchLines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(displayList)

		// Keep the selection near the middle of the window
		if len(displayList) > maxLines {
			if s.selectedBranchIdx < maxLines/2 {
				endIdx = maxLines
			} else if s.selectedBranchIdx >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = s.selectedBranchIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			b := displayList[i]

			indicator := "  "
			if i == s.selectedBranchIdx {
				indicator = "▶ "
			}

			maxTitleWidth := modalWidth - 40

			var titleDisplay string
			if s.branchRenameMode && i == s.selectedBranchIdx {
				titleDisplay = lipgloss.NewStyle().
					Foreground(accentColor).
					Bold(true).
					Render(s.branchRenameInput.View())
			} else {
				titleDisplay = runewidth.Truncate(b.Title, maxTitleWidth, "...")
			}

			hasCurrentMarker := b.ID == currentID && !s.branchRenameMode
			hasForkMarker := b.ParentID != "" && !s.branchRenameMode

			msgCount := fmt.Sprintf("%d msgs", len(b.Messages))
			if len(b.Messages) == 1 {
				msgCount = "1 msg"
			}

			timeAgo := formatTimeAgo(time.UnixMilli(b.Timestamp))

			titleStyled := titleDisplay
			if i == s.selectedBranchIdx {
				titleStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(titleDisplay)
			} else if b.ID == currentID {
				titleStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(titleDisplay)
			}

			leftSide := indicator + titleStyled
			rightSide := fmt.Sprintf("%s  %8s", msgCount, timeAgo)

			// Spacing by visual width, not byte length of the styled strings
			leftVisualWidth := len(indicator) + runewidth.StringWidth(stripANSI(titleDisplay))
			spacing := modalWidth - 4 - leftVisualWidth - len(rightSide)
			if hasCurrentMarker {
				spacing -= 10 // " (current)"
			}
			if hasForkMarker {
				spacing -= 2 // " ⑂"
			}
			if spacing < 2 {
				spacing = 2
			}

			if hasCurrentMarker {
				markerColor := accentColor
				if i == s.selectedBranchIdx {
					markerColor = successColor
				}
				leftSide += " " + lipgloss.NewStyle().Foreground(markerColor).Render("(current)")
			}
			if hasForkMarker {
				leftSide += " " + lipgloss.NewStyle().Foreground(highlightColor).Render("⑂")
			}

			rightSideStyled := rightSide
			if i == s.selectedBranchIdx {
				rightSideStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(rightSide)
			} else if b.ID == currentID {
				rightSideStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(rightSide)
			}

			styledLine := fmt.Sprintf("  %s%s%s  ", leftSide, strings.Repeat(" ", spacing), rightSideStyled)
			branchLines = append(branchLines, lipgloss.NewStyle().Width(modalWidth).Render(styledLine))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	branchLines = append([]string{emptyLine}, branchLines...)
	branchLines = append(branchLines, emptyLine)

	var footerText string
	if s.branchRenameMode {
		footerText = FormatFooter("Enter", "Save", "Esc", "Cancel")
	} else if s.branchFilterMode {
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Switch", "Esc", "Cancel")
	} else {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Switch", "r", "Rename", "x", "Export", "i", "Import", "d", "Delete", "C", "Clear All", "Esc", "Exit")
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := []string{titleSection, headerSection}
	sections = append(sections, branchLines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderPathInputModal shows a single-line path prompt used by export and
// import.
func renderPathInputModal(title, label string, input textinput.Model, width, height int) string {
	body := []string{
		label,
		lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(input.View()),
	}
	return RenderThreeSectionModal(
		title,
		body,
		FormatFooter("Enter", "Confirm", "Esc", "Cancel"),
		accentColor,
		width,
		height,
	)
}

func (s StoryView) handleBranchManagerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Delete confirmation
	if s.confirmDelete != nil {
		switch msg.String() {
		case "y", "Y":
			target := s.confirmDelete
			s.confirmDelete = nil
			return s, s.dataModel.DeleteBranchCmd(target.ID)
		case "n", "N", "esc":
			s.confirmDelete = nil
		}
		return s, nil
	}

	// Clear-all confirmation
	if s.confirmClearAll {
		switch msg.String() {
		case "y", "Y":
			s.confirmClearAll = false
			return s, s.dataModel.ClearAllConversationsCmd()
		case "n", "N", "esc":
			s.confirmClearAll = false
		}
		return s, nil
	}

	// Export in progress
	if s.exportingBranch {
		if msg.String() == "esc" && s.exportCancelFunc != nil {
			s.exportCancelFunc()
			s.exportingBranch = false
		}
		return s, nil
	}

	// Import success acknowledgement
	if s.importSuccess != nil {
		switch msg.String() {
		case "enter", "esc":
			s.importSuccess = nil
		}
		return s, nil
	}

	// Rename input
	if s.branchRenameMode {
		switch msg.String() {
		case "enter":
			title := strings.TrimSpace(s.branchRenameInput.Value())
			s.branchRenameMode = false
			s.branchRenameInput.Blur()
			if title == "" {
				return s, nil
			}
			list := s.getBranchList()
			if s.selectedBranchIdx < len(list) {
				return s, s.dataModel.RenameBranchCmd(list[s.selectedBranchIdx].ID, title)
			}
			return s, nil
		case "esc":
			s.branchRenameMode = false
			s.branchRenameInput.Blur()
			return s, nil
		}
		var cmd tea.Cmd
		s.branchRenameInput, cmd = s.branchRenameInput.Update(msg)
		return s, cmd
	}

	// Export path input
	if s.branchExportMode {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(s.branchExportInput.Value())
			s.branchExportMode = false
			s.branchExportInput.Blur()
			if path == "" {
				return s, nil
			}
			list := s.getBranchList()
			if s.selectedBranchIdx < len(list) {
				return s, s.runBranchExport(list[s.selectedBranchIdx].ID, path)
			}
			return s, nil
		case "esc":
			s.branchExportMode = false
			s.branchExportInput.Blur()
			return s, nil
		}
		var cmd tea.Cmd
		s.branchExportInput, cmd = s.branchExportInput.Update(msg)
		return s, cmd
	}

	// Import path input
	if s.branchImportMode {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(s.branchImportInput.Value())
			s.branchImportMode = false
			s.branchImportInput.Blur()
			if path == "" {
				return s, nil
			}
			return s, s.dataModel.ImportBranchCmd(config.ExpandPath(path))
		case "esc":
			s.branchImportMode = false
			s.branchImportInput.Blur()
			return s, nil
		}
		var cmd tea.Cmd
		s.branchImportInput, cmd = s.branchImportInput.Update(msg)
		return s, cmd
	}

	// Filter input
	if s.branchFilterMode {
		switch msg.String() {
		case "esc":
			s.branchFilterMode = false
			s.branchFilterInput.Blur()
			s.branchFilterInput.SetValue("")
			s.filteredBranchList = nil
			s.selectedBranchIdx = 0
			return s, nil
		case "enter":
			return s.switchToSelectedBranch()
		case "alt+j", "alt+down":
			if s.selectedBranchIdx < len(s.getBranchList())-1 {
				s.selectedBranchIdx++
			}
			return s, nil
		case "alt+k", "alt+up":
			if s.selectedBranchIdx > 0 {
				s.selectedBranchIdx--
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.branchFilterInput, cmd = s.branchFilterInput.Update(msg)
		s.filteredBranchList = filterBranches(s.branchList, s.branchFilterInput.Value())
		s.selectedBranchIdx = 0
		return s, cmd
	}

	switch msg.String() {
	case "esc":
		s.showBranchManager = false
		return s, nil

	case "j", "down":
		if s.selectedBranchIdx < len(s.getBranchList())-1 {
			s.selectedBranchIdx++
		}
		return s, nil

	case "k", "up":
		if s.selectedBranchIdx > 0 {
			s.selectedBranchIdx--
		}
		return s, nil

	case "enter":
		return s.switchToSelectedBranch()

	case "r":
		list := s.getBranchList()
		if s.selectedBranchIdx < len(list) {
			s.branchRenameMode = true
			s.branchRenameInput.SetValue(list[s.selectedBranchIdx].Title)
			s.branchRenameInput.Focus()
			s.branchRenameInput.CursorEnd()
		}
		return s, nil

	case "x":
		list := s.getBranchList()
		if s.selectedBranchIdx < len(list) {
			s.startBranchExport(list[s.selectedBranchIdx])
		}
		return s, nil

	case "i":
		s.branchImportMode = true
		s.branchImportInput.SetValue("")
		s.branchImportInput.Focus()
		return s, nil

	case "d":
		list := s.getBranchList()
		if s.selectedBranchIdx < len(list) {
			s.confirmDelete = list[s.selectedBranchIdx]
		}
		return s, nil

	case "C":
		s.confirmClearAll = true
		return s, nil

	case "/":
		s.branchFilterMode = true
		s.branchFilterInput.SetValue("")
		s.branchFilterInput.Focus()
		s.filteredBranchList = nil
		s.selectedBranchIdx = 0
		return s, nil
	}

	return s, nil
}

func (s StoryView) switchToSelectedBranch() (tea.Model, tea.Cmd) {
	list := s.getBranchList()
	if s.selectedBranchIdx >= len(list) {
		return s, nil
	}
	target := list[s.selectedBranchIdx]

	var save tea.Cmd
	if s.dataModel.BranchDirty {
		save = s.dataModel.SaveCurrentBranch()
	}
	switchCmd := s.dataModel.SwitchBranchCmd(target.ID)
	if save != nil {
		return s, tea.Sequence(save, switchCmd)
	}
	return s, switchCmd
}

// filterBranches fuzzy-matches branch titles against the query.
func filterBranches(branches []*branch.Branch, query string) []*branch.Branch {
	if query == "" {
		return nil
	}

	titles := make([]string, len(branches))
	for i, b := range branches {
		titles[i] = b.Title
	}

	matches := fuzzy.Find(query, titles)
	result := make([]*branch.Branch, 0, len(matches))
	for _, m := range matches {
		result = append(result, branches[m.Index])
	}
	return result
}

// formatTimeAgo formats a time as a relative string (e.g., "2h ago", "3d ago")
func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	} else if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	} else if duration < 30*24*time.Hour {
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	}
	return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
}
