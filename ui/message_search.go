package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fabula/branch"
)

func renderMessageSearch(searchInput textinput.Model, results []branch.MessageMatch, selectedIdx, width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render("🔍 Search All Branches")
	searchView := searchInput.View()

	resultsView := ""
	if len(results) == 0 {
		if searchInput.Value() == "" {
			resultsView = DimStyle.Render("Type to search every branch of your story...")
		} else {
			resultsView = DimStyle.Render("No matches found")
		}
	} else {
		// Border(2) + padding(2) + title(1) + blanks(3) + count(1) +
		// input(1) + footer(1) = 11 lines of overhead, 3 per result
		maxVisible := (height - 11) / 3
		if maxVisible < 1 {
			maxVisible = 1
		}

		startIdx := 0
		if selectedIdx >= maxVisible {
			startIdx = selectedIdx - maxVisible + 1
		}
		endIdx := startIdx + maxVisible
		if endIdx > len(results) {
			endIdx = len(results)
		}

		resultsView = fmt.Sprintf("Found %d matches:\n\n", len(results))

		if startIdx > 0 {
			resultsView += DimStyle.Render(fmt.Sprintf("↑ %d more above\n\n", startIdx))
		}

		for i := startIdx; i < endIdx; i++ {
			match := results[i]

			roleStyle := PlayerStyle
			if match.Role == "assistant" {
				roleStyle = NarratorStyle
			}

			matchText := fmt.Sprintf("%s · %s [%s]\n  %s",
				HighlightStyle.Render(match.BranchTitle),
				roleStyle.Render(match.Role),
				time.UnixMilli(match.Timestamp).Format("Jan 2, 3:04 PM"),
				match.Preview,
			)

			if i == selectedIdx {
				matchText = SelectedStyle.Render("> " + matchText)
			} else {
				matchText = "  " + matchText
			}

			resultsView += matchText + "\n\n"
		}

		if endIdx < len(results) {
			resultsView += DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx))
		}
	}

	footer := FormatFooter("Type", "to search", "Alt+J/K", "Navigate", "Enter", "Open Branch", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchView,
		"",
		resultsView,
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}

func (s StoryView) handleMessageSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.showMessageSearch = false
		s.messageSearchInput.Blur()
		s.messageSearchInput.SetValue("")
		s.searchResults = nil
		s.selectedSearchIdx = 0
		return s, nil

	case "alt+j", "alt+down":
		if s.selectedSearchIdx < len(s.searchResults)-1 {
			s.selectedSearchIdx++
		}
		return s, nil

	case "alt+k", "alt+up":
		if s.selectedSearchIdx > 0 {
			s.selectedSearchIdx--
		}
		return s, nil

	case "enter":
		if s.selectedSearchIdx >= len(s.searchResults) {
			return s, nil
		}
		match := s.searchResults[s.selectedSearchIdx]

		var save tea.Cmd
		if s.dataModel.BranchDirty {
			save = s.dataModel.SaveCurrentBranch()
		}
		switchCmd := s.dataModel.SwitchBranchCmd(match.BranchID)
		if save != nil {
			return s, tea.Sequence(save, switchCmd)
		}
		return s, switchCmd
	}

	var cmd tea.Cmd
	s.messageSearchInput, cmd = s.messageSearchInput.Update(msg)

	query := s.messageSearchInput.Value()
	if query == "" {
		s.searchResults = nil
		s.selectedSearchIdx = 0
		return s, cmd
	}
	return s, tea.Batch(cmd, s.dataModel.SearchBranchesCmd(query))
}
