package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"fabula/ollama"
)

func renderModelSelector(models []ollama.ModelInfo, selectedIdx int, currentModel string, filterMode bool, filterInput textinput.Model, filteredModels []ollama.ModelInfo, multiProvider bool, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	modalHeight := height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Select Narrator Model")

	// Header: filter input or count
	var header string
	if filterMode {
		header = filterInput.View()
	} else {
		displayList := models
		if len(filteredModels) > 0 {
			displayList = filteredModels
		}
		if len(models) == len(displayList) {
			header = fmt.Sprintf("%d models", len(models))
		} else {
			header = fmt.Sprintf("%d of %d models", len(displayList), len(models))
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

	displayList := models
	if filterMode && len(filteredModels) > 0 {
		displayList = filteredModels
	}

	var modelLines []string
	maxLines := modalHeight - 8

	if len(displayList) == 0 {
		emptyMsg := "No models available"
		if filterMode {
			emptyMsg = "No matches found"
		}
		modelLines = append(modelLines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(displayList)

		if len(displayList) > maxLines {
			if selectedIdx < maxLines/2 {
				endIdx = maxLines
			} else if selectedIdx >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = selectedIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			info := displayList[i]

			indicator := "  "
			if i == selectedIdx {
				indicator = "▶ "
			}

			size := formatSize(info.Size)

			currentMarker := ""
			if info.InternalName == currentModel {
				currentMarker = " (current)"
			}

			providerSuffix := ""
			if multiProvider && info.Provider != "" {
				providerSuffix = fmt.Sprintf(" (%s)", info.Provider)
			}

			name := info.Name
			maxNameWidth := modalWidth - 20
			if len(name)+len(providerSuffix) > maxNameWidth {
				name = name[:maxNameWidth-len(providerSuffix)-3] + "..."
			}

			spacing := modalWidth - len(indicator) - len(name) - len(providerSuffix) - len(currentMarker) - len(size) - 4
			if spacing < 1 {
				spacing = 1
			}

			line := fmt.Sprintf("%s%s%s%s%s%s",
				indicator,
				name,
				providerSuffix,
				currentMarker,
				strings.Repeat(" ", spacing),
				size,
			)

			lineStyle := lipgloss.NewStyle()
			if i == selectedIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			} else if info.InternalName == currentModel {
				lineStyle = lineStyle.Foreground(accentColor).Bold(true)
			}

			modelLines = append(modelLines, lipgloss.NewStyle().
				Width(modalWidth).
				Render(lineStyle.Render(line)))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	modelLines = append([]string{emptyLine}, modelLines...)
	modelLines = append(modelLines, emptyLine)

	var footerText string
	if filterMode {
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Select", "Esc", "Cancel")
	} else {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Select", "Esc", "Exit")
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := []string{titleSection, headerSection}
	sections = append(sections, modelLines...)
	sections = append(sections, footerSection)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}

// formatSize converts bytes to human-readable format. API-hosted models
// report zero and show no size.
func formatSize(bytes int64) string {
	if bytes == 0 {
		return ""
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func (s StoryView) handleModelSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if s.modelFilterMode {
		switch msg.String() {
		case "esc":
			s.modelFilterMode = false
			s.modelFilterInput.Blur()
			s.modelFilterInput.SetValue("")
			s.filteredModelList = nil
			s.selectedModelIdx = 0
			return s, nil
		case "enter":
			return s.selectModel()
		case "alt+j", "alt+down":
			if s.selectedModelIdx < len(s.getModelList())-1 {
				s.selectedModelIdx++
			}
			return s, nil
		case "alt+k", "alt+up":
			if s.selectedModelIdx > 0 {
				s.selectedModelIdx--
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.modelFilterInput, cmd = s.modelFilterInput.Update(msg)
		s.filteredModelList = filterModels(s.modelList, s.modelFilterInput.Value())
		s.selectedModelIdx = 0
		return s, cmd
	}

	switch msg.String() {
	case "esc":
		s.showModelSelector = false
		return s, nil

	case "j", "down":
		if s.selectedModelIdx < len(s.getModelList())-1 {
			s.selectedModelIdx++
		}
		return s, nil

	case "k", "up":
		if s.selectedModelIdx > 0 {
			s.selectedModelIdx--
		}
		return s, nil

	case "/":
		s.modelFilterMode = true
		s.modelFilterInput.SetValue("")
		s.modelFilterInput.Focus()
		s.filteredModelList = nil
		s.selectedModelIdx = 0
		return s, nil

	case "enter":
		return s.selectModel()
	}

	return s, nil
}

// selectModel activates the highlighted model, switching provider first when
// the model belongs to a different one.
func (s StoryView) selectModel() (tea.Model, tea.Cmd) {
	list := s.getModelList()
	if s.selectedModelIdx >= len(list) {
		return s, nil
	}
	info := list[s.selectedModelIdx]

	if info.Provider != "" {
		s.dataModel.SwitchProvider(info.Provider)
	}
	s.dataModel.Provider.SetModel(info.InternalName)

	s.showModelSelector = false
	s.modelFilterMode = false
	s.modelFilterInput.Blur()
	s.modelFilterInput.SetValue("")
	s.filteredModelList = nil
	return s, nil
}

// filterModels fuzzy-matches model names against the query.
func filterModels(models []ollama.ModelInfo, query string) []ollama.ModelInfo {
	if query == "" {
		return nil
	}

	names := make([]string, len(models))
	for i, info := range models {
		names[i] = info.Name
	}

	matches := fuzzy.Find(query, names)
	result := make([]ollama.ModelInfo, 0, len(matches))
	for _, m := range matches {
		result = append(result, models[m.Index])
	}
	return result
}
