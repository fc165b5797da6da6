package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType selects the accent color for acknowledge modals.
type ModalType int

const (
	ModalInfo ModalType = iota
	ModalWarning
	ModalError
)

// ConfirmationState drives the generic yes/no confirmation modal.
type ConfirmationState struct {
	Active  bool
	Title   string
	Message string
}

// centerLine pads a line to the given content width using display cells,
// not bytes, so emoji and CJK text stay centered.
func centerLine(line string, width int) string {
	lineWidth := runewidth.StringWidth(line)
	if lineWidth >= width {
		return line
	}
	leftPad := (width - lineWidth) / 2
	rightPad := width - lineWidth - leftPad
	return strings.Repeat(" ", leftPad) + line + strings.Repeat(" ", rightPad)
}

// RenderThreeSectionModal renders the standard borderless modal: a title,
// a body separated by a top border, and a footer separated by another.
func RenderThreeSectionModal(title string, bodyLines []string, footer string, accent lipgloss.Color, width, height int) string {
	contentWidth := 56

	titleStyle := lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Width(contentWidth).
		Align(lipgloss.Center).
		Padding(0, 2)

	bodyStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(dimColor).
		Width(contentWidth).
		Padding(1, 2)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(dimColor).
		Width(contentWidth).
		Align(lipgloss.Center).
		Padding(0, 2)

	var body strings.Builder
	for i, line := range bodyLines {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(centerLine(line, contentWidth-4))
	}

	modal := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		bodyStyle.Render(body.String()),
		footerStyle.Render(footer),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}

// RenderAcknowledgeModal shows a message the user can only dismiss.
func RenderAcknowledgeModal(title, message string, modalType ModalType, width, height int) string {
	accent := accentColor
	switch modalType {
	case ModalWarning:
		accent = warningColor
	case ModalError:
		accent = dangerColor
	}

	return RenderThreeSectionModal(
		title,
		wordWrap(message, 48),
		FormatFooter("Enter/Esc", "OK"),
		accent,
		width,
		height,
	)
}

// RenderConfirmationModal shows a yes/no question.
func RenderConfirmationModal(state ConfirmationState, width, height int) string {
	return RenderThreeSectionModal(
		state.Title,
		wordWrap(state.Message, 48),
		FormatFooter("y", "Yes", "n/Esc", "No"),
		warningColor,
		width,
		height,
	)
}

// renderSpinnerModal shows an in-progress operation with a cancel hint.
func renderSpinnerModal(title, message string, sp spinner.Model, width, height int) string {
	return RenderThreeSectionModal(
		title,
		[]string{sp.View() + " " + message},
		FormatFooter("Esc", "Cancel"),
		accentColor,
		width,
		height,
	)
}

// wordWrap breaks text into lines no wider than limit display cells. Words
// longer than the limit get their own line rather than being split.
func wordWrap(text string, limit int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= limit {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	return lines
}
