package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("Fabula - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global Actions"),
		"• Alt+S         Story branches",
		"• Alt+T         Story tree",
		"• Alt+R         Rewind and fork",
		"• Alt+M         Model selection",
		"• Alt+F         Search all branches",
		"• Alt+P         Illustrate scene",
		"• Alt+A         About",
		"• Alt+H         Toggle this help",
		"• Alt+Q         Quit",
	)

	storyNavigation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Story Navigation"),
		"• Alt+J         Half page down",
		"• Alt+K         Half page up",
		"• Alt+Shift+J   Full page down",
		"• Alt+Shift+K   Full page up",
		"• Alt+G         Jump to top",
		"• Alt+Shift+G   Jump to bottom",
	)

	storyActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Story Actions"),
		"• Enter         Act",
		"• Alt+Enter     New line",
		"• Esc           Cancel narration",
		"• Alt+Y         Copy last narration",
		"• Alt+C         Copy whole story",
	)

	tips := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Tips"),
		"• Rewind forks a new branch; the old timeline stays",
		"• Branches save automatically after each narration",
		"• Text selection works! (Mouse)",
	)

	column1 := lipgloss.JoinVertical(
		lipgloss.Left,
		globalActions,
		"",
		tips,
	)

	column2 := lipgloss.JoinVertical(
		lipgloss.Left,
		storyNavigation,
		"",
		storyActions,
	)

	columnStyle := lipgloss.NewStyle().Width(52).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"    ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render("      Press Alt+H or Esc to close this help")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(116)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
