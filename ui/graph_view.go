package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"fabula/branch"
)

// graphNode is one row of the flattened story tree.
type graphNode struct {
	branch *branch.Branch
	depth  int
	last   bool // Last child of its parent, drawn with └─
}

// buildGraphNodes flattens the branch tree into display order. ParentID is
// provenance only, so a node whose parent was deleted becomes a root.
func buildGraphNodes(branches []*branch.Branch) []graphNode {
	byID := make(map[string]*branch.Branch, len(branches))
	for _, b := range branches {
		byID[b.ID] = b
	}

	children := make(map[string][]*branch.Branch)
	var roots []*branch.Branch
	for _, b := range branches {
		if b.ParentID != "" {
			if _, ok := byID[b.ParentID]; ok {
				children[b.ParentID] = append(children[b.ParentID], b)
				continue
			}
		}
		roots = append(roots, b)
	}

	// Oldest first so the tree reads top-down chronologically
	byAge := func(list []*branch.Branch) {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Timestamp != list[j].Timestamp {
				return list[i].Timestamp < list[j].Timestamp
			}
			return list[i].ID < list[j].ID
		})
	}
	byAge(roots)
	for _, kids := range children {
		byAge(kids)
	}

	var nodes []graphNode
	var walk func(b *branch.Branch, depth int, last bool)
	walk = func(b *branch.Branch, depth int, last bool) {
		nodes = append(nodes, graphNode{branch: b, depth: depth, last: last})
		kids := children[b.ID]
		for i, kid := range kids {
			walk(kid, depth+1, i == len(kids)-1)
		}
	}
	for i, root := range roots {
		walk(root, 0, i == len(roots)-1)
	}
	return nodes
}

func renderGraphView(nodes []graphNode, selectedIdx int, currentID string, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}
	modalHeight := height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Story Tree")

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(fmt.Sprintf("%d branches", len(nodes)))

	var lines []string
	maxLines := modalHeight - 8

	if len(nodes) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("Nothing to show yet."))
	} else {
		startIdx := 0
		endIdx := len(nodes)
		if len(nodes) > maxLines {
			if selectedIdx < maxLines/2 {
				endIdx = maxLines
			} else if selectedIdx >= len(nodes)-maxLines/2 {
				startIdx = len(nodes) - maxLines
			} else {
				startIdx = selectedIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(nodes); i++ {
			node := nodes[i]
			b := node.branch

			indicator := "  "
			if i == selectedIdx {
				indicator = "▶ "
			}

			connector := ""
			if node.depth > 0 {
				connector = strings.Repeat("   ", node.depth-1)
				if node.last {
					connector += "└─ "
				} else {
					connector += "├─ "
				}
			}

			title := runewidth.Truncate(b.Title, modalWidth-len(connector)-30, "...")

			meta := fmt.Sprintf("%d msgs  %s", len(b.Messages), formatTimeAgo(time.UnixMilli(b.Timestamp)))

			styled := title
			if i == selectedIdx {
				styled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(title)
			} else if b.ID == currentID {
				styled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(title)
			}

			line := fmt.Sprintf("  %s%s%s", indicator, DimStyle.Render(connector), styled)
			if b.ID == currentID {
				line += " " + lipgloss.NewStyle().Foreground(accentColor).Render("(current)")
			}
			line += "  " + DimStyle.Render(meta)

			lines = append(lines, lipgloss.NewStyle().Width(modalWidth).Render(line))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	lines = append([]string{emptyLine}, lines...)
	lines = append(lines, emptyLine)

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(FormatFooter("j/k", "Navigate", "Enter", "Switch", "Esc", "Close"))

	sections := []string{titleSection, headerSection}
	sections = append(sections, lines...)
	sections = append(sections, footerSection)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}

func (s StoryView) handleGraphViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.showGraphView = false
		return s, nil

	case "j", "down":
		if s.selectedGraphIdx < len(s.graphNodes)-1 {
			s.selectedGraphIdx++
		}
		return s, nil

	case "k", "up":
		if s.selectedGraphIdx > 0 {
			s.selectedGraphIdx--
		}
		return s, nil

	case "enter":
		if s.selectedGraphIdx >= len(s.graphNodes) {
			return s, nil
		}
		target := s.graphNodes[s.selectedGraphIdx].branch

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
	return s, nil
}
