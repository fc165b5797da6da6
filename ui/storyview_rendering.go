package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"fabula/branch"
	"fabula/config"
	appmodel "fabula/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

func (s *StoryView) updateViewportContent() {
	if len(s.dataModel.Messages) == 0 {
		s.viewport.SetContent("The page is blank. Type an action to begin your story.")
		return
	}

	var content strings.Builder

	for i, msg := range s.dataModel.Messages {
		highlightPrefix := ""
		if s.rewindMode && i == s.highlightedMessageIdx {
			highlightPrefix = HighlightStyle.Render(">>> ")
		}

		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		var roleStyle = DimStyle
		var roleName string
		switch msg.Role {
		case "user":
			roleStyle = PlayerStyle
			roleName = "You"
		case "assistant":
			roleStyle = NarratorStyle
			roleName = "Narrator"
		default:
			roleStyle = DimStyle
			roleName = "System"
		}

		role := roleStyle.Render(roleName)

		renderedContent := msg.Rendered
		if renderedContent == "" {
			renderedContent = msg.Content
		}

		// Loading placeholder gets the spinner
		if msg.Role == "system" && msg.Content == "loading" {
			content.WriteString(fmt.Sprintf("%s %s %s\n\n", timestamp, role, s.loadingSpinner.View()))
			continue
		}

		// Scene illustrations are references, not prose
		if msg.Type == branch.TypeImage {
			content.WriteString(fmt.Sprintf("%s%s %s\n%s\n\n",
				highlightPrefix, timestamp, NarratorStyle.Render("Illustration"),
				HighlightStyle.Render("🖼  "+msg.Content)))
			continue
		}

		// Player actions with vertical bar formatting
		if msg.Role == "user" {
			content.WriteString(formatPlayerMessage(highlightPrefix, timestamp, role, renderedContent))
			continue
		}

		content.WriteString(fmt.Sprintf("%s%s %s\n%s\n\n", highlightPrefix, timestamp, role, renderedContent))
	}

	s.viewport.SetContent(content.String())
}

// updateStreamingMessage re-renders the viewport with the partially revealed
// narrator response appended.
func (s *StoryView) updateStreamingMessage() {
	var content strings.Builder

	for _, msg := range s.dataModel.Messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		if msg.Role == "user" {
			role := PlayerStyle.Render("You")
			rendered := msg.Rendered
			if rendered == "" {
				rendered = msg.Content
			}
			content.WriteString(formatPlayerMessage("", timestamp, role, rendered))
			continue
		}
		if msg.Role == "system" && msg.Content == "loading" {
			continue
		}

		role := NarratorStyle.Render("Narrator")
		if msg.Role != "assistant" {
			role = DimStyle.Render("System")
		}
		rendered := msg.Rendered
		if rendered == "" {
			rendered = msg.Content
		}
		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, rendered))
	}

	timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
	role := NarratorStyle.Render("Narrator")

	// Spinner until the first chunk lands, then text with a cursor
	streamContent := s.loadingSpinner.View()
	if s.currentResp.String() != "" {
		streamContent = s.currentResp.String() + "▋"
	}

	content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, streamContent))

	s.viewport.SetContent(content.String())
	s.viewport.GotoBottom()
}

// formatPlayerMessage prefixes every line of a player action with a bold
// green vertical bar.
func formatPlayerMessage(highlightPrefix, timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// renderMessageMarkdown renders one message's markdown off the Update loop.
func (s StoryView) renderMessageMarkdown(messageIndex int) tea.Cmd {
	if messageIndex < 0 || messageIndex >= len(s.dataModel.Messages) {
		return nil
	}
	msg := s.dataModel.Messages[messageIndex]
	if msg.Type == branch.TypeImage {
		return nil
	}

	content := msg.Content
	width := s.width

	return func() tea.Msg {
		start := time.Now()

		// Strip markdown link syntax [text](url) → url so links render as
		// plain URLs the terminal can detect
		content = preprocessLinks(content)

		// Autolink disabled keeps plain URLs as plain text
		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		processed := postProcessMarkdown(string(rendered), width)

		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] markdown render for message %d took %v", messageIndex, time.Since(start))
		}

		return appmodel.MarkdownRenderedMsg{
			MessageIndex: messageIndex,
			Rendered:     processed,
		}
	}
}

// renderAllMarkdown kicks off a render for every prose message. Used after
// loading a branch, when nothing is cached yet.
func (s StoryView) renderAllMarkdown() tea.Cmd {
	var cmds []tea.Cmd
	for i, msg := range s.dataModel.Messages {
		if msg.Role == "system" || msg.Type == branch.TypeImage {
			continue
		}
		if cmd := s.renderMessageMarkdown(i); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	rendered = frameCodeBlocks(rendered, width)
	return rendered
}

func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Replace: \x1b[44;3m...text...\x1b[0m (Blue BG + Italic)
	// With:    \x1b[31m...text...\x1b[0m (Red text)
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		// Skip code blocks (they carry a ┃ prefix from the renderer)
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the renderer's per-line ┃ prefixes with
// horizontal rules above and below each block.
func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	for _, line := range lines {
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLines = []string{}
				result = append(result, "")

				label := "[code]"
				lineLen := width - 4
				leftLen := (lineLen - len(label)) / 2
				rightLen := lineLen - len(label) - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border, "")
			}

			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
		} else {
			if inCodeBlock {
				result = append(result, codeBlockLines...)
				result = append(result, "")
				result = append(result, darkGray+strings.Repeat("━", width-4)+reset, "")

				codeBlockLines = nil
				inCodeBlock = false
			}
			result = append(result, line)
		}
	}

	if inCodeBlock && len(codeBlockLines) > 0 {
		result = append(result, codeBlockLines...)
		result = append(result, "")
		result = append(result, darkGray+strings.Repeat("━", width-4)+reset, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, "┃")
	if idx >= 0 {
		after := idx + len("┃")
		if after < len(line) && line[after] == ' ' {
			after++
		}
		if after < len(line) {
			return line[after:]
		}
		return ""
	}
	return line
}

// stripANSI removes escape codes for accurate length calculation.
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
