package ui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"fabula/branch"
)

func (s StoryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	// Spinners tick independently of the key handling below
	if s.exportingBranch {
		var cmd tea.Cmd
		s.exportSpinner, cmd = s.exportSpinner.Update(msg)
		if cmd != nil {
			return s, cmd
		}
	}
	if s.generatingImage {
		var cmd tea.Cmd
		s.imageSpinner, cmd = s.imageSpinner.Update(msg)
		if cmd != nil {
			return s, cmd
		}
	}
	if s.dataModel.Streaming {
		var cmd tea.Cmd
		s.loadingSpinner, cmd = s.loadingSpinner.Update(msg)
		if cmd != nil {
			s.updateViewportContent()
			return s, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return s.handleWindowSize(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)

	default:
		if m, cmd, handled := s.handleDataMsg(msg); handled {
			return m, cmd
		}
	}

	s.textarea, tiCmd = s.textarea.Update(msg)
	s.viewport, vpCmd = s.viewport.Update(msg)
	return s, tea.Batch(tiCmd, vpCmd)
}

func (s StoryView) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	s.width = msg.Width
	s.height = msg.Height

	headerHeight := 2 // title + separator
	footerHeight := s.textarea.Height() + 1

	if !s.ready {
		s.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
		s.ready = true

		sp := spinner.New()
		sp.Spinner = spinner.Dot
		sp.Style = NarratorStyle
		s.loadingSpinner = sp

		s.exportSpinner = spinner.New()
		s.exportSpinner.Spinner = spinner.Dot

		s.imageSpinner = spinner.New()
		s.imageSpinner.Spinner = spinner.Points
	} else {
		s.viewport.Width = msg.Width
		s.viewport.Height = msg.Height - headerHeight - footerHeight
	}

	s.textarea.SetWidth(msg.Width)

	// First sized frame: kick off markdown rendering for the loaded branch
	if s.dataModel.NeedsInitialRender {
		s.dataModel.NeedsInitialRender = false
		s.updateViewportContent()
		s.viewport.GotoBottom()
		return s, s.renderAllMarkdown()
	}

	s.updateViewportContent()
	return s, nil
}

func (s StoryView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal key handling takes priority over the main view
	if s.showAcknowledgeModal {
		switch msg.String() {
		case "enter", "esc":
			s.showAcknowledgeModal = false
		}
		return s, nil
	}

	if s.showHelp {
		s.showHelp = false
		return s, nil
	}

	if s.showAbout {
		s.showAbout = false
		return s, nil
	}

	if s.showModelSelector {
		return s.handleModelSelectorKey(msg)
	}

	if s.showBranchManager {
		return s.handleBranchManagerKey(msg)
	}

	if s.showGraphView {
		return s.handleGraphViewKey(msg)
	}

	if s.showMessageSearch {
		return s.handleMessageSearchKey(msg)
	}

	if s.rewindMode {
		return s.handleRewindKey(msg)
	}

	switch msg.String() {
	case "alt+q":
		s.dataModel.Quitting = true
		if cmd := s.saveBeforeQuit(); cmd != nil {
			return s, tea.Sequence(cmd, tea.Quit)
		}
		return s, tea.Quit

	case "alt+h":
		s.showHelp = true
		return s, nil

	case "alt+a":
		s.showAbout = true
		return s, nil

	case "alt+s":
		s.showBranchManager = true
		s.selectedBranchIdx = 0
		return s, s.dataModel.FetchBranchList()

	case "alt+t":
		s.showGraphView = true
		s.selectedGraphIdx = 0
		return s, s.dataModel.FetchBranchList()

	case "alt+m":
		// Reuse the cached list; refreshing on every open makes the
		// selector feel sluggish against remote providers
		if s.modelListCached && len(s.modelList) > 0 {
			s.showModelSelector = true
			s.selectedModelIdx = 0
			current := s.dataModel.Provider.GetModel()
			for i, info := range s.modelList {
				if info.InternalName == current {
					s.selectedModelIdx = i
					break
				}
			}
			return s, nil
		}
		return s, s.dataModel.FetchModelList(true)

	case "alt+f":
		s.showMessageSearch = true
		s.searchResults = nil
		s.selectedSearchIdx = 0
		s.messageSearchInput.SetValue("")
		s.messageSearchInput.Focus()
		return s, nil

	case "alt+r":
		if s.dataModel.Streaming || len(s.dataModel.Messages) == 0 {
			return s, nil
		}
		s.rewindMode = true
		s.highlightedMessageIdx = len(s.dataModel.Messages) - 1
		s.updateViewportContent()
		return s, nil

	case "alt+p":
		return s.startImageGeneration()

	case "alt+y":
		// Copy the last narrator message
		for i := len(s.dataModel.Messages) - 1; i >= 0; i-- {
			m := s.dataModel.Messages[i]
			if m.Role == "assistant" && m.Type != branch.TypeImage {
				clipboard.WriteAll(m.Content)
				break
			}
		}
		return s, nil

	case "alt+c":
		// Copy the whole story as plain text
		var sb strings.Builder
		for _, m := range s.dataModel.Messages {
			if m.Role == "system" || m.Type == branch.TypeImage {
				continue
			}
			sb.WriteString(m.Content)
			sb.WriteString("\n\n")
		}
		clipboard.WriteAll(sb.String())
		return s, nil

	case "alt+j", "alt+down":
		s.viewport.HalfPageDown()
		return s, nil
	case "alt+k", "alt+up":
		s.viewport.HalfPageUp()
		return s, nil
	case "alt+J", "pgdown":
		s.viewport.PageDown()
		return s, nil
	case "alt+K", "pgup":
		s.viewport.PageUp()
		return s, nil
	case "alt+g":
		s.viewport.GotoTop()
		return s, nil
	case "alt+G":
		s.viewport.GotoBottom()
		return s, nil

	case "esc":
		if s.dataModel.Streaming {
			return s.cancelStreaming()
		}
		return s, nil

	case "tab":
		// Insert spaces instead of moving focus
		s.textarea.SetValue(s.textarea.Value() + "    ")
		return s, nil

	case "enter":
		return s.sendPlayerAction()
	}

	var tiCmd tea.Cmd
	s.textarea, tiCmd = s.textarea.Update(msg)
	return s, tiCmd
}

// sendPlayerAction appends the typed action to the story and asks the
// narrator to continue it.
func (s StoryView) sendPlayerAction() (tea.Model, tea.Cmd) {
	if s.dataModel.Streaming {
		return s, nil
	}

	input := strings.TrimSpace(s.textarea.Value())
	if input == "" {
		return s, nil
	}

	s.dataModel.Messages = append(s.dataModel.Messages, Message{
		ID:        uuid.New().String(),
		Role:      "user",
		Content:   input,
		Type:      branch.TypeText,
		Timestamp: time.Now(),
	})
	s.dataModel.BranchDirty = true

	// Placeholder the spinner replaces while streaming
	s.dataModel.Messages = append(s.dataModel.Messages, Message{
		Role:    "system",
		Content: "loading",
	})

	s.dataModel.Streaming = true
	s.textarea.Reset()
	s.currentResp.Reset()
	s.chunks = nil
	s.chunkIndex = 0

	s.updateViewportContent()
	s.viewport.GotoBottom()

	return s, tea.Batch(
		s.renderMessageMarkdown(len(s.dataModel.Messages)-2),
		s.dataModel.SendToNarrator(),
		s.loadingSpinner.Tick,
	)
}

// cancelStreaming abandons an in-flight narrator response. Whatever chunks
// already arrived are discarded.
func (s StoryView) cancelStreaming() (tea.Model, tea.Cmd) {
	s.dataModel.Streaming = false
	s.chunks = nil
	s.chunkIndex = 0
	s.currentResp.Reset()

	// Replace the loading placeholder with a cancellation note
	if n := len(s.dataModel.Messages); n > 0 && s.dataModel.Messages[n-1].Role == "system" {
		s.dataModel.Messages[n-1].Content = "Response cancelled"
	}

	s.updateViewportContent()
	return s, nil
}

// handleRewindKey navigates the story in rewind mode. Enter forks at the
// highlighted message; the fork becomes the current branch.
func (s StoryView) handleRewindKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.rewindMode = false
		s.highlightedMessageIdx = -1
		s.updateViewportContent()
		return s, nil

	case "j", "down":
		if s.highlightedMessageIdx < len(s.dataModel.Messages)-1 {
			s.highlightedMessageIdx++
			s.updateViewportContent()
		}
		return s, nil

	case "k", "up":
		if s.highlightedMessageIdx > 0 {
			s.highlightedMessageIdx--
			s.updateViewportContent()
		}
		return s, nil

	case "enter":
		idx := s.highlightedMessageIdx
		s.rewindMode = false
		s.highlightedMessageIdx = -1

		var save tea.Cmd
		if s.dataModel.BranchDirty {
			save = s.dataModel.SaveCurrentBranch()
		}
		fork := s.dataModel.ForkBranch(idx)
		if save != nil {
			return s, tea.Sequence(save, fork)
		}
		return s, fork
	}
	return s, nil
}

func (s StoryView) startImageGeneration() (tea.Model, tea.Cmd) {
	if s.generatingImage || s.dataModel.Streaming {
		return s, nil
	}

	// Illustrate the most recent narrator prose
	var prompt string
	for i := len(s.dataModel.Messages) - 1; i >= 0; i-- {
		m := s.dataModel.Messages[i]
		if m.Role == "assistant" && m.Type != branch.TypeImage {
			prompt = m.Content
			break
		}
	}
	if prompt == "" {
		s.showAcknowledgeModal = true
		s.acknowledgeModalTitle = "Nothing to Illustrate"
		s.acknowledgeModalMsg = "The narrator hasn't written a scene yet."
		s.acknowledgeModalType = ModalInfo
		return s, nil
	}

	s.generatingImage = true
	return s, tea.Batch(
		s.dataModel.GenerateSceneImage(prompt),
		s.imageSpinner.Tick,
	)
}

// startBranchExport opens the export path input prefilled with a generated
// default.
func (s *StoryView) startBranchExport(b *branch.Branch) {
	s.branchExportMode = true
	s.branchExportInput.SetValue(branch.GenerateExportPath(b.Title))
	s.branchExportInput.Focus()
	s.branchExportInput.CursorEnd()
}

// runBranchExport kicks off the export command with a cancellable context.
func (s *StoryView) runBranchExport(branchID, path string) tea.Cmd {
	s.exportCancelCtx, s.exportCancelFunc = context.WithCancel(context.Background())
	s.exportingBranch = true
	return tea.Batch(
		s.dataModel.ExportBranchCmd(s.exportCancelCtx, branchID, path),
		s.exportSpinner.Tick,
	)
}
