package ui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"fabula/branch"
	"fabula/config"
	appmodel "fabula/model"
)

// handleDataMsg processes messages produced by the core model's commands.
// The boolean return reports whether the message was consumed.
func (s StoryView) handleDataMsg(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case appmodel.StreamChunksCollectedMsg:
		m, cmd := s.handleStreamCollected(msg)
		return m, cmd, true

	case appmodel.DisplayChunkTickMsg:
		m, cmd := s.handleDisplayTick()
		return m, cmd, true

	case appmodel.StreamErrorMsg:
		m, cmd := s.handleStreamError(msg)
		return m, cmd, true

	case appmodel.MarkdownRenderedMsg:
		if msg.MessageIndex >= 0 && msg.MessageIndex < len(s.dataModel.Messages) {
			s.dataModel.Messages[msg.MessageIndex].Rendered = msg.Rendered
			s.updateViewportContent()
			if s.highlightedMessageIdx < 0 {
				s.viewport.GotoBottom()
			}
		}
		return s, nil, true

	case appmodel.ModelsListMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] model list fetch failed: %v", msg.Err)
			}
			if msg.ShowSelector {
				s.showAcknowledgeModal = true
				s.acknowledgeModalTitle = "Models Unavailable"
				s.acknowledgeModalMsg = fmt.Sprintf("Could not list models: %v", msg.Err)
				s.acknowledgeModalType = ModalError
			}
			return s, nil, true
		}

		s.modelList = msg.Models
		s.modelListCached = true

		if msg.ShowSelector {
			s.showModelSelector = true
			s.selectedModelIdx = 0
			current := s.dataModel.Provider.GetModel()
			for i, info := range s.modelList {
				if info.InternalName == current {
					s.selectedModelIdx = i
					break
				}
			}
		}
		return s, nil, true

	case appmodel.BranchesListMsg:
		s.branchList = msg.Branches
		if s.selectedBranchIdx >= len(s.branchList) {
			s.selectedBranchIdx = len(s.branchList) - 1
		}
		if s.selectedBranchIdx < 0 {
			s.selectedBranchIdx = 0
		}
		if s.showGraphView {
			s.graphNodes = buildGraphNodes(msg.Branches)
			if s.selectedGraphIdx >= len(s.graphNodes) {
				s.selectedGraphIdx = 0
			}
		}
		return s, nil, true

	case appmodel.BranchSwitchedMsg:
		if msg.Err != nil {
			s.showAcknowledgeModal = true
			s.acknowledgeModalType = ModalError
			if errors.Is(msg.Err, branch.ErrBranchNotFound) {
				s.acknowledgeModalTitle = "Branch Missing"
				s.acknowledgeModalMsg = "That branch no longer exists. The list has been refreshed."
			} else {
				s.acknowledgeModalTitle = "Switch Failed"
				s.acknowledgeModalMsg = msg.Err.Error()
			}
			return s, s.dataModel.FetchBranchList(), true
		}

		s.dataModel.LoadBranchMessages(msg.Branch)
		s.closeAllModals()
		s.updateViewportContent()
		s.viewport.GotoBottom()
		return s, s.renderAllMarkdown(), true

	case appmodel.BranchForkedMsg:
		// The fork exists; make it current and load it
		return s, s.dataModel.SwitchBranchCmd(msg.BranchID), true

	case appmodel.BranchDeletedMsg:
		if msg.Err != nil {
			s.showAcknowledgeModal = true
			s.acknowledgeModalType = ModalWarning
			if errors.Is(msg.Err, branch.ErrLastBranch) {
				s.acknowledgeModalTitle = "Cannot Delete"
				s.acknowledgeModalMsg = "This is the only branch. Every story needs at least one timeline."
			} else {
				s.acknowledgeModalTitle = "Delete Failed"
				s.acknowledgeModalMsg = msg.Err.Error()
			}
		}
		// Deletion may have moved the current pointer
		s.dataModel.LoadBranchMessages(s.dataModel.Store.CurrentBranch())
		s.updateViewportContent()
		return s, s.dataModel.FetchBranchList(), true

	case appmodel.BranchRenamedMsg:
		if msg.Err != nil {
			s.showAcknowledgeModal = true
			s.acknowledgeModalTitle = "Rename Failed"
			s.acknowledgeModalMsg = msg.Err.Error()
			s.acknowledgeModalType = ModalError
		}
		return s, s.dataModel.FetchBranchList(), true

	case appmodel.BranchSavedMsg:
		if s.dataModel.Quitting {
			return s, tea.Quit, true
		}
		return s, nil, true

	case appmodel.BranchExportedMsg:
		s.exportingBranch = false
		s.exportCancelFunc = nil
		if msg.Cancelled {
			return s, nil, true
		}
		if msg.Err != nil {
			s.showAcknowledgeModal = true
			s.acknowledgeModalTitle = "Export Failed"
			s.acknowledgeModalMsg = msg.Err.Error()
			s.acknowledgeModalType = ModalError
			return s, nil, true
		}
		s.showAcknowledgeModal = true
		s.acknowledgeModalTitle = "Branch Exported"
		s.acknowledgeModalMsg = fmt.Sprintf("Saved to %s", msg.Path)
		s.acknowledgeModalType = ModalInfo
		return s, nil, true

	case appmodel.BranchImportedMsg:
		if msg.Err != nil {
			s.showAcknowledgeModal = true
			s.acknowledgeModalTitle = "Import Failed"
			s.acknowledgeModalMsg = msg.Err.Error()
			s.acknowledgeModalType = ModalError
			return s, nil, true
		}
		s.importSuccess = msg.Branch
		return s, s.dataModel.FetchBranchList(), true

	case appmodel.ConversationsClearedMsg:
		// The store recreates the welcome branch on next read
		s.dataModel.LoadBranchMessages(s.dataModel.Store.CurrentBranch())
		s.closeAllModals()
		s.updateViewportContent()
		s.viewport.GotoBottom()
		return s, s.renderAllMarkdown(), true

	case appmodel.SearchResultsMsg:
		s.searchResults = msg.Matches
		s.selectedSearchIdx = 0
		return s, nil, true

	case appmodel.ImageGeneratedMsg:
		m, cmd := s.handleImageGenerated(msg)
		return m, cmd, true
	}

	return s, nil, false
}

func (s StoryView) handleStreamCollected(msg appmodel.StreamChunksCollectedMsg) (tea.Model, tea.Cmd) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] narrator response collected - %d chunks", len(msg.Chunks))
	}

	// Ignore if user cancelled while the request was in flight
	if !s.dataModel.Streaming {
		return s, nil
	}

	// Remove the loading placeholder
	if n := len(s.dataModel.Messages); n > 0 && s.dataModel.Messages[n-1].Role == "system" {
		s.dataModel.Messages = s.dataModel.Messages[:n-1]
	}

	s.chunks = msg.Chunks
	s.chunkIndex = 0
	s.currentResp.Reset()

	// Brief delay before the typewriter starts so the spinner is visible
	return s, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
		return appmodel.DisplayChunkTickMsg{}
	})
}

func (s StoryView) handleDisplayTick() (tea.Model, tea.Cmd) {
	if !s.dataModel.Streaming {
		return s, nil
	}

	if s.chunkIndex >= len(s.chunks) {
		// All chunks revealed - finalize the narrator message
		fullResp := s.currentResp.String()
		s.dataModel.Streaming = false
		s.chunks = nil
		s.chunkIndex = 0
		s.currentResp.Reset()

		s.dataModel.Messages = append(s.dataModel.Messages, Message{
			ID:        uuid.New().String(),
			Role:      "assistant",
			Content:   fullResp,
			Type:      branch.TypeText,
			Rendered:  fullResp, // Plain text until the markdown pass lands
			Timestamp: time.Now(),
			Model:     s.dataModel.Provider.GetModel(),
		})
		s.dataModel.BranchDirty = true

		messageIndex := len(s.dataModel.Messages) - 1
		s.updateViewportContent()
		s.viewport.GotoBottom()

		return s, tea.Batch(
			s.renderMessageMarkdown(messageIndex),
			s.dataModel.SaveCurrentBranch(),
		)
	}

	chunk := s.chunks[s.chunkIndex]
	s.chunkIndex++
	s.currentResp.WriteString(chunk)
	s.updateStreamingMessage()

	// 30ms between chunks, first chunk nearly immediate
	delay := 30 * time.Millisecond
	if s.chunkIndex == 1 {
		delay = time.Millisecond
	}

	return s, tea.Tick(delay, func(time.Time) tea.Msg {
		return appmodel.DisplayChunkTickMsg{}
	})
}

func (s StoryView) handleStreamError(msg appmodel.StreamErrorMsg) (tea.Model, tea.Cmd) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] narrator error: %v", msg.Err)
	}

	s.dataModel.Streaming = false
	s.currentResp.Reset()

	if n := len(s.dataModel.Messages); n > 0 && s.dataModel.Messages[n-1].Role == "system" {
		s.dataModel.Messages = s.dataModel.Messages[:n-1]
	}

	displayMsg := fmt.Sprintf("❌ Error: %v\n\nCheck your provider configuration and connectivity.", msg.Err)
	s.dataModel.Messages = append(s.dataModel.Messages, Message{
		Role:      "system",
		Content:   displayMsg,
		Rendered:  displayMsg,
		Timestamp: time.Now(),
	})
	s.updateViewportContent()
	s.viewport.GotoBottom()
	return s, nil
}

func (s StoryView) handleImageGenerated(msg appmodel.ImageGeneratedMsg) (tea.Model, tea.Cmd) {
	s.generatingImage = false

	if msg.Err != nil {
		s.showAcknowledgeModal = true
		s.acknowledgeModalType = ModalWarning
		if errors.Is(msg.Err, appmodel.ErrNoImageProvider) {
			s.acknowledgeModalTitle = "No Illustrator"
			s.acknowledgeModalMsg = "No configured provider can generate images. Add an OpenAI API key to enable scene illustrations."
		} else {
			s.acknowledgeModalTitle = "Illustration Failed"
			s.acknowledgeModalMsg = msg.Err.Error()
		}
		return s, nil
	}

	s.dataModel.Messages = append(s.dataModel.Messages, Message{
		ID:        uuid.New().String(),
		Role:      "assistant",
		Content:   msg.Ref,
		Type:      branch.TypeImage,
		Timestamp: time.Now(),
	})
	s.dataModel.BranchDirty = true

	s.updateViewportContent()
	s.viewport.GotoBottom()
	return s, s.dataModel.SaveCurrentBranch()
}
