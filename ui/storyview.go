package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fabula/branch"
	"fabula/config"
	appmodel "fabula/model"
	"fabula/ollama"
)

// Message is the UI-layer message type, aliased from the model package.
type Message = appmodel.Message

// StoryView is the Bubble Tea model for the whole application. It owns the
// terminal state and delegates data operations to the core model.
type StoryView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Streaming UI state
	currentResp *strings.Builder // Pointer to avoid copy panic
	showHelp    bool

	// Typewriter effect fields
	chunks     []string
	chunkIndex int

	loadingSpinner spinner.Model

	// Model selector
	showModelSelector bool
	modelList         []ollama.ModelInfo
	selectedModelIdx  int
	modelListCached   bool
	modelFilterMode   bool
	modelFilterInput  textinput.Model
	filteredModelList []ollama.ModelInfo

	// Branch manager UI
	showBranchManager  bool
	branchList         []*branch.Branch
	selectedBranchIdx  int
	branchRenameMode   bool
	branchRenameInput  textinput.Model
	branchFilterMode   bool
	branchFilterInput  textinput.Model
	filteredBranchList []*branch.Branch
	confirmDelete      *branch.Branch
	confirmClearAll    bool

	// Export state
	branchExportMode  bool
	branchExportInput textinput.Model
	exportingBranch   bool
	exportSpinner     spinner.Model
	exportCancelCtx   context.Context
	exportCancelFunc  context.CancelFunc

	// Import state
	branchImportMode  bool
	branchImportInput textinput.Model
	importSuccess     *branch.Branch

	// Story graph view
	showGraphView    bool
	graphNodes       []graphNode
	selectedGraphIdx int

	// Rewind mode: pick a past message and fork the story there
	rewindMode            bool
	highlightedMessageIdx int

	// Message search
	showMessageSearch  bool
	messageSearchInput textinput.Model
	searchResults      []branch.MessageMatch
	selectedSearchIdx  int

	// Scene image generation
	generatingImage bool
	imageSpinner    spinner.Model

	// About modal
	showAbout bool

	// Acknowledge modal (warnings/errors requiring only acknowledgement)
	showAcknowledgeModal  bool
	acknowledgeModalTitle string
	acknowledgeModalMsg   string
	acknowledgeModalType  ModalType
}

// NewStoryView builds the initial UI state over an already-constructed core
// model.
func NewStoryView(dataModel *appmodel.Model) StoryView {
	ta := textarea.New()
	ta.Placeholder = "What do you do next?"
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	branchFilterInput := textinput.New()
	branchFilterInput.Prompt = "Filter: "
	branchFilterInput.CharLimit = 64

	modelFilterInput := textinput.New()
	modelFilterInput.Prompt = "Filter: "
	modelFilterInput.CharLimit = 64

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	branchRenameInput := textinput.New()
	branchRenameInput.CharLimit = 100

	branchExportInput := textinput.New()
	branchExportInput.CharLimit = 200

	branchImportInput := textinput.New()
	branchImportInput.CharLimit = 200

	return StoryView{
		dataModel:             dataModel,
		textarea:              ta,
		viewport:              vp,
		currentResp:           &strings.Builder{},
		branchFilterInput:     branchFilterInput,
		modelFilterInput:      modelFilterInput,
		messageSearchInput:    messageSearchInput,
		branchRenameInput:     branchRenameInput,
		branchExportInput:     branchExportInput,
		branchImportInput:     branchImportInput,
		highlightedMessageIdx: -1,
	}
}

func (s StoryView) Init() tea.Cmd {
	// Markdown rendering waits for WindowSizeMsg to get correct width
	return tea.Batch(
		textarea.Blink,
		s.dataModel.FetchModelList(false), // Background fetch, don't show selector
	)
}

func (s StoryView) View() string {
	if !s.ready {
		return "Loading Fabula..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Acknowledge modal
	// 2. Help
	// 3. Model selector
	// 4. Branch manager (and its sub-modals)
	// 5. Graph view
	// 6. Search
	// 7. About

	if s.showAcknowledgeModal {
		return RenderAcknowledgeModal(
			s.acknowledgeModalTitle,
			s.acknowledgeModalMsg,
			s.acknowledgeModalType,
			s.width,
			s.height,
		)
	}

	if s.showHelp {
		return renderHelpModal(s.width, s.height)
	}

	if s.showModelSelector {
		multiProvider := len(s.dataModel.Providers) > 1
		return renderModelSelector(s.modelList, s.selectedModelIdx, s.dataModel.Provider.GetModel(), s.modelFilterMode, s.modelFilterInput, s.filteredModelList, multiProvider, s.width, s.height)
	}

	if s.showBranchManager {
		return s.renderBranchManager()
	}

	if s.showGraphView {
		currentID := s.dataModel.Store.CurrentBranch().ID
		return renderGraphView(s.graphNodes, s.selectedGraphIdx, currentID, s.width, s.height)
	}

	if s.showMessageSearch {
		return renderMessageSearch(s.messageSearchInput, s.searchResults, s.selectedSearchIdx, s.width, s.height)
	}

	if s.showAbout {
		return renderAboutModal(s.width, s.height, s.dataModel.Version, s.dataModel.License)
	}

	// Title bar - "Fabula - Model - Branch Title"
	appText := NarratorStyle.Render("Fabula")
	modelText := TitleStyle.Render(fmt.Sprintf(" - %s", s.dataModel.Provider.GetDisplayName()))
	current := s.dataModel.Store.CurrentBranch()
	branchText := PlayerStyle.Render(fmt.Sprintf(" - %s", current.Title))

	title := appText + modelText + branchText

	if s.generatingImage {
		title += TitleStyle.Render(fmt.Sprintf(" | painting %s", s.imageSpinner.View()))
	}
	if s.rewindMode {
		title += SelectedStyle.Render("  [rewind: j/k pick a moment, Enter fork, Esc cancel]")
	}

	separator := ""

	viewportView := s.viewport.View()
	inputView := s.textarea.View()

	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("Alt+Q %s  Alt+S %s  Alt+T %s  Alt+R %s  Alt+M %s  Alt+F %s  Alt+P %s  Enter %s  Alt+H %s",
		descStyle.Render("Quit"),
		descStyle.Render("Branches"),
		descStyle.Render("Tree"),
		descStyle.Render("Rewind"),
		descStyle.Render("Models"),
		descStyle.Render("Search"),
		descStyle.Render("Illustrate"),
		descStyle.Render("Act"),
		descStyle.Render("Help"),
	)
	statusBar = StatusStyle.Render(statusBar)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		viewportView,
		inputView,
		statusBar,
	)
}

func (s StoryView) getBranchList() []*branch.Branch {
	if s.branchFilterMode && len(s.filteredBranchList) > 0 {
		return s.filteredBranchList
	}
	return s.branchList
}

func (s StoryView) getModelList() []ollama.ModelInfo {
	if s.modelFilterMode && len(s.filteredModelList) > 0 {
		return s.filteredModelList
	}
	return s.modelList
}

func (s *StoryView) closeAllModals() {
	s.showAcknowledgeModal = false
	s.showHelp = false
	s.showBranchManager = false
	s.showModelSelector = false
	s.showMessageSearch = false
	s.showGraphView = false
	s.showAbout = false

	s.branchRenameMode = false
	s.branchExportMode = false
	s.branchImportMode = false
	s.branchFilterMode = false
	s.confirmDelete = nil
	s.confirmClearAll = false

	s.modelFilterMode = false
	s.rewindMode = false
	s.highlightedMessageIdx = -1

	if s.branchRenameInput.Focused() {
		s.branchRenameInput.Blur()
	}
	if s.branchExportInput.Focused() {
		s.branchExportInput.Blur()
	}
	if s.branchImportInput.Focused() {
		s.branchImportInput.Blur()
	}
	if s.branchFilterInput.Focused() {
		s.branchFilterInput.Blur()
	}
	if s.modelFilterInput.Focused() {
		s.modelFilterInput.Blur()
	}
	if s.messageSearchInput.Focused() {
		s.messageSearchInput.Blur()
	}
}

// saveBeforeQuit flushes the current branch if the user acted since the last
// save.
func (s *StoryView) saveBeforeQuit() tea.Cmd {
	if !s.dataModel.BranchDirty {
		return nil
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] flushing dirty branch before quit")
	}
	return s.dataModel.SaveCurrentBranch()
}
