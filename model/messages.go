package model

import (
	"fabula/branch"
	"fabula/ollama"
)

type StreamChunksCollectedMsg struct {
	Chunks       []string
	FullResponse string
}

type StreamErrorMsg struct {
	Err error
}

type DisplayChunkTickMsg struct{}

type ImageGeneratedMsg struct {
	Prompt string
	Ref    string
	Err    error
}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

type ModelsListMsg struct {
	Models       []ollama.ModelInfo
	Err          error
	ShowSelector bool
}

type BranchesListMsg struct {
	Branches []*branch.Branch
}

type BranchSwitchedMsg struct {
	Branch *branch.Branch
	Err    error
}

type BranchForkedMsg struct {
	BranchID string
}

type BranchDeletedMsg struct {
	Err error
}

type BranchRenamedMsg struct {
	Err error
}

type BranchSavedMsg struct{}

type BranchExportedMsg struct {
	Path      string
	Err       error
	Cancelled bool
}

type BranchImportedMsg struct {
	Branch *branch.Branch
	Err    error
}

type ConversationsClearedMsg struct{}

type SearchResultsMsg struct {
	Query   string
	Matches []branch.MessageMatch
}
