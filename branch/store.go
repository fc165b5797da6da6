package branch

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/google/uuid"

	"fabula/storage"
)

// Persisted keys. The current branch id is stored twice: inside the root
// blob and under its own key for cheap lookup without parsing the blob.
const (
	stateKey         = "conversation_state"
	currentBranchKey = "current_branch_id"
)

var (
	// ErrBranchNotFound is returned when an operation names a branch id
	// that does not exist.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrLastBranch is returned when deleting the only remaining branch,
	// which would leave the conversation with no timeline at all.
	ErrLastBranch = errors.New("cannot delete the last branch")
)

// welcomeText opens every fresh conversation.
const welcomeText = "You stand at the threshold of a story not yet told. " +
	"Name your hero, describe the world, or simply say where we begin."

// Store is the sole authority over conversation branches. It assumes a
// single logical writer: each operation loads state, mutates it, and
// persists before returning, so sequential callers observe a linear
// history. Persistence faults degrade to in-memory operation rather than
// failing the call.
type Store struct {
	kv    storage.KV
	state *ConversationState
}

// NewStore creates a store over the given persistence medium. A nil kv
// degrades to storage.NullKV: everything works for the life of the process
// but nothing survives a restart.
func NewStore(kv storage.KV) *Store {
	if kv == nil {
		kv = storage.NewNullKV()
	}
	return &Store{kv: kv}
}

// ensureState loads persisted state on first access, treating a missing,
// unreadable, or structurally invalid blob as "no state" and initializing a
// fresh conversation with a single welcome branch.
func (s *Store) ensureState() *ConversationState {
	if s.state != nil {
		return s.state
	}

	if raw, ok, err := s.kv.Load(stateKey); err == nil && ok {
		var state ConversationState
		if json.Unmarshal([]byte(raw), &state) == nil && stateValid(&state) {
			s.state = &state
			return s.state
		}
		// Corrupt blob: fall through and re-initialize
	}

	s.state = initialState()
	s.persist()
	return s.state
}

// stateValid checks the invariants the rest of the store relies on: at
// least one branch, and a current pointer that resolves.
func stateValid(state *ConversationState) bool {
	if len(state.Branches) == 0 {
		return false
	}
	branch, ok := state.Branches[state.CurrentBranchID]
	return ok && branch != nil
}

func initialState() *ConversationState {
	ts := now()
	welcome := &Branch{
		ID:        uuid.New().String(),
		Title:     "New Story",
		Timestamp: ts,
		Messages: []Message{{
			ID:        uuid.New().String(),
			Role:      RoleAssistant,
			Content:   welcomeText,
			Type:      TypeText,
			Timestamp: ts,
		}},
	}

	return &ConversationState{
		Branches:        map[string]*Branch{welcome.ID: welcome},
		CurrentBranchID: welcome.ID,
		LastUpdated:     ts,
	}
}

// persist writes the root blob and the redundant current-branch key in
// lockstep. Write failures are swallowed: the store keeps serving from its
// in-memory state and the next successful write catches persistence up.
func (s *Store) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		return
	}
	if err := s.kv.Save(stateKey, string(data)); err != nil {
		return
	}
	_ = s.kv.Save(currentBranchKey, s.state.CurrentBranchID)
}

// CurrentBranch returns the branch the user is playing, initializing a
// fresh welcome conversation when no usable state exists. It never fails.
func (s *Store) CurrentBranch() *Branch {
	state := s.ensureState()
	return state.Branches[state.CurrentBranchID]
}

// SaveMessages replaces the current branch's messages with a copy of the
// given sequence and persists. The current branch pointer is unchanged.
func (s *Store) SaveMessages(messages []Message) {
	state := s.ensureState()
	branch := state.Branches[state.CurrentBranchID]

	branch.Messages = copyMessages(messages)
	branch.Timestamp = now()
	state.LastUpdated = branch.Timestamp

	s.persist()
}

// CreateBranch forks the conversation: the new branch owns a copy of the
// given messages (typically the current branch's prefix up to and including
// forkMessageID), records the branch it was forked from, and becomes
// current. The source branch is never mutated. Returns the new branch's id.
func (s *Store) CreateBranch(forkMessageID string, messages []Message) string {
	state := s.ensureState()

	title := ""
	for _, msg := range messages {
		if msg.ID == forkMessageID {
			title = msg.Content
			break
		}
	}

	ts := now()
	forked := &Branch{
		ID:        uuid.New().String(),
		Messages:  copyMessages(messages),
		ParentID:  state.CurrentBranchID,
		Timestamp: ts,
		Title:     TitleFromContent(title),
	}

	state.Branches[forked.ID] = forked
	state.CurrentBranchID = forked.ID
	state.LastUpdated = ts

	s.persist()
	return forked.ID
}

// SwitchBranch makes branchID current. Returns ErrBranchNotFound, leaving
// state untouched, when the id does not key an existing branch.
func (s *Store) SwitchBranch(branchID string) (*Branch, error) {
	state := s.ensureState()

	branch, ok := state.Branches[branchID]
	if !ok {
		return nil, ErrBranchNotFound
	}

	state.CurrentBranchID = branchID
	state.LastUpdated = now()

	s.persist()
	return branch, nil
}

// Branches returns every branch ordered by last-modified time, newest
// first. Read-only: no persistence side effect.
func (s *Store) Branches() []*Branch {
	state := s.ensureState()

	branches := make([]*Branch, 0, len(state.Branches))
	for _, branch := range state.Branches {
		branches = append(branches, branch)
	}

	sort.Slice(branches, func(i, j int) bool {
		if branches[i].Timestamp != branches[j].Timestamp {
			return branches[i].Timestamp > branches[j].Timestamp
		}
		return branches[i].ID < branches[j].ID
	})

	return branches
}

// DeleteBranch removes a branch. The last remaining branch cannot be
// deleted (ErrLastBranch). When the deleted branch was current, the most
// recently touched survivor becomes current. Children forked from the
// deleted branch keep their parentId as a dangling provenance reference.
func (s *Store) DeleteBranch(branchID string) error {
	state := s.ensureState()

	if _, ok := state.Branches[branchID]; !ok {
		return ErrBranchNotFound
	}
	if len(state.Branches) == 1 {
		return ErrLastBranch
	}

	delete(state.Branches, branchID)

	if state.CurrentBranchID == branchID {
		state.CurrentBranchID = s.Branches()[0].ID
	}
	state.LastUpdated = now()

	s.persist()
	return nil
}

// RemoveBranch is an alias for DeleteBranch, kept for callers that speak
// the remove vocabulary.
func (s *Store) RemoveBranch(branchID string) error {
	return s.DeleteBranch(branchID)
}

// RenameBranch updates a branch's title.
func (s *Store) RenameBranch(branchID, title string) error {
	state := s.ensureState()

	branch, ok := state.Branches[branchID]
	if !ok {
		return ErrBranchNotFound
	}

	branch.Title = title
	state.LastUpdated = now()

	s.persist()
	return nil
}

// ClearAllConversations erases all persisted state and drops the in-memory
// cache. It does not recreate anything: the next read lazily re-initializes
// the welcome conversation. Clearing twice is the same as clearing once.
func (s *Store) ClearAllConversations() {
	_ = s.kv.Remove(stateKey)
	_ = s.kv.Remove(currentBranchKey)
	s.state = nil
}
