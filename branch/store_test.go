package branch

import (
	"testing"

	"fabula/storage"
)

func newTestStore() *Store {
	return NewStore(storage.NewMemoryKV())
}

func userMessage(id, content string) Message {
	return Message{ID: id, Role: RoleUser, Content: content, Type: TypeText, Timestamp: now()}
}

func TestCurrentBranchInitializesWelcomeState(t *testing.T) {
	store := newTestStore()

	current := store.CurrentBranch()
	if current == nil {
		t.Fatal("expected a current branch")
	}
	if len(current.Messages) != 1 {
		t.Fatalf("expected exactly one welcome message, got %d", len(current.Messages))
	}
	if current.Messages[0].Role != RoleAssistant {
		t.Errorf("expected welcome message from assistant, got %q", current.Messages[0].Role)
	}
	if len(store.Branches()) != 1 {
		t.Errorf("expected exactly one branch, got %d", len(store.Branches()))
	}
}

func TestSaveMessagesReplacesCurrentBranch(t *testing.T) {
	store := newTestStore()
	store.CurrentBranch()

	msgs := []Message{
		userMessage("m1", "I draw my sword."),
		{ID: "m2", Role: RoleAssistant, Content: "The blade sings.", Type: TypeText, Timestamp: now()},
	}
	store.SaveMessages(msgs)

	current := store.CurrentBranch()
	if len(current.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(current.Messages))
	}
	if current.Messages[1].Content != "The blade sings." {
		t.Errorf("unexpected message content: %q", current.Messages[1].Content)
	}
}

func TestSaveMessagesCopiesInput(t *testing.T) {
	store := newTestStore()

	msgs := []Message{userMessage("m1", "original")}
	store.SaveMessages(msgs)

	// Mutating the caller's slice must not reach into the store
	msgs[0].Content = "mutated"

	if got := store.CurrentBranch().Messages[0].Content; got != "original" {
		t.Errorf("store aliased caller's slice: got %q", got)
	}
}

func TestForkIsolation(t *testing.T) {
	store := newTestStore()

	full := []Message{
		userMessage("m1", "Enter the cave."),
		{ID: "m2", Role: RoleAssistant, Content: "Darkness swallows you.", Type: TypeText, Timestamp: now()},
		userMessage("m3", "Light a torch."),
	}
	store.SaveMessages(full)
	source := store.CurrentBranch()

	forkID := store.CreateBranch("m2", full[:2])

	forked := store.CurrentBranch()
	if forked.ID != forkID {
		t.Errorf("expected fork to become current, got %s", forked.ID)
	}
	if forked.ParentID != source.ID {
		t.Errorf("expected parentId %s, got %s", source.ID, forked.ParentID)
	}
	if len(forked.Messages) != 2 {
		t.Fatalf("expected forked branch to have 2 messages, got %d", len(forked.Messages))
	}

	// Extending the fork must leave the source branch untouched
	store.SaveMessages(append(forked.Messages, userMessage("m4", "Turn back.")))

	if len(source.Messages) != 3 {
		t.Errorf("source branch mutated by fork: %d messages", len(source.Messages))
	}
	if source.Messages[2].ID != "m3" {
		t.Errorf("source branch lost its suffix")
	}
}

func TestCreateBranchTitleDerivation(t *testing.T) {
	store := newTestStore()

	msgs := []Message{userMessage("m1", "A very long opening line that should be truncated for the title")}
	store.SaveMessages(msgs)

	store.CreateBranch("m1", msgs)
	if got := store.CurrentBranch().Title; got != "A very long opening line that ..." {
		t.Errorf("unexpected derived title: %q", got)
	}

	// Unknown fork message id falls back to a timestamp label
	store.CreateBranch("no-such-message", msgs)
	if got := store.CurrentBranch().Title; got == "" {
		t.Error("expected fallback title, got empty string")
	}
}

func TestSwitchBranch(t *testing.T) {
	store := newTestStore()

	msgs := []Message{userMessage("m1", "hello")}
	store.SaveMessages(msgs)
	first := store.CurrentBranch()
	store.CreateBranch("m1", msgs)

	switched, err := store.SwitchBranch(first.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if switched.ID != first.ID {
		t.Errorf("expected to switch to %s, got %s", first.ID, switched.ID)
	}
	if store.CurrentBranch().ID != first.ID {
		t.Errorf("current pointer not updated")
	}
}

func TestSwitchBranchNotFound(t *testing.T) {
	store := newTestStore()
	before := store.CurrentBranch().ID

	_, err := store.SwitchBranch("nonexistent-id")
	if err != ErrBranchNotFound {
		t.Fatalf("expected ErrBranchNotFound, got %v", err)
	}
	if store.CurrentBranch().ID != before {
		t.Error("failed switch altered the current branch pointer")
	}
}

func TestBranchesOrderedByRecency(t *testing.T) {
	store := newTestStore()

	msgs := []Message{userMessage("m1", "start")}
	store.SaveMessages(msgs)
	a := store.CurrentBranch().ID
	b := store.CreateBranch("m1", msgs)
	c := store.CreateBranch("m1", msgs)

	// CreateBranch can land on the same millisecond; pin distinct times
	state := store.ensureState()
	state.Branches[a].Timestamp = 1000
	state.Branches[b].Timestamp = 2000
	state.Branches[c].Timestamp = 3000

	branches := store.Branches()
	want := []string{c, b, a}
	for i, branch := range branches {
		if branch.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], branch.ID)
		}
	}
}

func TestDeleteLastBranchFails(t *testing.T) {
	store := newTestStore()
	only := store.CurrentBranch()

	err := store.DeleteBranch(only.ID)
	if err != ErrLastBranch {
		t.Fatalf("expected ErrLastBranch, got %v", err)
	}
	if len(store.Branches()) != 1 {
		t.Error("failed delete changed the branch set")
	}
	if store.CurrentBranch().ID != only.ID {
		t.Error("failed delete changed the current branch")
	}
}

func TestDeleteBranchNotFound(t *testing.T) {
	store := newTestStore()
	store.CurrentBranch()

	if err := store.DeleteBranch("nonexistent-id"); err != ErrBranchNotFound {
		t.Errorf("expected ErrBranchNotFound, got %v", err)
	}
}

func TestDeleteCurrentBranchRepoints(t *testing.T) {
	store := newTestStore()

	msgs := []Message{userMessage("m1", "hello")}
	store.SaveMessages(msgs)
	b := store.CurrentBranch().ID
	a := store.CreateBranch("m1", msgs) // current

	if err := store.DeleteBranch(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current := store.CurrentBranch()
	if current == nil || current.ID != b {
		t.Errorf("expected current to re-point to %s, got %v", b, current)
	}
}

func TestDeleteNonCurrentBranchKeepsPointer(t *testing.T) {
	store := newTestStore()

	msgs := []Message{userMessage("m1", "hello")}
	store.SaveMessages(msgs)
	old := store.CurrentBranch().ID
	cur := store.CreateBranch("m1", msgs)

	if err := store.DeleteBranch(old); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.CurrentBranch().ID != cur {
		t.Error("deleting a non-current branch moved the current pointer")
	}
}

func TestDeletedParentLeavesDanglingReference(t *testing.T) {
	store := newTestStore()

	msgs := []Message{userMessage("m1", "hello")}
	store.SaveMessages(msgs)
	parent := store.CurrentBranch().ID
	child := store.CreateBranch("m1", msgs)

	if err := store.DeleteBranch(parent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The child survives with its provenance reference intact but dangling
	current := store.CurrentBranch()
	if current.ID != child {
		t.Fatalf("expected child branch to remain current")
	}
	if current.ParentID != parent {
		t.Errorf("expected dangling parentId %s, got %s", parent, current.ParentID)
	}
}

func TestRoundTripPersistence(t *testing.T) {
	kv := storage.NewMemoryKV()

	store := NewStore(kv)
	msgs := []Message{
		userMessage("m1", "Once upon a time"),
		{ID: "m2", Role: RoleAssistant, Content: "...in a land far away", Type: TypeText, Timestamp: now(), Model: "llama3.1"},
	}
	store.SaveMessages(msgs)
	currentID := store.CurrentBranch().ID

	// Fresh store over the same medium simulates a process restart
	reloaded := NewStore(kv)
	current := reloaded.CurrentBranch()

	if current.ID != currentID {
		t.Errorf("expected current branch %s after reload, got %s", currentID, current.ID)
	}
	if len(current.Messages) != 2 {
		t.Fatalf("expected 2 messages after reload, got %d", len(current.Messages))
	}
	for i, msg := range current.Messages {
		if msg != msgs[i] {
			t.Errorf("message %d did not survive the round trip: %+v != %+v", i, msg, msgs[i])
		}
	}
}

func TestCorruptStateReinitializes(t *testing.T) {
	kv := storage.NewMemoryKV()
	if err := kv.Save("conversation_state", "{not json"); err != nil {
		t.Fatal(err)
	}

	store := NewStore(kv)
	current := store.CurrentBranch()

	if current == nil || len(current.Messages) != 1 {
		t.Fatal("expected corrupt state to be replaced by the welcome state")
	}
}

func TestInvalidShapeReinitializes(t *testing.T) {
	kv := storage.NewMemoryKV()
	// Parses fine, but currentBranchId points nowhere
	if err := kv.Save("conversation_state", `{"branches":{},"currentBranchId":"ghost","lastUpdated":1}`); err != nil {
		t.Fatal(err)
	}

	store := NewStore(kv)
	if store.CurrentBranch() == nil {
		t.Fatal("expected re-initialized state")
	}
}

func TestClearAllConversationsIsIdempotent(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv)
	store.SaveMessages([]Message{userMessage("m1", "hello")})

	store.ClearAllConversations()
	store.ClearAllConversations()

	if _, ok, _ := kv.Load("conversation_state"); ok {
		t.Error("expected persisted state to be erased")
	}
	if _, ok, _ := kv.Load("current_branch_id"); ok {
		t.Error("expected redundant current key to be erased")
	}

	current := store.CurrentBranch()
	if len(current.Messages) != 1 || current.Messages[0].Role != RoleAssistant {
		t.Error("expected a single welcome message after clearing")
	}
}

func TestCurrentPointerAlwaysValid(t *testing.T) {
	store := newTestStore()
	msgs := []Message{userMessage("m1", "hello")}
	store.SaveMessages(msgs)

	// Churn through forks and deletes; the pointer must always resolve
	for i := 0; i < 5; i++ {
		store.CreateBranch("m1", msgs)
	}
	for _, b := range store.Branches()[:3] {
		if err := store.DeleteBranch(b.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		state := store.ensureState()
		if _, ok := state.Branches[state.CurrentBranchID]; !ok {
			t.Fatal("current branch pointer does not resolve")
		}
	}
}

func TestNilKVDegradesToMemory(t *testing.T) {
	store := NewStore(nil)

	store.SaveMessages([]Message{userMessage("m1", "ephemeral")})
	if got := store.CurrentBranch().Messages[0].Content; got != "ephemeral" {
		t.Errorf("expected in-memory operation without persistence, got %q", got)
	}
}

func TestRenameBranch(t *testing.T) {
	store := newTestStore()
	id := store.CurrentBranch().ID

	if err := store.RenameBranch(id, "The Cave of Echoes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.CurrentBranch().Title; got != "The Cave of Echoes" {
		t.Errorf("expected renamed title, got %q", got)
	}

	if err := store.RenameBranch("nonexistent-id", "x"); err != ErrBranchNotFound {
		t.Errorf("expected ErrBranchNotFound, got %v", err)
	}
}

func TestRedundantCurrentKeyTracksPointer(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv)

	msgs := []Message{userMessage("m1", "hello")}
	store.SaveMessages(msgs)
	first := store.CurrentBranch().ID
	store.CreateBranch("m1", msgs)

	if v, _, _ := kv.Load("current_branch_id"); v != store.CurrentBranch().ID {
		t.Errorf("redundant key out of step after fork: %q", v)
	}

	if _, err := store.SwitchBranch(first); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := kv.Load("current_branch_id"); v != first {
		t.Errorf("redundant key out of step after switch: %q", v)
	}
}
