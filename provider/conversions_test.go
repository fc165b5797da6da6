package provider

import (
	"testing"

	"fabula/model"
)

func TestConvertToOllamaMessages(t *testing.T) {
	messages := []model.Message{
		{Role: "system", Content: "You are the narrator."},
		{Role: "user", Content: "I open the door."},
		{Role: "assistant", Content: "The hinges groan."},
	}

	got := ConvertToOllamaMessages(messages)
	if len(got) != len(messages) {
		t.Fatalf("got %d messages, want %d", len(got), len(messages))
	}
	for i := range messages {
		if got[i].Role != messages[i].Role {
			t.Errorf("message %d role = %q, want %q", i, got[i].Role, messages[i].Role)
		}
		if got[i].Content != messages[i].Content {
			t.Errorf("message %d content = %q, want %q", i, got[i].Content, messages[i].Content)
		}
	}
}

func TestConvertToOpenAIMessages(t *testing.T) {
	messages := []model.Message{
		{Role: "system", Content: "You are the narrator."},
		{Role: "user", Content: "I open the door."},
		{Role: "assistant", Content: "The hinges groan."},
	}

	got := ConvertToOpenAIMessages(messages)
	if len(got) != 3 {
		t.Fatalf("got %d messages, want 3", len(got))
	}
	if got[0].OfSystem == nil {
		t.Error("first message should be a system message")
	}
	if got[1].OfUser == nil {
		t.Error("second message should be a user message")
	}
	if got[2].OfAssistant == nil {
		t.Error("third message should be an assistant message")
	}
}

func TestConvertToAnthropicMessagesSplitsSystemPrompt(t *testing.T) {
	messages := []model.Message{
		{Role: "system", Content: "You are the narrator."},
		{Role: "user", Content: "I open the door."},
		{Role: "assistant", Content: "The hinges groan."},
	}

	anthropicMsgs, systemBlocks := convertToAnthropicMessages(messages)
	if len(systemBlocks) != 1 {
		t.Fatalf("got %d system blocks, want 1", len(systemBlocks))
	}
	if systemBlocks[0].Text != "You are the narrator." {
		t.Errorf("system block = %q", systemBlocks[0].Text)
	}
	if len(anthropicMsgs) != 2 {
		t.Fatalf("got %d messages, want 2 (system prompt excluded)", len(anthropicMsgs))
	}
}
