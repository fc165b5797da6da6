package model

import (
	"time"

	"fabula/branch"
)

// Message is a chat message as the UI works with it. Rendered caches the
// markdown rendering so the viewport doesn't re-render on every frame.
type Message struct {
	ID        string
	Role      string
	Content   string
	Type      string // branch.TypeText or branch.TypeImage
	Rendered  string
	Timestamp time.Time
	Model     string
}

// ToBranchMessages converts UI messages to the branch store's persisted
// form. The Rendered cache is dropped; it is derived data.
func ToBranchMessages(messages []Message) []branch.Message {
	result := make([]branch.Message, len(messages))
	for i, msg := range messages {
		msgType := msg.Type
		if msgType == "" {
			msgType = branch.TypeText
		}
		result[i] = branch.Message{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Type:      msgType,
			Timestamp: msg.Timestamp.UnixMilli(),
			Model:     msg.Model,
		}
	}
	return result
}

// FromBranchMessages converts persisted messages back to the UI form.
func FromBranchMessages(messages []branch.Message) []Message {
	result := make([]Message, len(messages))
	for i, msg := range messages {
		result[i] = Message{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Type:      msg.Type,
			Timestamp: time.UnixMilli(msg.Timestamp),
			Model:     msg.Model,
		}
	}
	return result
}
