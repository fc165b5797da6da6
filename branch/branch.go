// Package branch owns the conversation tree: every story line the user has
// forked, the pointer to the one being played, and the durable copy of both.
// All reads and writes of conversation state funnel through Store.
package branch

import (
	"fmt"
	"strings"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message content types.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// Message is one entry in a branch's timeline. Content holds prose for text
// messages and an image reference for image messages. Timestamps are Unix
// milliseconds to keep the persisted layout portable.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Model     string `json:"model,omitempty"`
}

// Branch is one independently owned timeline of the conversation. Forking
// copies the message prefix into the new branch; branches never share
// message slices. ParentID records where the branch was forked from and is
// provenance only - deleting a parent leaves children untouched.
type Branch struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	ParentID  string    `json:"parentId,omitempty"`
	Timestamp int64     `json:"timestamp"`
	Title     string    `json:"title"`
}

// ConversationState is the persisted root: every branch plus the current
// branch pointer. CurrentBranchID always keys an existing entry.
type ConversationState struct {
	Branches        map[string]*Branch `json:"branches"`
	CurrentBranchID string             `json:"currentBranchId"`
	LastUpdated     int64              `json:"lastUpdated"`
}

func now() int64 {
	return time.Now().UnixMilli()
}

// TitleFromContent derives a branch title from message content: the first 30
// characters on one line, or a timestamp label when the content is empty.
func TitleFromContent(content string) string {
	if content == "" {
		return fmt.Sprintf("Branch %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	title := content
	if len(title) > 30 {
		title = title[:30] + "..."
	}

	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.TrimSpace(title)

	if title == "" {
		return fmt.Sprintf("Branch %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	return title
}

// copyMessages deep-copies a message slice so no two branches ever alias the
// same backing array.
func copyMessages(messages []Message) []Message {
	copied := make([]Message, len(messages))
	copy(copied, messages)
	return copied
}
