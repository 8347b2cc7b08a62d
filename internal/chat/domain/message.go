package domain

import (
	"errors"
	"strings"
	"time"
)

// DefaultPageSize messages per history page
const DefaultPageSize = 30

var (
	// ErrEmptyMessage content is empty after trimming
	ErrEmptyMessage = errors.New("message content is empty")
	// ErrNoConversationSelected send without an open conversation
	ErrNoConversationSelected = errors.New("no conversation selected")
)

// Message row of messages, immutable once created
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessagePage one page of history in chronological order
type MessagePage struct {
	ConversationID string    `json:"conversation_id"`
	Page           int       `json:"page"`
	Messages       []Message `json:"messages"`
	HasMore        bool      `json:"has_more"`
}

// SendMessageReq body of a REST send
type SendMessageReq struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// StartConversationReq body of a REST conversation start
type StartConversationReq struct {
	OtherUserID    string  `json:"other_user_id" conform:"trim" validate:"required,uuid"`
	InitialMessage string  `json:"initial_message" validate:"max=4000"`
	BookID         *string `json:"book_id" validate:"omitempty,uuid"`
}

// NormalizeContent trims content and rejects blank messages
func NormalizeContent(content string) (string, error) {
	c := strings.TrimSpace(content)
	if c == "" {
		return "", ErrEmptyMessage
	}
	return c, nil
}

// UnreadCount counts messages newer than lastReadAt not sent by viewerID.
// A nil lastReadAt means never read: every foreign message counts.
func UnreadCount(messages []Message, viewerID string, lastReadAt *time.Time) int {
	n := 0
	for _, m := range messages {
		if m.UserID == viewerID {
			continue
		}
		if lastReadAt == nil || m.CreatedAt.After(*lastReadAt) {
			n++
		}
	}
	return n
}

// AppendUnique appends msg unless a message with the same id is already present
func AppendUnique(list []Message, msg Message) ([]Message, bool) {
	for _, m := range list {
		if m.ID == msg.ID {
			return list, false
		}
	}
	return append(list, msg), true
}

// MergePage merges a fetched page into the loaded history.
// prepend places the page before existing messages (older history), otherwise the page replaces them.
// Ids already present are skipped.
func MergePage(existing, page []Message, prepend bool) []Message {
	if !prepend {
		out := make([]Message, 0, len(page))
		seen := make(map[string]struct{}, len(page))
		for _, m := range page {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
		return out
	}

	seen := make(map[string]struct{}, len(existing)+len(page))
	for _, m := range existing {
		seen[m.ID] = struct{}{}
	}
	out := make([]Message, 0, len(existing)+len(page))
	for _, m := range page {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return append(out, existing...)
}
