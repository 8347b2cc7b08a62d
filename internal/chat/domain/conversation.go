package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrConversationNotFound conversation id does not exist
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrNotParticipant viewer is not a member of the conversation
	ErrNotParticipant = errors.New("not a conversation participant")
	// ErrProfileNotFound profile row does not exist
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSelfConversation a conversation needs another party
	ErrSelfConversation = errors.New("cannot start a conversation with yourself")
	// ErrInvalidConversationID conversation id is not a uuid
	ErrInvalidConversationID = errors.New("invalid conversation id")
)

// ValidateConversationID conversation ids are uuids; anything else never reaches the database
func ValidateConversationID(id string) error {
	if id == "" {
		return ErrNoConversationSelected
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidConversationID
	}
	return nil
}

// UnknownUserName display name when neither profile nor email resolve
const UnknownUserName = "Unknown user"

// Conversation row of conversations
type Conversation struct {
	ID                  string     `json:"id"`
	CreatedAt           time.Time  `json:"created_at"`
	LastMessage         string     `json:"last_message"`
	LastMessageAt       *time.Time `json:"last_message_at"`
	LastMessageSenderID string     `json:"last_message_sender_id"`
	BookID              *string    `json:"book_id,omitempty"`
}

// Participant row of conversation_participants, keyed by (conversation_id, user_id)
type Participant struct {
	ConversationID string     `json:"conversation_id"`
	UserID         string     `json:"user_id"`
	LastReadAt     *time.Time `json:"last_read_at"`
}

// Profile row of profiles
type Profile struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// SummaryRow one row of the batched conversation list query
type SummaryRow struct {
	Conversation
	LastReadAt     *time.Time
	OtherUserID    string
	OtherFullName  string
	OtherAvatarRef string
	OtherEmail     string
}

// ConversationSummary conversation enhanced for display
type ConversationSummary struct {
	Conversation
	OtherUserID string     `json:"other_user_id"`
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url"`
	Email       string     `json:"email"`
	LastReadAt  *time.Time `json:"last_read_at"`
	UnreadCount int        `json:"unread_count"`
}

// ResolveDisplayName profile name first, then email, then UnknownUserName
func ResolveDisplayName(fullName, email string) string {
	if n := strings.TrimSpace(fullName); n != "" {
		return n
	}
	if e := strings.TrimSpace(email); e != "" {
		return e
	}
	return UnknownUserName
}

// SortByLastMessage orders newest activity first, conversations without messages last
func SortByLastMessage(convs []ConversationSummary) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i].LastMessageAt, convs[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// CloneSummaries copy used as a rollback snapshot
func CloneSummaries(convs []ConversationSummary) []ConversationSummary {
	if convs == nil {
		return nil
	}
	out := make([]ConversationSummary, len(convs))
	copy(out, convs)
	return out
}

// MoveToTop returns a new list where conversationID carries msg as its last message and sits first.
// The list is returned unchanged when the conversation is not present.
func MoveToTop(convs []ConversationSummary, conversationID string, msg Message) []ConversationSummary {
	idx := -1
	for i := range convs {
		if convs[i].ID == conversationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return convs
	}

	updated := convs[idx]
	at := msg.CreatedAt
	updated.LastMessage = msg.Content
	updated.LastMessageAt = &at
	updated.LastMessageSenderID = msg.UserID

	out := make([]ConversationSummary, 0, len(convs))
	out = append(out, updated)
	out = append(out, convs[:idx]...)
	out = append(out, convs[idx+1:]...)
	return out
}

// ZeroUnread clears the local unread badge of conversationID
func ZeroUnread(convs []ConversationSummary, conversationID string) {
	for i := range convs {
		if convs[i].ID == conversationID {
			convs[i].UnreadCount = 0
			return
		}
	}
}
