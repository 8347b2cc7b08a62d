package domain

// Action websocket request / push action
type Action string

const (
	// ListConversations websocket action list_conversations
	ListConversations Action = "list_conversations"
	// SelectConversation websocket action select_conversation
	SelectConversation Action = "select_conversation"
	// LeaveConversation websocket action leave_conversation
	LeaveConversation Action = "leave_conversation"
	// LoadOlder websocket action load_older
	LoadOlder Action = "load_older"
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// MarkRead websocket action mark_read
	MarkRead Action = "mark_read"
	// StartConversation websocket action start_conversation
	StartConversation Action = "start_conversation"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"

	// PushConversations server push: conversation list replaced
	PushConversations Action = "conversations"
	// PushMessages server push: message pane replaced
	PushMessages Action = "messages"
	// PushMessageNew server push: one realtime message appended
	PushMessageNew Action = "message_new"
)

// WSRequest websocket Request
type WSRequest struct {
	Action         string  `json:"action"`
	ConversationID string  `json:"conversation_id"`
	OtherUserID    string  `json:"other_user_id"`
	BookID         *string `json:"book_id"`
	Content        string  `json:"content"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
