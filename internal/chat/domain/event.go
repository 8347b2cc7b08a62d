package domain

import (
	"encoding/json"
	"time"
)

// EventType change feed operation
type EventType string

const (
	// EventInsert row inserted
	EventInsert EventType = "INSERT"
)

const (
	// TableMessages messages table name in events
	TableMessages = "messages"
	// TableParticipants conversation_participants table name in events
	TableParticipants = "conversation_participants"
)

// ChangeEvent one row change delivered on a realtime channel
type ChangeEvent struct {
	Table     string          `json:"table"`
	Type      EventType       `json:"type"`
	Record    json.RawMessage `json:"record"`
	Timestamp time.Time       `json:"commit_timestamp"`
}

// NewInsertEvent builds an INSERT event for record
func NewInsertEvent(table string, record interface{}) (ChangeEvent, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return ChangeEvent{}, err
	}
	return ChangeEvent{Table: table, Type: EventInsert, Record: raw, Timestamp: time.Now().UTC()}, nil
}

// ParticipantChannel membership inserts for userID
func ParticipantChannel(userID string) string {
	return "realtime:conversation_participants:user_id=eq." + userID
}

// MessageChannel message inserts for conversationID
func MessageChannel(conversationID string) string {
	return "realtime:messages:conversation_id=eq." + conversationID
}
