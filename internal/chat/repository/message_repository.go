package repository

import (
	"context"
	"fmt"

	"book_exchange_service/internal/chat/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// MessageRepository definition messages access
type MessageRepository interface {
	// FindPage rows ordered by created_at DESC starting at offset
	FindPage(ctx context.Context, conversationID string, offset, limit int) ([]domain.Message, error)
	// Insert stores msg and updates the conversation last message columns in one transaction.
	// CreatedAt is assigned by the database.
	Insert(ctx context.Context, msg domain.Message) (domain.Message, error)
	// CountUnread unread counts of every conversation of viewerID in one grouped query
	CountUnread(ctx context.Context, viewerID string) (map[string]int, error)
}

type messageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindPage(ctx context.Context, conversationID string, offset, limit int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, conversation_id::text, user_id::text, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`, conversationID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]domain.Message, 0, limit)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *messageRepository) Insert(ctx context.Context, msg domain.Message) (domain.Message, error) {
	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO messages (id, conversation_id, user_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`, msg.ID, msg.ConversationID, msg.UserID, msg.Content).Scan(&msg.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE conversations
			SET last_message = $2, last_message_at = $3, last_message_sender_id = $4
			WHERE id = $1`, msg.ConversationID, msg.Content, msg.CreatedAt, msg.UserID); err != nil {
			return fmt.Errorf("update conversation last message: %w", err)
		}
		return nil
	})
	return msg, err
}

func (r *messageRepository) CountUnread(ctx context.Context, viewerID string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT me.conversation_id::text, COUNT(m.id)
		FROM conversation_participants me
		LEFT JOIN messages m
		       ON m.conversation_id = me.conversation_id
		      AND m.user_id <> me.user_id
		      AND (me.last_read_at IS NULL OR m.created_at > me.last_read_at)
		WHERE me.user_id = $1
		GROUP BY me.conversation_id`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan unread: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
