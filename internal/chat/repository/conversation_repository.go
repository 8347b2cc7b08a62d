package repository

import (
	"context"
	"errors"
	"fmt"

	"book_exchange_service/internal/chat/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ConversationRepository definition conversations and their membership
type ConversationRepository interface {
	// ListSummaryRows one batched query for every conversation of viewerID, newest activity first
	ListSummaryRows(ctx context.Context, viewerID string) ([]domain.SummaryRow, error)
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	// StartConversation returns the conversation shared by both users for bookID,
	// creating it with both participants when none exists.
	StartConversation(ctx context.Context, creatorID, otherUserID string, bookID *string) (string, bool, error)
}

type conversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository create a ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{db: db}
}

const listSummaryRowsSQL = `
SELECT c.id::text,
       c.created_at,
       COALESCE(c.last_message, ''),
       c.last_message_at,
       COALESCE(c.last_message_sender_id::text, ''),
       c.book_id::text,
       me.last_read_at,
       COALESCE(other.user_id::text, ''),
       COALESCE(p.full_name, ''),
       COALESCE(p.avatar_url, ''),
       COALESCE(CASE WHEN other.user_id IS NULL THEN NULL ELSE get_user_email(other.user_id) END, '')
FROM conversation_participants me
JOIN conversations c ON c.id = me.conversation_id
LEFT JOIN LATERAL (
    SELECT cp.user_id
    FROM conversation_participants cp
    WHERE cp.conversation_id = c.id AND cp.user_id <> me.user_id
    ORDER BY cp.joined_at, cp.user_id
    LIMIT 1
) other ON TRUE
LEFT JOIN profiles p ON p.id = other.user_id
WHERE me.user_id = $1
ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`

func (r *conversationRepository) ListSummaryRows(ctx context.Context, viewerID string) ([]domain.SummaryRow, error) {
	rows, err := r.db.Query(ctx, listSummaryRowsSQL, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query conversation summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.SummaryRow
	for rows.Next() {
		var s domain.SummaryRow
		if err := rows.Scan(
			&s.ID,
			&s.CreatedAt,
			&s.LastMessage,
			&s.LastMessageAt,
			&s.LastMessageSenderID,
			&s.BookID,
			&s.LastReadAt,
			&s.OtherUserID,
			&s.OtherFullName,
			&s.OtherAvatarRef,
			&s.OtherEmail,
		); err != nil {
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.QueryRow(ctx, `
		SELECT id::text, created_at, COALESCE(last_message, ''), last_message_at,
		       COALESCE(last_message_sender_id::text, ''), book_id::text
		FROM conversations WHERE id = $1`, conversationID).Scan(
		&c.ID, &c.CreatedAt, &c.LastMessage, &c.LastMessageAt, &c.LastMessageSenderID, &c.BookID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2
		)`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *conversationRepository) StartConversation(ctx context.Context, creatorID, otherUserID string, bookID *string) (string, bool, error) {
	var (
		id      string
		created bool
	)

	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT c.id::text
			FROM conversations c
			JOIN conversation_participants a ON a.conversation_id = c.id AND a.user_id = $1
			JOIN conversation_participants b ON b.conversation_id = c.id AND b.user_id = $2
			WHERE c.book_id IS NOT DISTINCT FROM $3::uuid
			ORDER BY c.created_at
			LIMIT 1`, creatorID, otherUserID, bookID).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		id = uuid.New().String()
		if _, err := tx.Exec(ctx, `INSERT INTO conversations (id, book_id) VALUES ($1, $2::uuid)`, id, bookID); err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}
		// 發起者視為已讀
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id, last_read_at)
			VALUES ($1, $2, now()), ($1, $3, NULL)`, id, creatorID, otherUserID); err != nil {
			return fmt.Errorf("insert participants: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return id, created, nil
}
