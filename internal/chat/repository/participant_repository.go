package repository

import (
	"context"
	"time"

	"book_exchange_service/internal/chat/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ParticipantRepository definition conversation_participants writes
type ParticipantRepository interface {
	UpdateLastRead(ctx context.Context, conversationID, userID string, at time.Time) error
}

type participantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository create a ParticipantRepository
func NewParticipantRepository(db *pgxpool.Pool) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) UpdateLastRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET last_read_at = GREATEST(COALESCE(last_read_at, $3), $3)
		WHERE conversation_id = $1 AND user_id = $2`, conversationID, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotParticipant
	}
	return nil
}
