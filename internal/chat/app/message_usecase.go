package app

import (
	"context"
	"errors"
	"time"

	"book_exchange_service/internal/chat/domain"
	"book_exchange_service/internal/chat/repository"
	"book_exchange_service/pkg"
	errprocess "book_exchange_service/pkg/err"
	"book_exchange_service/pkg/logger"
	"book_exchange_service/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageUseCase message history, sending and read state
type MessageUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	partRepo repository.ParticipantRepository
	pubSub   repository.PubSub
	pageSize int
	now      func() time.Time
}

// NewMessageUseCase create MessageUseCase, pageSize <= 0 falls back to domain.DefaultPageSize
func NewMessageUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	partRepo repository.ParticipantRepository,
	pubSub repository.PubSub,
	pageSize int,
) *MessageUseCase {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &MessageUseCase{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		partRepo: partRepo,
		pubSub:   pubSub,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// PageSize messages per page
func (uc *MessageUseCase) PageSize() int {
	return uc.pageSize
}

// FetchPage returns page pageIndex of the history in chronological order.
// One extra row is fetched so HasMore is exact. Page 0 also marks the conversation read.
func (uc *MessageUseCase) FetchPage(ctx context.Context, viewerID, conversationID string, pageIndex int) (domain.MessagePage, error) {
	if pageIndex < 0 {
		pageIndex = 0
	}
	if err := uc.checkParticipant(ctx, conversationID, viewerID); err != nil {
		return domain.MessagePage{}, err
	}

	rows, err := uc.msgRepo.FindPage(ctx, conversationID, pageIndex*uc.pageSize, uc.pageSize+1)
	if err != nil {
		return domain.MessagePage{}, errprocess.Wrap("fetch messages", err, zap.String("conversation", conversationID), zap.Int("page", pageIndex))
	}

	hasMore := len(rows) > uc.pageSize
	if hasMore {
		rows = rows[:uc.pageSize]
	}
	readAt := uc.now().UTC()
	if len(rows) > 0 && rows[0].CreatedAt.After(readAt) {
		// created_at 由資料庫時鐘產生
		readAt = rows[0].CreatedAt
	}
	page := domain.MessagePage{
		ConversationID: conversationID,
		Page:           pageIndex,
		Messages:       pkg.Reverse(rows),
		HasMore:        hasMore,
	}

	if pageIndex == 0 {
		if err := uc.MarkReadAt(ctx, viewerID, conversationID, readAt); err != nil {
			logger.Log.Warn("mark read on first page failed", zap.String("conversation", conversationID), zap.Error(err))
		}
	}
	return page, nil
}

// SendMessage persists content from senderID and publishes it on the conversation channel
func (uc *MessageUseCase) SendMessage(ctx context.Context, senderID, conversationID, content string) (domain.Message, error) {
	if conversationID == "" {
		return domain.Message{}, domain.ErrNoConversationSelected
	}
	content, err := domain.NormalizeContent(content)
	if err != nil {
		return domain.Message{}, err
	}
	if err := uc.checkParticipant(ctx, conversationID, senderID); err != nil {
		return domain.Message{}, err
	}

	msg, err := uc.msgRepo.Insert(ctx, domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		UserID:         senderID,
		Content:        content,
	})
	if err != nil {
		metrics.MessagesSent.WithLabelValues("error").Inc()
		return domain.Message{}, errprocess.Wrap("send message", err, zap.String("conversation", conversationID))
	}
	metrics.MessagesSent.WithLabelValues("ok").Inc()

	if uc.pubSub != nil {
		ev, err := domain.NewInsertEvent(domain.TableMessages, msg)
		if err == nil {
			err = uc.pubSub.Publish(ctx, domain.MessageChannel(conversationID), ev)
		}
		// 訊息已寫入，推播失敗只記錄
		if err != nil {
			logger.Log.Error("publish message event", zap.String("conversation", conversationID), zap.Error(err))
		}
	}
	return msg, nil
}

// MarkRead sets the viewer last_read_at of conversationID to now
func (uc *MessageUseCase) MarkRead(ctx context.Context, viewerID, conversationID string) error {
	return uc.MarkReadAt(ctx, viewerID, conversationID, uc.now())
}

// MarkReadAt sets last_read_at to at; it never moves backwards
func (uc *MessageUseCase) MarkReadAt(ctx context.Context, viewerID, conversationID string, at time.Time) error {
	if err := uc.partRepo.UpdateLastRead(ctx, conversationID, viewerID, at.UTC()); err != nil {
		return errprocess.Wrap("mark read", err, zap.String("conversation", conversationID), zap.String("viewer", viewerID))
	}
	return nil
}

// CheckAccess verifies that conversationID exists and viewerID takes part in it
func (uc *MessageUseCase) CheckAccess(ctx context.Context, viewerID, conversationID string) error {
	if err := domain.ValidateConversationID(conversationID); err != nil {
		return err
	}
	if _, err := uc.convRepo.FindByID(ctx, conversationID); err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			return err
		}
		return errprocess.Wrap("find conversation", err, zap.String("conversation", conversationID))
	}
	return uc.checkParticipant(ctx, conversationID, viewerID)
}

func (uc *MessageUseCase) checkParticipant(ctx context.Context, conversationID, userID string) error {
	ok, err := uc.convRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return errprocess.Wrap("check participant", err, zap.String("conversation", conversationID))
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	return nil
}
