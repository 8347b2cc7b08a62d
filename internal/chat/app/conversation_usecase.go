package app

import (
	"context"
	"errors"
	"strings"

	"book_exchange_service/internal/chat/domain"
	"book_exchange_service/internal/chat/repository"
	errprocess "book_exchange_service/pkg/err"
	"book_exchange_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversationUseCase conversation list and conversation creation
type ConversationUseCase struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	profileRepo repository.ProfileRepository
	avatars     repository.AvatarResolver
	pubSub      repository.PubSub
}

// NewConversationUseCase create ConversationUseCase
func NewConversationUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	avatars repository.AvatarResolver,
	pubSub repository.PubSub,
) *ConversationUseCase {
	return &ConversationUseCase{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		profileRepo: profileRepo,
		avatars:     avatars,
		pubSub:      pubSub,
	}
}

// ListConversations returns every conversation of viewerID ready for display, newest activity first.
// Any query failure yields an empty list together with the error; partial results are never returned.
func (uc *ConversationUseCase) ListConversations(ctx context.Context, viewerID string) ([]domain.ConversationSummary, error) {
	rows, err := uc.convRepo.ListSummaryRows(ctx, viewerID)
	if err != nil {
		return []domain.ConversationSummary{}, errprocess.Wrap("list conversations", err, zap.String("viewer", viewerID))
	}

	unread, err := uc.msgRepo.CountUnread(ctx, viewerID)
	if err != nil {
		return []domain.ConversationSummary{}, errprocess.Wrap("count unread", err, zap.String("viewer", viewerID))
	}

	out := make([]domain.ConversationSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ConversationSummary{
			Conversation: r.Conversation,
			OtherUserID:  r.OtherUserID,
			DisplayName:  domain.ResolveDisplayName(r.OtherFullName, r.OtherEmail),
			AvatarURL:    uc.resolveAvatar(ctx, r.OtherAvatarRef),
			Email:        r.OtherEmail,
			LastReadAt:   r.LastReadAt,
			UnreadCount:  unread[r.ID],
		})
	}
	domain.SortByLastMessage(out)
	return out, nil
}

// avatar 取不到不影響列表
func (uc *ConversationUseCase) resolveAvatar(ctx context.Context, ref string) string {
	if uc.avatars == nil || ref == "" {
		return ""
	}
	u, err := uc.avatars.Resolve(ctx, ref)
	if err != nil {
		logger.Log.Warn("resolve avatar failed", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	return u
}

// UnreadCounts unread messages per conversation id
func (uc *ConversationUseCase) UnreadCounts(ctx context.Context, viewerID string) (map[string]int, error) {
	return uc.msgRepo.CountUnread(ctx, viewerID)
}

// StartConversation opens (or reuses) the conversation between creatorID and otherUserID about bookID
// and posts initialMessage into it. A blank initialMessage only opens the conversation.
func (uc *ConversationUseCase) StartConversation(ctx context.Context, creatorID, otherUserID, initialMessage string, bookID *string) (string, error) {
	if otherUserID == "" || otherUserID == creatorID {
		return "", domain.ErrSelfConversation
	}
	if bookID != nil && strings.TrimSpace(*bookID) == "" {
		bookID = nil
	}

	convID, created, err := uc.convRepo.StartConversation(ctx, creatorID, otherUserID, bookID)
	if err != nil {
		return "", errprocess.Wrap("start conversation", err, zap.String("creator", creatorID), zap.String("other", otherUserID))
	}

	if created {
		for _, userID := range []string{creatorID, otherUserID} {
			uc.publish(ctx, domain.ParticipantChannel(userID), domain.TableParticipants, domain.Participant{
				ConversationID: convID,
				UserID:         userID,
			})
		}
	}

	content, err := domain.NormalizeContent(initialMessage)
	if errors.Is(err, domain.ErrEmptyMessage) {
		return convID, nil
	}

	msg, err := uc.msgRepo.Insert(ctx, domain.Message{
		ID:             uuid.New().String(),
		ConversationID: convID,
		UserID:         creatorID,
		Content:        content,
	})
	if err != nil {
		return convID, errprocess.Wrap("insert initial message", err, zap.String("conversation", convID))
	}
	uc.publish(ctx, domain.MessageChannel(convID), domain.TableMessages, msg)
	return convID, nil
}

// EnsureProfile returns the viewer profile, creating a default one on first use
func (uc *ConversationUseCase) EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := uc.profileRepo.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, errprocess.Wrap("ensure profile", err, zap.String("user", userID))
	}
	p.AvatarURL = uc.resolveAvatar(ctx, p.AvatarURL)
	return p, nil
}

func (uc *ConversationUseCase) publish(ctx context.Context, channel, table string, record interface{}) {
	if uc.pubSub == nil {
		return
	}
	ev, err := domain.NewInsertEvent(table, record)
	if err != nil {
		logger.Log.Error("build change event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := uc.pubSub.Publish(ctx, channel, ev); err != nil {
		logger.Log.Error("publish change event", zap.String("channel", channel), zap.Error(err))
	}
}
