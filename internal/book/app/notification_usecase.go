package app

import (
	"context"
	"errors"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	errprocess "book_exchange_service/pkg/err"
	"book_exchange_service/pkg/metrics"

	"go.uber.org/zap"
)

const defaultNotificationLimit = 50

// NotificationUseCase stored notifications
type NotificationUseCase struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

// NewNotificationUseCase create NotificationUseCase
func NewNotificationUseCase(repo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo, now: time.Now}
}

// Store writes the notification of job
func (uc *NotificationUseCase) Store(ctx context.Context, job domain.NotificationJob) (domain.Notification, error) {
	n := domain.NewNotification(job, uc.now())
	if err := uc.repo.Insert(ctx, &n); err != nil {
		return domain.Notification{}, errprocess.Wrap("store notification", err, zap.String("user", job.UserID))
	}
	metrics.NotificationsStored.Inc()
	return n, nil
}

// List notifications of userID, newest first
func (uc *NotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}
	list, err := uc.repo.ListByUser(ctx, userID, unreadOnly, int64(limit))
	if err != nil {
		return []domain.Notification{}, errprocess.Wrap("list notifications", err, zap.String("user", userID))
	}
	return list, nil
}

// UnreadCount unread notifications of userID
func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := uc.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errprocess.Wrap("count unread notifications", err, zap.String("user", userID))
	}
	return n, nil
}

// MarkRead marks one notification of userID read
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	err := uc.repo.MarkRead(ctx, userID, id)
	if err == nil || errors.Is(err, domain.ErrNotificationNotFound) {
		return err
	}
	return errprocess.Wrap("mark notification read", err, zap.String("user", userID))
}
