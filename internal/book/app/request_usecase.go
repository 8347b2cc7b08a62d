package app

import (
	"context"
	"errors"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	errprocess "book_exchange_service/pkg/err"
	"book_exchange_service/pkg/logger"
	"book_exchange_service/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestUseCase book requests between readers and owners
type RequestUseCase struct {
	books     repository.BookRepository
	requests  repository.RequestRepository
	publisher repository.NotificationPublisher
	now       func() time.Time
}

// NewRequestUseCase create RequestUseCase; publisher may be nil
func NewRequestUseCase(books repository.BookRepository, requests repository.RequestRepository, publisher repository.NotificationPublisher) *RequestUseCase {
	return &RequestUseCase{
		books:     books,
		requests:  requests,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RequestBook asks the owner of in.BookID for the book.
// Own books and a second pending request are rejected before anything is written.
func (uc *RequestUseCase) RequestBook(ctx context.Context, requesterID string, in domain.CreateRequestReq) (*domain.BookRequest, error) {
	req, err := uc.requestBook(ctx, requesterID, in)
	switch {
	case err == nil:
		metrics.BookRequests.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrCannotRequestOwnBook):
		metrics.BookRequests.WithLabelValues("own_book").Inc()
	case errors.Is(err, domain.ErrAlreadyRequested):
		metrics.BookRequests.WithLabelValues("duplicate").Inc()
	default:
		metrics.BookRequests.WithLabelValues("error").Inc()
	}
	return req, err
}

func (uc *RequestUseCase) requestBook(ctx context.Context, requesterID string, in domain.CreateRequestReq) (*domain.BookRequest, error) {
	book, err := uc.books.FindByID(ctx, in.BookID)
	if errors.Is(err, domain.ErrBookNotFound) {
		return nil, err
	} else if err != nil {
		return nil, errprocess.Wrap("request book: find book", err, zap.String("book", in.BookID))
	}
	if book.OwnerID == requesterID {
		return nil, domain.ErrCannotRequestOwnBook
	}
	if !book.Available {
		return nil, domain.ErrBookUnavailable
	}

	existing, err := uc.requests.FindPending(ctx, book.ID, requesterID)
	if err != nil {
		return nil, errprocess.Wrap("request book: find pending", err, zap.String("book", book.ID))
	}
	if existing != nil {
		return nil, domain.ErrAlreadyRequested
	}

	now := uc.now()
	req := &domain.BookRequest{
		ID:          uuid.New().String(),
		BookID:      book.ID,
		RequesterID: requesterID,
		OwnerID:     book.OwnerID,
		Message:     in.Message,
		Status:      domain.RequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.requests.Create(ctx, req); errors.Is(err, domain.ErrAlreadyRequested) {
		return nil, err
	} else if err != nil {
		return nil, errprocess.Wrap("request book: create", err, zap.String("book", book.ID))
	}

	uc.notify(ctx, domain.NotificationJob{
		UserID:    book.OwnerID,
		Type:      domain.NotifyBookRequested,
		RequestID: req.ID,
		BookID:    book.ID,
		BookTitle: book.Title,
		ActorID:   requesterID,
		Status:    req.Status,
		CreatedAt: now,
	})
	return req, nil
}

// ListIncoming requests for books owned by ownerID, newest first
func (uc *RequestUseCase) ListIncoming(ctx context.Context, ownerID string) ([]domain.BookRequest, error) {
	reqs, err := uc.requests.ListByOwner(ctx, ownerID)
	if err != nil {
		return []domain.BookRequest{}, errprocess.Wrap("list incoming requests", err, zap.String("owner", ownerID))
	}
	if reqs == nil {
		reqs = []domain.BookRequest{}
	}
	return reqs, nil
}

// ListOutgoing requests made by requesterID, newest first
func (uc *RequestUseCase) ListOutgoing(ctx context.Context, requesterID string) ([]domain.BookRequest, error) {
	reqs, err := uc.requests.ListByRequester(ctx, requesterID)
	if err != nil {
		return []domain.BookRequest{}, errprocess.Wrap("list outgoing requests", err, zap.String("requester", requesterID))
	}
	if reqs == nil {
		reqs = []domain.BookRequest{}
	}
	return reqs, nil
}

// UpdateStatus accept / decline (owner) or cancel (requester) a pending request
func (uc *RequestUseCase) UpdateStatus(ctx context.Context, actorID, requestID string, next domain.RequestStatus) (*domain.BookRequest, error) {
	req, err := uc.requests.FindByID(ctx, requestID)
	if errors.Is(err, domain.ErrRequestNotFound) {
		return nil, err
	} else if err != nil {
		return nil, errprocess.Wrap("update request: find", err, zap.String("request", requestID))
	}
	if err := req.CanTransition(actorID, next); err != nil {
		return nil, err
	}

	if err := uc.requests.UpdateStatus(ctx, req.ID, domain.RequestPending, next); errors.Is(err, domain.ErrInvalidTransition) {
		return nil, err
	} else if err != nil {
		return nil, errprocess.Wrap("update request: status", err, zap.String("request", requestID))
	}
	req.Status = next
	req.UpdatedAt = uc.now()

	job := domain.NotificationJob{
		UserID:    req.Counterpart(actorID),
		Type:      domain.NotifyRequestUpdated,
		RequestID: req.ID,
		BookID:    req.BookID,
		ActorID:   actorID,
		Status:    next,
		CreatedAt: req.UpdatedAt,
	}
	if book, err := uc.books.FindByID(ctx, req.BookID); err == nil {
		job.BookTitle = book.Title
	}
	uc.notify(ctx, job)
	return req, nil
}

// notify 通知失敗不影響申請本身
func (uc *RequestUseCase) notify(ctx context.Context, job domain.NotificationJob) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, job); err != nil {
		logger.Log.Error("publish notification job",
			zap.String("user", job.UserID), zap.String("request", job.RequestID), zap.Error(err))
	}
}
