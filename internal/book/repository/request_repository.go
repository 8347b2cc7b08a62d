package repository

import (
	"context"
	"errors"
	"time"

	"book_exchange_service/internal/book/domain"

	"gorm.io/gorm"
)

// RequestRepository definition book_requests access
type RequestRepository interface {
	// Create returns domain.ErrAlreadyRequested when a pending request of the same pair exists
	Create(ctx context.Context, req *domain.BookRequest) error
	FindByID(ctx context.Context, id string) (*domain.BookRequest, error)
	// FindPending returns nil, nil when the requester has no pending request for the book
	FindPending(ctx context.Context, bookID, requesterID string) (*domain.BookRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.BookRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.BookRequest, error)
	// UpdateStatus moves id from -> to; domain.ErrInvalidTransition when it is no longer in from
	UpdateStatus(ctx context.Context, id string, from, to domain.RequestStatus) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository create RequestRepository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.BookRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyRequested
	}
	return err
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*domain.BookRequest, error) {
	var req domain.BookRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRequestNotFound
	} else if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindPending(ctx context.Context, bookID, requesterID string) (*domain.BookRequest, error) {
	var reqs []domain.BookRequest
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND requester_id = ? AND status = ?", bookID, requesterID, domain.RequestPending).
		Limit(1).Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

func (r *requestRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.BookRequest, error) {
	return r.list(ctx, "owner_id = ?", ownerID)
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.BookRequest, error) {
	return r.list(ctx, "requester_id = ?", requesterID)
}

func (r *requestRepository) list(ctx context.Context, where string, arg string) ([]domain.BookRequest, error) {
	var reqs []domain.BookRequest
	if err := r.db.WithContext(ctx).Where(where, arg).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RequestStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.BookRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}
