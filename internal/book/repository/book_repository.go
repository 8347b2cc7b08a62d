package repository

import (
	"context"
	"errors"

	"book_exchange_service/internal/book/domain"

	"gorm.io/gorm"
)

// BookRepository definition books access
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Book, error)
	// FindWithDistances calls get_books_with_distances, nearest first
	FindWithDistances(ctx context.Context, center domain.GeoPoint, radiusKm float64, maxResults int) ([]domain.BookWithDistance, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository create BookRepository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBookNotFound
	} else if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Book, error) {
	var books []domain.Book
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) FindWithDistances(ctx context.Context, center domain.GeoPoint, radiusKm float64, maxResults int) ([]domain.BookWithDistance, error) {
	var rows []domain.BookWithDistance
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM get_books_with_distances(?, ?, ?, ?)", center.Lat, center.Lng, radiusKm, maxResults).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
