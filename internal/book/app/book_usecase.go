package app

import (
	"context"
	"errors"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	errprocess "book_exchange_service/pkg/err"
	"book_exchange_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookUseCase book listings
type BookUseCase struct {
	books repository.BookRepository
	geo   *GeosearchUseCase
	now   func() time.Time
}

// NewBookUseCase create BookUseCase; geo fills missing postal codes and may be nil
func NewBookUseCase(books repository.BookRepository, geo *GeosearchUseCase) *BookUseCase {
	return &BookUseCase{books: books, geo: geo, now: func() time.Time { return time.Now().UTC() }}
}

// CreateBook lists a book of ownerID. Latitude and longitude come together or not at all.
func (uc *BookUseCase) CreateBook(ctx context.Context, ownerID string, in domain.NewBook) (*domain.Book, error) {
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, domain.ErrInvalidPoint
	}

	book := &domain.Book{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Author:      in.Author,
		ISBN:        in.ISBN,
		Condition:   in.Condition,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		PostalCode:  in.PostalCode,
		Available:   true,
		CreatedAt:   uc.now(),
	}

	if p, ok := book.Point(); ok {
		if !p.Valid() {
			return nil, domain.ErrInvalidPoint
		}
		if book.PostalCode == "" && uc.geo != nil {
			// 郵遞區號只是輔助資訊
			if s, err := uc.geo.Reverse(ctx, p); err == nil {
				book.PostalCode = s.PostalCode
			} else {
				logger.Log.Warn("postal code lookup failed", zap.Error(err))
			}
		}
	}

	if err := uc.books.Create(ctx, book); err != nil {
		return nil, errprocess.Wrap("create book", err, zap.String("owner", ownerID))
	}
	return book, nil
}

// GetBook one book by id
func (uc *BookUseCase) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := uc.books.FindByID(ctx, id)
	if errors.Is(err, domain.ErrBookNotFound) {
		return nil, err
	} else if err != nil {
		return nil, errprocess.Wrap("get book", err, zap.String("book", id))
	}
	return book, nil
}

// ListMine books of ownerID, newest first
func (uc *BookUseCase) ListMine(ctx context.Context, ownerID string) ([]domain.Book, error) {
	books, err := uc.books.ListByOwner(ctx, ownerID)
	if err != nil {
		return []domain.Book{}, errprocess.Wrap("list books", err, zap.String("owner", ownerID))
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}
