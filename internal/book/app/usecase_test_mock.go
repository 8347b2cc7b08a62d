package app

import (
	"context"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/pkg/database"

	"github.com/stretchr/testify/mock"
)

// MockBookRepository Mock BookRepository
type MockBookRepository struct {
	mock.Mock
}

// Create mock create book
func (m *MockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

// FindByID mock find book by id
func (m *MockBookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByOwner mock list books of owner
func (m *MockBookRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Book, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindWithDistances mock distance query
func (m *MockBookRepository) FindWithDistances(ctx context.Context, center domain.GeoPoint, radiusKm float64, maxResults int) ([]domain.BookWithDistance, error) {
	args := m.Called(ctx, center, radiusKm, maxResults)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.BookWithDistance), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRequestRepository Mock RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

// Create mock create request
func (m *MockRequestRepository) Create(ctx context.Context, req *domain.BookRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// FindByID mock find request by id
func (m *MockRequestRepository) FindByID(ctx context.Context, id string) (*domain.BookRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.BookRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindPending mock find pending request
func (m *MockRequestRepository) FindPending(ctx context.Context, bookID, requesterID string) (*domain.BookRequest, error) {
	args := m.Called(ctx, bookID, requesterID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.BookRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByOwner mock incoming requests
func (m *MockRequestRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.BookRequest, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.BookRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByRequester mock outgoing requests
func (m *MockRequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.BookRequest, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.BookRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateStatus mock conditional status update
func (m *MockRequestRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RequestStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// MockNotificationRepository Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

// EnsureIndexes mock ensure indexes
func (m *MockNotificationRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Insert mock insert notification
func (m *MockNotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// ListByUser mock list notifications
func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountUnread mock unread count
func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MarkRead mock mark read
func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockNotificationPublisher Mock NotificationPublisher
type MockNotificationPublisher struct {
	mock.Mock
}

// Publish mock publish job
func (m *MockNotificationPublisher) Publish(ctx context.Context, job domain.NotificationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockGeocoder Mock Geocoder
type MockGeocoder struct {
	mock.Mock
}

// Suggest mock suggest
func (m *MockGeocoder) Suggest(ctx context.Context, query string, bias domain.GeoPoint) ([]domain.Suggestion, error) {
	args := m.Called(ctx, query, bias)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Suggestion), args.Error(1)
	}
	return nil, args.Error(1)
}

// Resolve mock resolve
func (m *MockGeocoder) Resolve(ctx context.Context, placeID string) (domain.Suggestion, error) {
	args := m.Called(ctx, placeID)
	return args.Get(0).(domain.Suggestion), args.Error(1)
}

// Reverse mock reverse
func (m *MockGeocoder) Reverse(ctx context.Context, p domain.GeoPoint) (domain.Suggestion, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Suggestion), args.Error(1)
}

// Ping mock ping
func (m *MockGeocoder) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMetadataClient Mock MetadataClient
type MockMetadataClient struct {
	mock.Mock
}

// Search mock catalogue search
func (m *MockMetadataClient) Search(ctx context.Context, q domain.MetadataQuery) ([]domain.BookMetadata, error) {
	args := m.Called(ctx, q)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.BookMetadata), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCache Mock RedisRepository
type MockCache[T any] struct {
	mock.Mock
}

var _ database.RedisRepository[string] = (*MockCache[string])(nil)

// Set mock set
func (m *MockCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Get mock get
func (m *MockCache[T]) Get(ctx context.Context, key string) (T, error) {
	args := m.Called(ctx, key)
	var zero T
	if args.Get(0) != nil {
		return args.Get(0).(T), args.Error(1)
	}
	return zero, args.Error(1)
}
