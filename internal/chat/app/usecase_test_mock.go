package app

import (
	"context"
	"time"

	"book_exchange_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// ListSummaryRows mock list summary rows
func (m *MockConversationRepository) ListSummaryRows(ctx context.Context, viewerID string) ([]domain.SummaryRow, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.SummaryRow), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID mock find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// IsParticipant mock participant check
func (m *MockConversationRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

// StartConversation mock start conversation
func (m *MockConversationRepository) StartConversation(ctx context.Context, creatorID, otherUserID string, bookID *string) (string, bool, error) {
	args := m.Called(ctx, creatorID, otherUserID, bookID)
	return args.String(0), args.Bool(1), args.Error(2)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// FindPage mock find message page
func (m *MockMessageRepository) FindPage(ctx context.Context, conversationID string, offset, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, offset, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Insert mock insert message
func (m *MockMessageRepository) Insert(ctx context.Context, msg domain.Message) (domain.Message, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(domain.Message), args.Error(1)
}

// CountUnread mock count unread
func (m *MockMessageRepository) CountUnread(ctx context.Context, viewerID string) (map[string]int, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]int), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockParticipantRepository Mock ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

// UpdateLastRead mock update last read
func (m *MockParticipantRepository) UpdateLastRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	args := m.Called(ctx, conversationID, userID, at)
	return args.Error(0)
}

// MockProfileRepository Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

// FindByID mock find profile
func (m *MockProfileRepository) FindByID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// EnsureProfile mock ensure profile
func (m *MockProfileRepository) EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAvatarResolver Mock AvatarResolver
type MockAvatarResolver struct {
	mock.Mock
}

// Resolve mock resolve avatar
func (m *MockAvatarResolver) Resolve(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish mock publish
func (m *MockPubSub) Publish(ctx context.Context, channel string, event domain.ChangeEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

// Subscribe mock subscribe
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(domain.ChangeEvent)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}
