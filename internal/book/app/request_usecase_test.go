package app

import (
	"context"
	"errors"
	"testing"

	"book_exchange_service/internal/book/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	books     *MockBookRepository
	requests  *MockRequestRepository
	publisher *MockNotificationPublisher
	uc        *RequestUseCase
	book      *domain.Book
	owner     string
	reader    string
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		books:     new(MockBookRepository),
		requests:  new(MockRequestRepository),
		publisher: new(MockNotificationPublisher),
		owner:     uuid.New().String(),
		reader:    uuid.New().String(),
	}
	f.book = &domain.Book{ID: uuid.New().String(), OwnerID: f.owner, Title: "Dune", Available: true}
	f.uc = NewRequestUseCase(f.books, f.requests, f.publisher)
	return f
}

func TestRequestUseCase_RequestBook(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.books.On("FindByID", ctx, f.book.ID).Return(f.book, nil)
	f.requests.On("FindPending", ctx, f.book.ID, f.reader).Return(nil, nil)
	f.requests.On("Create", ctx, mock.MatchedBy(func(r *domain.BookRequest) bool {
		return r.OwnerID == f.owner && r.RequesterID == f.reader && r.Status == domain.RequestPending
	})).Return(nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(j domain.NotificationJob) bool {
		return j.UserID == f.owner && j.Type == domain.NotifyBookRequested && j.BookTitle == "Dune" && j.ActorID == f.reader
	})).Return(nil)

	req, err := f.uc.RequestBook(ctx, f.reader, domain.CreateRequestReq{BookID: f.book.ID, Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "hi", req.Message)
	f.requests.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

// 測試不能申請自己的書，且不寫入任何資料
func TestRequestUseCase_RequestBook_OwnBook(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.books.On("FindByID", ctx, f.book.ID).Return(f.book, nil)

	_, err := f.uc.RequestBook(ctx, f.owner, domain.CreateRequestReq{BookID: f.book.ID})

	assert.ErrorIs(t, err, domain.ErrCannotRequestOwnBook)
	assert.Equal(t, "cannot request own book", err.Error())
	f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRequestUseCase_RequestBook_AlreadyPending(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.books.On("FindByID", ctx, f.book.ID).Return(f.book, nil)
	f.requests.On("FindPending", ctx, f.book.ID, f.reader).Return(&domain.BookRequest{ID: "r1"}, nil)

	_, err := f.uc.RequestBook(ctx, f.reader, domain.CreateRequestReq{BookID: f.book.ID})

	assert.ErrorIs(t, err, domain.ErrAlreadyRequested)
	f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestUseCase_RequestBook_RaceOnInsert(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.books.On("FindByID", ctx, f.book.ID).Return(f.book, nil)
	f.requests.On("FindPending", ctx, f.book.ID, f.reader).Return(nil, nil)
	f.requests.On("Create", ctx, mock.Anything).Return(domain.ErrAlreadyRequested)

	_, err := f.uc.RequestBook(ctx, f.reader, domain.CreateRequestReq{BookID: f.book.ID})

	assert.ErrorIs(t, err, domain.ErrAlreadyRequested)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRequestUseCase_RequestBook_Unavailable(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.book.Available = false
	f.books.On("FindByID", ctx, f.book.ID).Return(f.book, nil)

	_, err := f.uc.RequestBook(ctx, f.reader, domain.CreateRequestReq{BookID: f.book.ID})

	assert.ErrorIs(t, err, domain.ErrBookUnavailable)
}

func TestRequestUseCase_RequestBook_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.books.On("FindByID", ctx, "missing").Return(nil, domain.ErrBookNotFound)

	_, err := f.uc.RequestBook(ctx, f.reader, domain.CreateRequestReq{BookID: "missing"})

	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

// 測試通知失敗不影響申請
func TestRequestUseCase_RequestBook_PublishFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.books.On("FindByID", ctx, f.book.ID).Return(f.book, nil)
	f.requests.On("FindPending", ctx, f.book.ID, f.reader).Return(nil, nil)
	f.requests.On("Create", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("channel closed"))

	req, err := f.uc.RequestBook(ctx, f.reader, domain.CreateRequestReq{BookID: f.book.ID})

	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
}

func (f *requestFixture) pending() *domain.BookRequest {
	return &domain.BookRequest{
		ID:          uuid.New().String(),
		BookID:      f.book.ID,
		RequesterID: f.reader,
		OwnerID:     f.owner,
		Status:      domain.RequestPending,
	}
}

func TestRequestUseCase_UpdateStatus_OwnerAccepts(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	req := f.pending()
	f.requests.On("FindByID", ctx, req.ID).Return(req, nil)
	f.requests.On("UpdateStatus", ctx, req.ID, domain.RequestPending, domain.RequestAccepted).Return(nil)
	f.books.On("FindByID", ctx, f.book.ID).Return(f.book, nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(j domain.NotificationJob) bool {
		return j.UserID == f.reader && j.Status == domain.RequestAccepted && j.Type == domain.NotifyRequestUpdated
	})).Return(nil)

	got, err := f.uc.UpdateStatus(ctx, f.owner, req.ID, domain.RequestAccepted)

	require.NoError(t, err)
	assert.Equal(t, domain.RequestAccepted, got.Status)
	f.publisher.AssertExpectations(t)
}

func TestRequestUseCase_UpdateStatus_RequesterCancels(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	req := f.pending()
	f.requests.On("FindByID", ctx, req.ID).Return(req, nil)
	f.requests.On("UpdateStatus", ctx, req.ID, domain.RequestPending, domain.RequestCancelled).Return(nil)
	f.books.On("FindByID", ctx, f.book.ID).Return(nil, domain.ErrBookNotFound)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(j domain.NotificationJob) bool {
		return j.UserID == f.owner && j.BookTitle == ""
	})).Return(nil)

	got, err := f.uc.UpdateStatus(ctx, f.reader, req.ID, domain.RequestCancelled)

	require.NoError(t, err)
	assert.Equal(t, domain.RequestCancelled, got.Status)
}

func TestRequestUseCase_UpdateStatus_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	req := f.pending()
	f.requests.On("FindByID", ctx, req.ID).Return(req, nil)

	_, err := f.uc.UpdateStatus(ctx, f.reader, req.ID, domain.RequestAccepted)
	assert.ErrorIs(t, err, domain.ErrNotAllowed)

	_, err = f.uc.UpdateStatus(ctx, f.owner, req.ID, domain.RequestPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.requests.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestUseCase_UpdateStatus_LostRace(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	req := f.pending()
	f.requests.On("FindByID", ctx, req.ID).Return(req, nil)
	f.requests.On("UpdateStatus", ctx, req.ID, domain.RequestPending, domain.RequestDeclined).Return(domain.ErrInvalidTransition)

	_, err := f.uc.UpdateStatus(ctx, f.owner, req.ID, domain.RequestDeclined)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRequestUseCase_ListsNeverNil(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	f.requests.On("ListByOwner", ctx, f.owner).Return(nil, nil)
	f.requests.On("ListByRequester", ctx, f.reader).Return(nil, errors.New("db down"))

	in, err := f.uc.ListIncoming(ctx, f.owner)
	require.NoError(t, err)
	assert.NotNil(t, in)

	out, err := f.uc.ListOutgoing(ctx, f.reader)
	assert.Error(t, err)
	assert.NotNil(t, out)
}
