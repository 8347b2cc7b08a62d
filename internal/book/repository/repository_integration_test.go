//go:build integration

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/migrations"
	"book_exchange_service/pkg/database"
	"book_exchange_service/pkg/logger"
	testtool "book_exchange_service/pkg/test_tool"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

var (
	db       *gorm.DB
	mongoDB  *database.MongoDB
	rabbitCh *amqp.Channel
)

// **TestMain 啟動 postgres、mongo、rabbitmq 容器**
func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.SetNewNop()

	pgContainer, pgHost, pgPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "book",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start postgres container: %v", err)
	}

	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start mongo container: %v", err)
	}

	rabbitContainer, rabbitHost, rabbitPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start rabbitmq container: %v", err)
	}

	conn := database.Connection{
		ConnectStr:    fmt.Sprintf("postgres://test:test@%s:%s/book?sslmode=disable", pgHost, pgPort),
		RetryCount:    5,
		RetryInterval: 2,
	}
	pool, err := database.NewDatabaseConnection(conn)
	if err != nil {
		log.Fatalf("❌ Failed to connect postgres: %v", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("❌ Failed to migrate: %v", err)
	}
	pool.Close()

	db, err = database.NewPGConnection(conn)
	if err != nil {
		log.Fatalf("❌ Failed to open gorm: %v", err)
	}

	mongoDB, err = database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 2,
	}, "book_test")
	if err != nil {
		log.Fatalf("❌ Failed to connect mongo: %v", err)
	}

	rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    fmt.Sprintf("amqp://guest:guest@%s:%s/", rabbitHost, rabbitPort),
		RetryCount:    10,
		RetryInterval: 2,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect rabbitmq: %v", err)
	}
	rabbitCh, err = database.GetRabbitMQChannelWithRetry(rabbitConn, domain.NotificationQueue, 5, 2)
	if err != nil {
		log.Fatalf("❌ Failed to open rabbitmq channel: %v", err)
	}

	code := m.Run()

	rabbitCh.Close()
	rabbitConn.Close()
	_ = mongoDB.Close(ctx)
	_ = pgContainer.Terminate(ctx)
	_ = mongoContainer.Terminate(ctx)
	_ = rabbitContainer.Terminate(ctx)
	os.Exit(code)
}

func float(f float64) *float64 { return &f }

func newBook(t *testing.T, repo BookRepository, owner string, lat, lng float64) *domain.Book {
	t.Helper()
	b := &domain.Book{
		ID:        uuid.New().String(),
		OwnerID:   owner,
		Title:     "Book " + uuid.New().String()[:8],
		Latitude:  float(lat),
		Longitude: float(lng),
		Available: true,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

// 測試 get_books_with_distances 與 haversine 篩選
func TestBookRepositoryFindWithDistances(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(db)
	owner := uuid.New().String()

	// 南極附近，避免被其他測試資料干擾
	center := domain.GeoPoint{Lat: -80, Lng: 10}
	near := newBook(t, repo, owner, -80.005, 10)
	far := newBook(t, repo, owner, -80.5, 10)

	rows, err := repo.FindWithDistances(ctx, center, 10, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, near.ID, rows[0].ID)
	assert.InDelta(t, 0.556, rows[0].DistanceKm, 0.01)
	assert.InDelta(t, rows[0].DistanceKm*1000, rows[0].DistanceMeters, 1e-6)

	rows, err = repo.FindWithDistances(ctx, center, 100, 20)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, near.ID, rows[0].ID)
	assert.Equal(t, far.ID, rows[1].ID)

	rows, err = repo.FindWithDistances(ctx, center, 100, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	got, err := repo.FindByID(ctx, far.ID)
	require.NoError(t, err)
	assert.Equal(t, far.Title, got.Title)

	_, err = repo.FindByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrBookNotFound)

	owned, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}

// 測試重複申請與狀態轉換
func TestRequestRepository(t *testing.T) {
	ctx := context.Background()
	books := NewBookRepository(db)
	repo := NewRequestRepository(db)

	owner, reader := uuid.New().String(), uuid.New().String()
	book := newBook(t, books, owner, 0, 0)

	req := &domain.BookRequest{
		ID:          uuid.New().String(),
		BookID:      book.ID,
		RequesterID: reader,
		OwnerID:     owner,
		Status:      domain.RequestPending,
	}
	require.NoError(t, repo.Create(ctx, req))

	dup := *req
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrAlreadyRequested)

	pending, err := repo.FindPending(ctx, book.ID, reader)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, req.ID, pending.ID)

	require.NoError(t, repo.UpdateStatus(ctx, req.ID, domain.RequestPending, domain.RequestAccepted))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, req.ID, domain.RequestPending, domain.RequestDeclined), domain.ErrInvalidTransition)

	pending, err = repo.FindPending(ctx, book.ID, reader)
	require.NoError(t, err)
	assert.Nil(t, pending)

	incoming, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, domain.RequestAccepted, incoming[0].Status)

	outgoing, err := repo.ListByRequester(ctx, reader)
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)

	_, err = repo.FindByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoNotificationRepository(mongoDB.Database)
	require.NoError(t, repo.EnsureIndexes(ctx))

	user := uuid.New().String()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		n := domain.NewNotification(domain.NotificationJob{
			UserID:    user,
			Type:      domain.NotifyBookRequested,
			RequestID: fmt.Sprintf("r%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}, time.Now())
		require.NoError(t, repo.Insert(ctx, &n))
		assert.False(t, n.ID.IsZero())
	}

	list, err := repo.ListByUser(ctx, user, false, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "r2", list[0].Payload.RequestID)

	require.NoError(t, repo.MarkRead(ctx, user, list[0].ID.Hex()))
	unread, err := repo.CountUnread(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	unreadList, err := repo.ListByUser(ctx, user, true, 0)
	require.NoError(t, err)
	assert.Len(t, unreadList, 2)

	assert.ErrorIs(t, repo.MarkRead(ctx, "someone-else", list[1].ID.Hex()), domain.ErrNotificationNotFound)
	assert.ErrorIs(t, repo.MarkRead(ctx, user, "not-an-id"), domain.ErrNotificationNotFound)
}

func TestRabbitNotificationPublisher(t *testing.T) {
	_, err := rabbitCh.QueuePurge(domain.NotificationQueue, false)
	require.NoError(t, err)

	pub := NewRabbitNotificationPublisher(database.NewRabbitRepository(rabbitCh), domain.NotificationQueue)
	job := domain.NotificationJob{UserID: "owner", Type: domain.NotifyBookRequested, RequestID: "r1", CreatedAt: time.Now().UTC()}
	require.NoError(t, pub.Publish(context.Background(), job))

	var got amqp.Delivery
	require.Eventually(t, func() bool {
		d, ok, err := rabbitCh.Get(domain.NotificationQueue, true)
		if err != nil || !ok {
			return false
		}
		got = d
		return true
	}, 5*time.Second, 50*time.Millisecond)

	var decoded domain.NotificationJob
	require.NoError(t, json.Unmarshal(got.Body, &decoded))
	assert.Equal(t, "r1", decoded.RequestID)
	assert.Equal(t, "application/json", got.ContentType)
}
