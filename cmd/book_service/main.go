package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "book_exchange_service/docs"
	"book_exchange_service/internal/book/app"
	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	"book_exchange_service/internal/book/router"
	"book_exchange_service/migrations"
	"book_exchange_service/pkg/config"
	"book_exchange_service/pkg/database"
	"book_exchange_service/pkg/logger"
	"book_exchange_service/pkg/middlewares"
	testtool "book_exchange_service/pkg/test_tool"
	"book_exchange_service/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.BookService, config.EnvConfig.BookServiceLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.Book](config.EnvConfig.BookService, config.EnvConfig.BookServiceYAMLPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	testtool.StartPprof(os.Getenv("BOOK_SERVICE_PPROF"))
	token.SetSecret(os.Getenv("JWT_SECRET"))

	// 1. 建立 PostgreSQL 連線 (書籍、申請)
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pgConn := database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	}
	if config.IsLocal() {
		pool, err := database.NewDatabaseConnection(pgConn)
		if err != nil {
			logger.Log.Fatal("Unable to connect to postgreSQL after retries", zap.Error(err))
		}
		if err := migrations.Apply(ctx, pool); err != nil {
			logger.Log.Fatal("migrate failed", zap.Error(err))
		}
		pool.Close()
	}
	db, err := database.NewPGConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.PostgreSQL.Host, cfg.PostgreSQL.Port)),
			zap.Error(err),
		)
	}

	// 2. 建立 MongoDB 連線 (通知)
	mongoDB, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr: fmt.Sprintf("mongodb://%s:%s@%s:%d",
			cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port),
		RetryCount:    cfg.MongoSQL.RetryCount,
		RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
	}, cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal("connect mongoDB err", zap.Error(err))
	}
	defer func() {
		if err := mongoDB.Close(context.Background()); err != nil {
			logger.Log.Error("close mongoDB", zap.Error(err))
		}
	}()
	notificationRepo := repository.NewMongoNotificationRepository(mongoDB.Database)
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("mongo indexes", zap.Error(err))
	}

	// 3. 建立 Redis 連線 (地理編碼、書目快取)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = database.NewRedisSingleClient(cfg.Redis.Addr, cfg.Redis.RedisDB)
	} else {
		masterName, sentinel := config.GetRedisSetting()
		redisClient, err = database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	}
	if err != nil {
		logger.Log.Fatal("connect redis err", zap.Error(err))
	}
	defer redisClient.Close()

	// 4. 建立 RabbitMQ 連線 (通知佇列)
	rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr: fmt.Sprintf("amqp://%s:%s@%s:%s/",
			cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port),
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: cfg.RabbitMQ.RetryInterval,
	})
	if err != nil {
		logger.Log.Fatal("connect rabbitMQ err", zap.Error(err))
	}
	defer rabbitConn.Close()

	queueName := cfg.RabbitMQ.QueueName
	if queueName == "" {
		queueName = domain.NotificationQueue
	}
	publishCh, err := database.GetRabbitMQChannelWithRetry(rabbitConn, queueName, cfg.RabbitMQ.RetryCount, cfg.RabbitMQ.RetryInterval)
	if err != nil {
		logger.Log.Fatal("open rabbitMQ channel err", zap.Error(err))
	}
	defer publishCh.Close()
	consumeCh, err := database.GetRabbitMQChannelWithRetry(rabbitConn, queueName, cfg.RabbitMQ.RetryCount, cfg.RabbitMQ.RetryInterval)
	if err != nil {
		logger.Log.Fatal("open rabbitMQ channel err", zap.Error(err))
	}
	defer consumeCh.Close()

	// 5. 初始化 Repository
	bookRepo := repository.NewBookRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	publisher := repository.NewRabbitNotificationPublisher(database.NewRabbitRepository(publishCh), queueName)
	metadataClient := repository.NewOpenLibraryClient(cfg.Metadata.BaseURL, cfg.Metadata.Timeout)

	fallback := domain.GeoPoint{Lat: cfg.Geocoding.FallbackLat, Lng: cfg.Geocoding.FallbackLng}
	loader := app.NewProviderLoader(func(context.Context) (repository.Geocoder, error) {
		return repository.NewGoogleGeocoder(repository.GeocoderConfig{
			APIKey:  cfg.Geocoding.APIKey,
			BaseURL: cfg.Geocoding.BaseURL,
			Country: cfg.Geocoding.Country,
			Probe:   fallback,
		})
	})
	// 載入失敗不中止服務，之後可經由 /geocode/reload 或 websocket retry 重試
	if err := loader.Load(ctx); err != nil {
		logger.Log.Warn("geocoding provider not ready at startup", zap.Error(err))
	}

	// 6. 初始化 UseCases
	geoUC := app.NewGeosearchUseCase(loader, bookRepo,
		database.NewRedisRepository[[]domain.Suggestion](redisClient, "geo:suggest:"),
		database.NewRedisRepository[domain.Suggestion](redisClient, "geo:place:"),
		app.GeosearchConfig{
			Fallback:   fallback,
			Timeout:    cfg.Geocoding.Timeout,
			MinChars:   cfg.Geocoding.MinChars,
			MaxResults: cfg.Search.MaxResults,
			CacheTTL:   cfg.Redis.CacheTTL,
		})
	bookUC := app.NewBookUseCase(bookRepo, geoUC)
	requestUC := app.NewRequestUseCase(bookRepo, requestRepo, publisher)
	notificationUC := app.NewNotificationUseCase(notificationRepo)
	metadataUC := app.NewMetadataUseCase(metadataClient,
		database.NewRedisRepository[[]domain.BookMetadata](redisClient, "metadata:"), cfg.Redis.CacheTTL)

	// 7. 啟動通知 Consumer
	consumer := app.NewConsumer(consumeCh, notificationUC, queueName)
	go func() {
		if err := consumer.StartConsumer(ctx); err != nil {
			logger.Log.Error("notification consumer", zap.Error(err))
		}
	}()

	// 8. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.BookServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))
	r.Use(middlewares.Metrics(config.EnvConfig.BookService))

	router.RegisterRoutes(ctx, r, config.EnvConfig.BookService,
		app.NewGeosearchWebsocketHandler(geoUC, cfg.Geocoding.Debounce, cfg.Search.MaxResults),
		app.NewBookHTTPHandler(bookUC, geoUC, requestUC, notificationUC, metadataUC),
	)

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down book service")
		if err := r.Shutdown(); err != nil {
			logger.Log.Error("fiber shutdown", zap.Error(err))
		}
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Book Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}
