package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"book_exchange_service/internal/chat/app"
	"book_exchange_service/internal/chat/repository"
	"book_exchange_service/internal/chat/router"
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
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	testtool.StartPprof(os.Getenv("CHAT_SERVICE_PPROF"))
	token.SetSecret(os.Getenv("JWT_SECRET"))

	// 1. 建立 PostgreSQL 連線 (會話、訊息)
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.PostgreSQL.Host, cfg.PostgreSQL.Port)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	if config.IsLocal() {
		if err := migrations.Apply(ctx, pool); err != nil {
			logger.Log.Fatal("migrate failed", zap.Error(err))
		}
	}

	// 2. 建立 Redis 連線 (Pub/Sub)
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

	// 3. 建立 MinIO 連線 (頭像)
	var avatarStore *database.MinIOClient
	if cfg.MinIO.Host != "" {
		avatarStore, err = database.NewMinIOConnection(database.MinIOConnection{
			Endpoint:      fmt.Sprintf("%s:%d", cfg.MinIO.Host, cfg.MinIO.Port),
			User:          cfg.MinIO.User,
			Password:      cfg.MinIO.Password,
			BucketName:    cfg.MinIO.BucketName,
			UseSSL:        cfg.MinIO.UseSSL,
			RetryCount:    cfg.MinIO.RetryCount,
			RetryInterval: cfg.MinIO.RetryInterval,
		})
		if err != nil {
			logger.Log.Warn("minIO unavailable, avatars fall back to stored urls", zap.Error(err))
		}
	}
	presignTTL := cfg.MinIO.PresignTTL
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}

	// 4. 初始化 Repository
	convRepo := repository.NewConversationRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)
	partRepo := repository.NewParticipantRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	avatars := repository.NewAvatarResolver(avatarStore, presignTTL)
	pub := repository.NewRedisPubSub(redisClient)

	// 5. 初始化 UseCases
	convUC := app.NewConversationUseCase(convRepo, msgRepo, profileRepo, avatars, pub)
	msgUC := app.NewMessageUseCase(convRepo, msgRepo, partRepo, pub, cfg.Message.PageSize)

	// 6. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))
	r.Use(middlewares.Metrics(config.EnvConfig.ChatService))

	router.RegisterRoutes(ctx, r, config.EnvConfig.ChatService,
		app.NewChatWebsocketHandler(convUC, msgUC, pub),
		app.NewChatHTTPHandler(convUC, msgUC),
	)

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down chat service")
		if err := r.Shutdown(); err != nil {
			logger.Log.Error("fiber shutdown", zap.Error(err))
		}
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Chat Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}
