package database

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrCacheMiss the key is not in redis
var ErrCacheMiss = errors.New("cache miss")

// Connection definition a dsn plus retry policy
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}

// MongoDB definition mongo db
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// MinIOConnection definition minio
type MinIOConnection struct {
	Endpoint   string
	User       string
	Password   string
	BucketName string
	UseSSL     bool

	RetryCount    int
	RetryInterval time.Duration
}
