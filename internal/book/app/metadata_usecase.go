package app

import (
	"context"
	"errors"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	"book_exchange_service/pkg/database"
	errprocess "book_exchange_service/pkg/err"
	"book_exchange_service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMetadataLimit = 10
	defaultMetadataTTL   = 6 * time.Hour
)

// MetadataUseCase title / author / isbn lookup in the public catalogue
type MetadataUseCase struct {
	client repository.MetadataClient
	cache  database.RedisRepository[[]domain.BookMetadata]
	ttl    time.Duration
	group  singleflight.Group
}

// NewMetadataUseCase create MetadataUseCase; cache may be nil
func NewMetadataUseCase(client repository.MetadataClient, cache database.RedisRepository[[]domain.BookMetadata], ttl time.Duration) *MetadataUseCase {
	if ttl <= 0 {
		ttl = defaultMetadataTTL
	}
	return &MetadataUseCase{client: client, cache: cache, ttl: ttl}
}

// Search catalogue entries matching q
func (uc *MetadataUseCase) Search(ctx context.Context, q domain.MetadataQuery) ([]domain.BookMetadata, error) {
	if q.Empty() {
		return nil, domain.ErrEmptyMetadataQuery
	}
	if q.Limit <= 0 {
		q.Limit = defaultMetadataLimit
	}

	key := q.CacheKey()
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil {
			return cached, nil
		} else if !errors.Is(err, database.ErrCacheMiss) {
			logger.Log.Warn("metadata cache read", zap.Error(err))
		}
	}

	v, err, _ := uc.group.Do(key, func() (interface{}, error) {
		res, err := uc.client.Search(ctx, q)
		if err != nil {
			return nil, errprocess.Wrap("metadata search", err, zap.String("key", key))
		}
		if uc.cache != nil {
			if err := uc.cache.Set(ctx, key, res, uc.ttl); err != nil {
				logger.Log.Warn("metadata cache write", zap.Error(err))
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.BookMetadata), nil
}
