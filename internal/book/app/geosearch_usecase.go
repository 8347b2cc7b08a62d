package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	"book_exchange_service/pkg/database"
	errprocess "book_exchange_service/pkg/err"
	"book_exchange_service/pkg/logger"
	"book_exchange_service/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// GeosearchConfig geosearch limits; zero values take the defaults
type GeosearchConfig struct {
	Fallback   domain.GeoPoint
	Timeout    time.Duration
	MinChars   int
	MaxResults int
	CacheTTL   time.Duration
}

const (
	defaultGeocodeTimeout = 10 * time.Second
	defaultMinChars       = 2
	defaultMaxResults     = 50
	defaultGeoCacheTTL    = 24 * time.Hour
)

// GeosearchUseCase geocoding and nearby book search
type GeosearchUseCase struct {
	loader       *ProviderLoader
	books        repository.BookRepository
	suggestCache database.RedisRepository[[]domain.Suggestion]
	placeCache   database.RedisRepository[domain.Suggestion]
	group        singleflight.Group
	cfg          GeosearchConfig
}

// NewGeosearchUseCase create GeosearchUseCase; the caches may be nil
func NewGeosearchUseCase(
	loader *ProviderLoader,
	books repository.BookRepository,
	suggestCache database.RedisRepository[[]domain.Suggestion],
	placeCache database.RedisRepository[domain.Suggestion],
	cfg GeosearchConfig,
) *GeosearchUseCase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeocodeTimeout
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = defaultMinChars
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultGeoCacheTTL
	}
	return &GeosearchUseCase{
		loader:       loader,
		books:        books,
		suggestCache: suggestCache,
		placeCache:   placeCache,
		cfg:          cfg,
	}
}

// Loader provider loader shared by every session
func (uc *GeosearchUseCase) Loader() *ProviderLoader {
	return uc.loader
}

// LongEnough query reaches the autocomplete minimum
func (uc *GeosearchUseCase) LongEnough(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= uc.cfg.MinChars
}

// Origin bias when it is a usable coordinate, else the configured fallback
func (uc *GeosearchUseCase) Origin(bias *domain.GeoPoint) domain.GeoPoint {
	if bias != nil && bias.Valid() {
		return *bias
	}
	return uc.cfg.Fallback
}

// Suggest address predictions for query around bias
func (uc *GeosearchUseCase) Suggest(ctx context.Context, query string, bias *domain.GeoPoint) ([]domain.Suggestion, error) {
	q := strings.TrimSpace(query)
	if !uc.LongEnough(q) {
		return nil, domain.ErrQueryTooShort
	}
	g, err := uc.loader.Geocoder()
	if err != nil {
		return nil, err
	}

	origin := uc.Origin(bias)
	key := fmt.Sprintf("%s|%.2f,%.2f", strings.ToLower(q), origin.Lat, origin.Lng)
	if uc.suggestCache != nil {
		if cached, err := uc.suggestCache.Get(ctx, key); err == nil {
			metrics.GeocodeCacheHits.WithLabelValues("suggest").Inc()
			return cached, nil
		} else if !errors.Is(err, database.ErrCacheMiss) {
			logger.Log.Warn("suggest cache read", zap.Error(err))
		}
	}

	v, err, _ := uc.group.Do("suggest:"+key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()

		res, err := g.Suggest(callCtx, q, origin)
		if err != nil {
			return nil, providerError(callCtx, "suggest", err, zap.String("query", q))
		}
		metrics.GeocodeRequests.WithLabelValues("suggest", "ok").Inc()
		if uc.suggestCache != nil {
			if err := uc.suggestCache.Set(ctx, key, res, uc.cfg.CacheTTL); err != nil {
				logger.Log.Warn("suggest cache write", zap.Error(err))
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Suggestion), nil
}

// Resolve coordinate and postal code of a predicted place
func (uc *GeosearchUseCase) Resolve(ctx context.Context, placeID string) (domain.Suggestion, error) {
	if strings.TrimSpace(placeID) == "" {
		return domain.Suggestion{}, domain.ErrPlaceNotFound
	}
	return uc.lookup(ctx, "place", placeID, func(callCtx context.Context, g repository.Geocoder) (domain.Suggestion, error) {
		return g.Resolve(callCtx, placeID)
	})
}

// Reverse nearest address of p, used to fill postal codes
func (uc *GeosearchUseCase) Reverse(ctx context.Context, p domain.GeoPoint) (domain.Suggestion, error) {
	if !p.Valid() {
		return domain.Suggestion{}, domain.ErrInvalidPoint
	}
	key := fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
	return uc.lookup(ctx, "reverse", key, func(callCtx context.Context, g repository.Geocoder) (domain.Suggestion, error) {
		return g.Reverse(callCtx, p)
	})
}

func (uc *GeosearchUseCase) lookup(
	ctx context.Context,
	kind, key string,
	call func(context.Context, repository.Geocoder) (domain.Suggestion, error),
) (domain.Suggestion, error) {
	g, err := uc.loader.Geocoder()
	if err != nil {
		return domain.Suggestion{}, err
	}

	cacheKey := kind + ":" + key
	if uc.placeCache != nil {
		if cached, err := uc.placeCache.Get(ctx, cacheKey); err == nil {
			metrics.GeocodeCacheHits.WithLabelValues(kind).Inc()
			return cached, nil
		} else if !errors.Is(err, database.ErrCacheMiss) {
			logger.Log.Warn("place cache read", zap.String("kind", kind), zap.Error(err))
		}
	}

	v, err, _ := uc.group.Do(cacheKey, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()

		res, err := call(callCtx, g)
		if err != nil {
			return nil, providerError(callCtx, kind, err, zap.String("key", key))
		}
		metrics.GeocodeRequests.WithLabelValues(kind, "ok").Inc()
		if uc.placeCache != nil {
			if err := uc.placeCache.Set(ctx, cacheKey, res, uc.cfg.CacheTTL); err != nil {
				logger.Log.Warn("place cache write", zap.String("kind", kind), zap.Error(err))
			}
		}
		return res, nil
	})
	if err != nil {
		return domain.Suggestion{}, err
	}
	return v.(domain.Suggestion), nil
}

// providerError maps an expired call context to domain.ErrGeocodeTimeout
func providerError(callCtx context.Context, kind string, err error, fields ...zap.Field) error {
	if errors.Is(err, domain.ErrPlaceNotFound) {
		metrics.GeocodeRequests.WithLabelValues(kind, "not_found").Inc()
		return err
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		metrics.GeocodeRequests.WithLabelValues(kind, "timeout").Inc()
		return errprocess.Wrap("geocode "+kind, domain.ErrGeocodeTimeout, fields...)
	}
	metrics.GeocodeRequests.WithLabelValues(kind, "error").Inc()
	return errprocess.Wrap("geocode "+kind, err, fields...)
}

// Nearby books within the radius of q, nearest first.
// The radius snaps to the slider scale and every row is re-checked with haversine.
func (uc *GeosearchUseCase) Nearby(ctx context.Context, q domain.NearbyQuery) (domain.NearbyResult, error) {
	center := domain.GeoPoint{Lat: q.Lat, Lng: q.Lng}
	if !center.Valid() {
		return domain.NearbyResult{}, domain.ErrInvalidPoint
	}
	radius, err := domain.SnapRadius(q.RadiusKm)
	if err != nil {
		return domain.NearbyResult{}, err
	}
	limit := q.MaxResults
	if limit <= 0 || limit > uc.cfg.MaxResults {
		limit = uc.cfg.MaxResults
	}

	rows, err := uc.books.FindWithDistances(ctx, center, radius, limit)
	if err != nil {
		return domain.NearbyResult{}, errprocess.Wrap("nearby books", err,
			zap.Float64("lat", center.Lat), zap.Float64("lng", center.Lng), zap.Float64("radius_km", radius))
	}

	kept, dropped := domain.FilterWithinRadius(center, rows, radius)
	if dropped > 0 {
		metrics.NearbyDropped.Add(float64(dropped))
		logger.Log.Warn("distance query returned rows outside the radius",
			zap.Int("dropped", dropped), zap.Float64("radius_km", radius))
	}
	return domain.NearbyResult{Center: center, RadiusKm: radius, Books: kept, Dropped: dropped}, nil
}
