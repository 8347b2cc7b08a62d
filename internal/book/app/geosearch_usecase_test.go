package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	"book_exchange_service/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGeosearch_Suggest_UsesFallbackOrigin(t *testing.T) {
	ctx := context.Background()
	g := new(MockGeocoder)
	want := []domain.Suggestion{{PlaceID: "p1", Label: "221B Baker Street"}}
	g.On("Suggest", mock.Anything, "baker", london).Return(want, nil).Once()

	uc := newGeo(t, g, nil, GeosearchConfig{})
	got, err := uc.Suggest(ctx, "  baker ", nil)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	g.AssertExpectations(t)
}

func TestGeosearch_Suggest_BiasWins(t *testing.T) {
	ctx := context.Background()
	g := new(MockGeocoder)
	paris := domain.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	g.On("Suggest", mock.Anything, "rue", paris).Return([]domain.Suggestion{}, nil).Once()

	uc := newGeo(t, g, nil, GeosearchConfig{})
	_, err := uc.Suggest(ctx, "rue", &paris)

	require.NoError(t, err)
	g.AssertExpectations(t)
}

func TestGeosearch_Suggest_TooShort(t *testing.T) {
	g := new(MockGeocoder)
	uc := newGeo(t, g, nil, GeosearchConfig{})

	_, err := uc.Suggest(context.Background(), " b ", nil)

	assert.ErrorIs(t, err, domain.ErrQueryTooShort)
	g.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
}

// 測試快取命中時不呼叫地圖服務
func TestGeosearch_Suggest_CacheHit(t *testing.T) {
	ctx := context.Background()
	g := new(MockGeocoder)
	cache := new(MockCache[[]domain.Suggestion])
	cached := []domain.Suggestion{{PlaceID: "cached"}}
	cache.On("Get", ctx, "baker st|51.51,-0.13").Return(cached, nil)

	uc := NewGeosearchUseCase(loadedLoader(t, g), nil, cache, nil, GeosearchConfig{Fallback: london})
	got, err := uc.Suggest(ctx, "Baker St", nil)

	require.NoError(t, err)
	assert.Equal(t, cached, got)
	g.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
}

func TestGeosearch_Suggest_CacheMissStores(t *testing.T) {
	ctx := context.Background()
	g := new(MockGeocoder)
	cache := new(MockCache[[]domain.Suggestion])
	res := []domain.Suggestion{{PlaceID: "p1"}}
	cache.On("Get", ctx, "baker st|51.51,-0.13").Return(nil, database.ErrCacheMiss)
	cache.On("Set", ctx, "baker st|51.51,-0.13", res, 24*time.Hour).Return(nil)
	g.On("Suggest", mock.Anything, "Baker St", london).Return(res, nil)

	uc := NewGeosearchUseCase(loadedLoader(t, g), nil, cache, nil, GeosearchConfig{Fallback: london})
	got, err := uc.Suggest(ctx, "Baker St", nil)

	require.NoError(t, err)
	assert.Equal(t, res, got)
	cache.AssertExpectations(t)
}

// 測試地圖服務超時
func TestGeosearch_Suggest_Timeout(t *testing.T) {
	g := new(MockGeocoder)
	g.On("Suggest", mock.Anything, "slow", london).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	uc := newGeo(t, g, nil, GeosearchConfig{Timeout: 20 * time.Millisecond})
	_, err := uc.Suggest(context.Background(), "slow", nil)

	assert.ErrorIs(t, err, domain.ErrGeocodeTimeout)
}

func TestGeosearch_ProviderNotLoaded(t *testing.T) {
	loader := NewProviderLoader(func(context.Context) (repository.Geocoder, error) {
		return nil, errors.New("missing api key")
	})
	_ = loader.Load(context.Background())
	uc := NewGeosearchUseCase(loader, nil, nil, nil, GeosearchConfig{Fallback: london})

	_, err := uc.Suggest(context.Background(), "baker", nil)
	assert.ErrorIs(t, err, domain.ErrProviderNotReady)

	_, err = uc.Resolve(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrProviderNotReady)
}

func TestGeosearch_Resolve(t *testing.T) {
	ctx := context.Background()
	g := new(MockGeocoder)
	place := domain.Suggestion{PlaceID: "p1", PostalCode: "NW1 6XE", Point: &domain.GeoPoint{Lat: 51.5238, Lng: -0.1586}}
	g.On("Resolve", mock.Anything, "p1").Return(place, nil)
	g.On("Resolve", mock.Anything, "gone").Return(domain.Suggestion{}, domain.ErrPlaceNotFound)

	uc := newGeo(t, g, nil, GeosearchConfig{})

	got, err := uc.Resolve(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, place, got)

	_, err = uc.Resolve(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrPlaceNotFound)

	_, err = uc.Resolve(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrPlaceNotFound)
}

func TestGeosearch_Reverse_InvalidPoint(t *testing.T) {
	uc := newGeo(t, new(MockGeocoder), nil, GeosearchConfig{})

	_, err := uc.Reverse(context.Background(), domain.GeoPoint{Lat: 95, Lng: 0})

	assert.ErrorIs(t, err, domain.ErrInvalidPoint)
}

func bookAt(title string, p domain.GeoPoint, claimedKm float64) domain.BookWithDistance {
	return domain.BookWithDistance{
		Book:       domain.Book{ID: title, Title: title, Latitude: f64(p.Lat), Longitude: f64(p.Lng), Available: true},
		DistanceKm: claimedKm,
	}
}

// 測試資料庫回傳超出半徑的書會被濾掉
func TestGeosearch_Nearby_DropsRowsOutsideRadius(t *testing.T) {
	ctx := context.Background()
	books := new(MockBookRepository)
	near := bookAt("near", domain.GeoPoint{Lat: 51.5155, Lng: -0.1419}, 1.3)
	paris := bookAt("paris", domain.GeoPoint{Lat: 48.8566, Lng: 2.3522}, 0.5)
	noPoint := domain.BookWithDistance{Book: domain.Book{ID: "nowhere"}}
	// 12 km 對齊到 10 km
	books.On("FindWithDistances", ctx, london, 10.0, 50).Return([]domain.BookWithDistance{near, paris, noPoint}, nil)

	uc := newGeo(t, new(MockGeocoder), books, GeosearchConfig{})
	res, err := uc.Nearby(ctx, domain.NearbyQuery{Lat: london.Lat, Lng: london.Lng, RadiusKm: 12})

	require.NoError(t, err)
	assert.Equal(t, 10.0, res.RadiusKm)
	assert.Equal(t, 2, res.Dropped)
	require.Len(t, res.Books, 1)
	assert.Equal(t, "near", res.Books[0].ID)
	for _, b := range res.Books {
		p, _ := b.Point()
		assert.LessOrEqual(t, domain.Haversine(london, p), res.RadiusKm)
	}
}

func TestGeosearch_Nearby_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	books := new(MockBookRepository)
	books.On("FindWithDistances", ctx, london, 5.0, 20).Return([]domain.BookWithDistance{}, nil)

	uc := newGeo(t, new(MockGeocoder), books, GeosearchConfig{MaxResults: 20})
	res, err := uc.Nearby(ctx, domain.NearbyQuery{Lat: london.Lat, Lng: london.Lng, RadiusKm: 5, MaxResults: 500})

	require.NoError(t, err)
	assert.Empty(t, res.Books)
	books.AssertExpectations(t)
}

func TestGeosearch_Nearby_InvalidInput(t *testing.T) {
	ctx := context.Background()
	books := new(MockBookRepository)
	uc := newGeo(t, new(MockGeocoder), books, GeosearchConfig{})

	_, err := uc.Nearby(ctx, domain.NearbyQuery{Lat: london.Lat, Lng: london.Lng, RadiusKm: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidRadius)

	_, err = uc.Nearby(ctx, domain.NearbyQuery{Lat: 91, Lng: 0, RadiusKm: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidPoint)

	books.AssertNotCalled(t, "FindWithDistances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGeosearch_Nearby_RepositoryError(t *testing.T) {
	ctx := context.Background()
	books := new(MockBookRepository)
	boom := errors.New("function missing")
	books.On("FindWithDistances", ctx, london, 1.0, 50).Return(nil, boom)

	uc := newGeo(t, new(MockGeocoder), books, GeosearchConfig{})
	_, err := uc.Nearby(ctx, domain.NearbyQuery{Lat: london.Lat, Lng: london.Lng, RadiusKm: 1})

	assert.ErrorIs(t, err, boom)
}
