package app

import (
	"context"
	"os"
	"testing"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	"book_exchange_service/pkg/logger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

var london = domain.GeoPoint{Lat: 51.5074, Lng: -0.1278}

func f64(v float64) *float64 { return &v }

// loadedLoader loader whose provider is g, already loaded
func loadedLoader(t *testing.T, g *MockGeocoder) *ProviderLoader {
	t.Helper()
	g.On("Ping", mock.Anything).Return(nil)
	l := NewProviderLoader(func(context.Context) (repository.Geocoder, error) { return g, nil })
	require.NoError(t, l.Load(context.Background()))
	return l
}

func newGeo(t *testing.T, g *MockGeocoder, books repository.BookRepository, cfg GeosearchConfig) *GeosearchUseCase {
	t.Helper()
	if cfg.Fallback == (domain.GeoPoint{}) {
		cfg.Fallback = london
	}
	return NewGeosearchUseCase(loadedLoader(t, g), books, nil, nil, cfg)
}
