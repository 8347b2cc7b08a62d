package app

import (
	"context"
	"fmt"
	"sync"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/internal/book/repository"
	"book_exchange_service/pkg/logger"

	"go.uber.org/zap"
)

// GeocoderFactory builds a provider client; called on every (re)load
type GeocoderFactory func(ctx context.Context) (repository.Geocoder, error)

// ProviderLoader owns the geocoding provider for the lifetime of the service.
// It is built once in main and handed to everything that geocodes.
type ProviderLoader struct {
	factory GeocoderFactory

	mu       sync.RWMutex
	geocoder repository.Geocoder
	err      error
	loads    int
}

// NewProviderLoader create ProviderLoader; nothing is loaded until Load
func NewProviderLoader(factory GeocoderFactory) *ProviderLoader {
	return &ProviderLoader{factory: factory, err: domain.ErrProviderNotReady}
}

// Load builds and pings the provider once; a loaded provider is kept
func (l *ProviderLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.geocoder != nil {
		return nil
	}
	return l.loadLocked(ctx)
}

// Reload drops the current provider and loads a new one
func (l *ProviderLoader) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.geocoder = nil
	return l.loadLocked(ctx)
}

func (l *ProviderLoader) loadLocked(ctx context.Context) error {
	l.loads++
	g, err := l.factory(ctx)
	if err == nil {
		err = g.Ping(ctx)
	}
	if err != nil {
		l.err = fmt.Errorf("%w: %v", domain.ErrProviderNotReady, err)
		logger.Log.Warn("geocoding provider load failed", zap.Int("attempt", l.loads), zap.Error(err))
		return l.err
	}

	l.geocoder, l.err = g, nil
	logger.Log.Info("geocoding provider ready", zap.Int("attempt", l.loads))
	return nil
}

// Ready provider loaded
func (l *ProviderLoader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.geocoder != nil
}

// Geocoder loaded provider, or an error wrapping domain.ErrProviderNotReady
func (l *ProviderLoader) Geocoder() (repository.Geocoder, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.geocoder == nil {
		return nil, l.err
	}
	return l.geocoder, nil
}

// Status readiness summary for the status endpoint
func (l *ProviderLoader) Status() domain.ProviderStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := domain.ProviderStatus{Ready: l.geocoder != nil, Loads: l.loads}
	if l.err != nil {
		s.Error = l.err.Error()
	}
	return s
}
