package app

import (
	"context"
	"sync"
	"time"

	"book_exchange_service/internal/book/domain"
)

// DefaultRadiusIndex slider starts at 10 km
const DefaultRadiusIndex = 9

// GeosearchSession one geosearch view: location box, radius slider and results
type GeosearchSession struct {
	ctx   context.Context
	geo   *GeosearchUseCase
	auto  *Autocompleter
	emit  func(domain.WSResponse)
	limit int

	mu          sync.Mutex
	bias        *domain.GeoPoint
	radiusIndex int
	selected    *domain.Suggestion
}

// NewGeosearchSession create GeosearchSession; every push goes through emit
func NewGeosearchSession(ctx context.Context, geo *GeosearchUseCase, debounce time.Duration, maxResults int, emit func(domain.WSResponse)) *GeosearchSession {
	if emit == nil {
		emit = func(domain.WSResponse) {}
	}
	s := &GeosearchSession{
		ctx:         ctx,
		geo:         geo,
		emit:        emit,
		limit:       maxResults,
		radiusIndex: DefaultRadiusIndex,
	}
	s.auto = NewAutocompleter(ctx, geo, debounce, func(u domain.AutocompleteUpdate) {
		emit(domain.WSResponse{Action: domain.PushAutocomplete, Success: u.State != domain.StateError, Data: u, Error: u.Error})
	})
	return s
}

// Autocompleter location box state machine
func (s *GeosearchSession) Autocompleter() *Autocompleter {
	return s.auto
}

// Input text box changed
func (s *GeosearchSession) Input(query string) {
	s.auto.Input(query)
}

// Locate device position; denied (or timed out) geolocation falls back to the configured point
func (s *GeosearchSession) Locate(p domain.LocatePayload) domain.GeoPoint {
	s.mu.Lock()
	if p.Denied {
		s.bias = nil
	} else {
		pt := domain.GeoPoint{Lat: p.Lat, Lng: p.Lng}
		if pt.Valid() {
			s.bias = &pt
		} else {
			s.bias = nil
		}
	}
	bias := s.bias
	s.mu.Unlock()

	s.auto.SetBias(bias)
	return s.geo.Origin(bias)
}

// Select resolves placeID and searches around it
func (s *GeosearchSession) Select(ctx context.Context, placeID string) (domain.NearbyResult, error) {
	place, err := s.geo.Resolve(ctx, placeID)
	if err != nil {
		return domain.NearbyResult{}, err
	}
	if place.Point == nil {
		return domain.NearbyResult{}, domain.ErrPlaceNotFound
	}

	s.mu.Lock()
	s.selected = &place
	s.mu.Unlock()
	return s.search(ctx)
}

// SetRadius moves the slider; the current place is searched again
func (s *GeosearchSession) SetRadius(ctx context.Context, index int) (domain.NearbyResult, bool, error) {
	if _, err := domain.RadiusForIndex(index); err != nil {
		return domain.NearbyResult{}, false, err
	}
	s.mu.Lock()
	s.radiusIndex = index
	hasPlace := s.selected != nil
	s.mu.Unlock()

	if !hasPlace {
		return domain.NearbyResult{}, false, nil
	}
	res, err := s.search(ctx)
	return res, true, err
}

// Retry reloads the geocoding provider
func (s *GeosearchSession) Retry(ctx context.Context) error {
	return s.auto.Retry(ctx)
}

// RadiusKm current slider value
func (s *GeosearchSession) RadiusKm() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	km, _ := domain.RadiusForIndex(s.radiusIndex)
	return km
}

// Close stops pending lookups
func (s *GeosearchSession) Close() {
	s.auto.Close()
}

func (s *GeosearchSession) search(ctx context.Context) (domain.NearbyResult, error) {
	s.mu.Lock()
	place := *s.selected
	km, _ := domain.RadiusForIndex(s.radiusIndex)
	s.mu.Unlock()

	res, err := s.geo.Nearby(ctx, domain.NearbyQuery{
		Lat:        place.Point.Lat,
		Lng:        place.Point.Lng,
		RadiusKm:   km,
		MaxResults: s.limit,
	})
	if err != nil {
		return domain.NearbyResult{}, err
	}
	s.emit(domain.WSResponse{Action: domain.PushResults, Success: true, Data: res})
	return res, nil
}
