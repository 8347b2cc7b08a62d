package domain

import (
	"errors"
	"math"
)

var (
	// ErrQueryTooShort autocomplete query under the minimum length
	ErrQueryTooShort = errors.New("query too short")
	// ErrGeocodeTimeout geocoding provider did not answer in time
	ErrGeocodeTimeout = errors.New("geocoding timed out")
	// ErrProviderNotReady geocoding provider is not loaded
	ErrProviderNotReady = errors.New("geocoding provider not ready")
	// ErrPlaceNotFound provider has no result for the place / coordinate
	ErrPlaceNotFound = errors.New("place not found")
)

// EarthRadiusKm mean earth radius used for great circle distances
const EarthRadiusKm = 6371.0

// GeoPoint coordinate in degrees
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid latitude in [-90,90] and longitude in [-180,180]
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// Suggestion one autocomplete / geocode answer.
// Point is nil for autocomplete predictions until the place is resolved.
type Suggestion struct {
	PlaceID    string    `json:"place_id"`
	Label      string    `json:"label"`
	PostalCode string    `json:"postal_code,omitempty"`
	Point      *GeoPoint `json:"point,omitempty"`
}

// Haversine great circle distance between a and b in km
func Haversine(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// FilterWithinRadius keeps the rows whose own coordinate lies within radiusKm of origin.
// Rows without a coordinate are dropped. The server reported distance is ignored.
func FilterWithinRadius(origin GeoPoint, rows []BookWithDistance, radiusKm float64) (kept []BookWithDistance, dropped int) {
	kept = make([]BookWithDistance, 0, len(rows))
	for _, r := range rows {
		p, ok := r.Point()
		if !ok || Haversine(origin, p) > radiusKm {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}

// ProviderStatus geocoding provider readiness
type ProviderStatus struct {
	Ready bool   `json:"ready"`
	Loads int    `json:"loads"`
	Error string `json:"error,omitempty"`
}
