package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/pkg"

	"googlemaps.github.io/maps"
)

// autocompleteBiasRadius metres around the bias point the provider favours
const autocompleteBiasRadius = 50000

// Geocoder definition forward / reverse geocoding provider
type Geocoder interface {
	// Suggest address predictions for query, favouring places around bias
	Suggest(ctx context.Context, query string, bias domain.GeoPoint) ([]domain.Suggestion, error)
	// Resolve coordinate and postal code of a predicted place
	Resolve(ctx context.Context, placeID string) (domain.Suggestion, error)
	// Reverse nearest address of p
	Reverse(ctx context.Context, p domain.GeoPoint) (domain.Suggestion, error)
	// Ping one cheap round trip proving key and network work
	Ping(ctx context.Context) error
}

// GeocoderConfig google maps client setting
type GeocoderConfig struct {
	APIKey  string
	BaseURL string
	Country string
	Probe   domain.GeoPoint
	Client  *http.Client
}

type googleGeocoder struct {
	client  *maps.Client
	country string
	probe   domain.GeoPoint
}

// NewGoogleGeocoder create a Geocoder backed by the google maps web services
func NewGoogleGeocoder(cfg GeocoderConfig) (Geocoder, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Client != nil {
		opts = append(opts, maps.WithHTTPClient(cfg.Client))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &googleGeocoder{client: client, country: cfg.Country, probe: cfg.Probe}, nil
}

func (g *googleGeocoder) Suggest(ctx context.Context, query string, bias domain.GeoPoint) ([]domain.Suggestion, error) {
	req := &maps.PlaceAutocompleteRequest{
		Input:    query,
		Location: &maps.LatLng{Lat: bias.Lat, Lng: bias.Lng},
		Radius:   autocompleteBiasRadius,
		Types:    maps.AutocompletePlaceTypeGeocode,
	}
	if g.country != "" {
		req.Components = map[maps.Component][]string{maps.ComponentCountry: {g.country}}
	}

	resp, err := g.client.PlaceAutocomplete(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, domain.Suggestion{PlaceID: p.PlaceID, Label: p.Description})
	}
	return out, nil
}

// resolveFields place details parts a Suggestion is built from
var resolveFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskPlaceID,
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskGeometry,
	maps.PlaceDetailsFieldMaskAddressComponent,
}

func (g *googleGeocoder) Resolve(ctx context.Context, placeID string) (domain.Suggestion, error) {
	res, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields:  resolveFields,
	})
	if err != nil {
		if strings.Contains(err.Error(), "NOT_FOUND") {
			return domain.Suggestion{}, domain.ErrPlaceNotFound
		}
		return domain.Suggestion{}, err
	}
	// ZERO_RESULTS 回傳空結果
	if res.PlaceID == "" && res.FormattedAddress == "" {
		return domain.Suggestion{}, domain.ErrPlaceNotFound
	}
	if res.PlaceID == "" {
		res.PlaceID = placeID
	}
	return newSuggestion(res.PlaceID, res.FormattedAddress, res.Geometry, res.AddressComponents), nil
}

func (g *googleGeocoder) Reverse(ctx context.Context, p domain.GeoPoint) (domain.Suggestion, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return domain.Suggestion{}, err
	}
	if len(results) == 0 {
		return domain.Suggestion{}, domain.ErrPlaceNotFound
	}
	// 優先取有郵遞區號的結果
	for _, r := range results {
		if s := toSuggestion(r); s.PostalCode != "" {
			return s, nil
		}
	}
	return toSuggestion(results[0]), nil
}

func (g *googleGeocoder) Ping(ctx context.Context) error {
	_, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: g.probe.Lat, Lng: g.probe.Lng},
	})
	return err
}

func toSuggestion(r maps.GeocodingResult) domain.Suggestion {
	return newSuggestion(r.PlaceID, r.FormattedAddress, r.Geometry, r.AddressComponents)
}

func newSuggestion(placeID, label string, geo maps.AddressGeometry, comps []maps.AddressComponent) domain.Suggestion {
	s := domain.Suggestion{
		PlaceID: placeID,
		Label:   label,
		Point:   &domain.GeoPoint{Lat: geo.Location.Lat, Lng: geo.Location.Lng},
	}
	for _, c := range comps {
		if pkg.Contains(c.Types, "postal_code") {
			s.PostalCode = c.LongName
		}
	}
	return s
}
