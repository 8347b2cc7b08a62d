package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func bookAt(id string, lat, lng float64, reported float64) BookWithDistance {
	return BookWithDistance{
		Book:       Book{ID: id, Latitude: ptr(lat), Longitude: ptr(lng)},
		DistanceKm: reported,
	}
}

func TestHaversine(t *testing.T) {
	london := GeoPoint{Lat: 51.5074, Lng: -0.1278}
	paris := GeoPoint{Lat: 48.8566, Lng: 2.3522}

	assert.InDelta(t, 343.5, Haversine(london, paris), 1.0)
	assert.InDelta(t, Haversine(london, paris), Haversine(paris, london), 1e-9)
	assert.Equal(t, 0.0, Haversine(london, london))

	// 一個緯度約 111.19 km
	assert.InDelta(t, 111.19, Haversine(GeoPoint{Lat: 0, Lng: 0}, GeoPoint{Lat: 1, Lng: 0}), 0.01)
}

func TestFilterWithinRadiusDropsServerMistakes(t *testing.T) {
	origin := GeoPoint{Lat: 51.5074, Lng: -0.1278}
	rows := []BookWithDistance{
		bookAt("near", 51.5154, -0.1410, 1.2),
		// 伺服器回報 3km，實際約 343km
		bookAt("paris", 48.8566, 2.3522, 3),
		{Book: Book{ID: "nowhere"}, DistanceKm: 0},
	}

	kept, dropped := FilterWithinRadius(origin, rows, 5)
	assert.Equal(t, 2, dropped)
	if assert.Len(t, kept, 1) {
		assert.Equal(t, "near", kept[0].ID)
	}
}

func TestFilterWithinRadiusNeverExceedsRadius(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	origin := GeoPoint{Lat: 25.033, Lng: 121.5654}

	for round := 0; round < 50; round++ {
		radius := RadiusSteps[r.Intn(len(RadiusSteps))]
		n := r.Intn(40)
		rows := make([]BookWithDistance, 0, n)
		for i := 0; i < n; i++ {
			lat := origin.Lat + (r.Float64()-0.5)*2
			lng := origin.Lng + (r.Float64()-0.5)*2
			// 伺服器距離刻意亂填
			rows = append(rows, bookAt("b", lat, lng, r.Float64()*radius))
		}

		kept, dropped := FilterWithinRadius(origin, rows, radius)
		assert.Equal(t, n, len(kept)+dropped)
		for _, b := range kept {
			p, _ := b.Point()
			assert.LessOrEqual(t, Haversine(origin, p), radius)
		}
	}
}

func TestGeoPointValid(t *testing.T) {
	assert.True(t, GeoPoint{Lat: 90, Lng: -180}.Valid())
	assert.False(t, GeoPoint{Lat: 91, Lng: 0}.Valid())
	assert.False(t, GeoPoint{Lat: 0, Lng: 181}.Valid())
}
