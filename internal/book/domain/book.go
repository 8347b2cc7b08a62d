package domain

import (
	"errors"
	"time"
)

var (
	// ErrBookNotFound book id does not exist
	ErrBookNotFound = errors.New("book not found")
	// ErrInvalidRadius radius is not positive
	ErrInvalidRadius = errors.New("invalid search radius")
	// ErrInvalidPoint latitude / longitude out of range
	ErrInvalidPoint = errors.New("invalid coordinate")
)

// Book row of books
type Book struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	OwnerID     string    `gorm:"type:uuid;not null" json:"owner_id"`
	Title       string    `gorm:"not null" json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `gorm:"column:isbn" json:"isbn"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	PostalCode  string    `json:"postal_code"`
	Available   bool      `gorm:"default:true" json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName gorm table
func (Book) TableName() string {
	return "books"
}

// Point location of the book, false when it has none
func (b Book) Point() (GeoPoint, bool) {
	if b.Latitude == nil || b.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *b.Latitude, Lng: *b.Longitude}, true
}

// BookWithDistance one row of get_books_with_distances
type BookWithDistance struct {
	Book
	DistanceKm     float64 `gorm:"column:distance_km" json:"distance_km"`
	DistanceMeters float64 `gorm:"column:distance_meters" json:"distance_meters"`
}

// NewBook create book request
type NewBook struct {
	Title       string   `json:"title" conform:"trim" validate:"required,max=300"`
	Author      string   `json:"author" conform:"trim" validate:"max=300"`
	ISBN        string   `json:"isbn" conform:"trim" validate:"omitempty,isbn"`
	Condition   string   `json:"condition" conform:"trim,lower" validate:"omitempty,oneof=new like_new good fair poor"`
	Description string   `json:"description" conform:"trim" validate:"max=4000"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	PostalCode  string   `json:"postal_code" conform:"trim,upper" validate:"max=16"`
}

// NearbyQuery nearby search input
type NearbyQuery struct {
	Lat        float64 `query:"lat" validate:"latitude"`
	Lng        float64 `query:"lng" validate:"longitude"`
	RadiusKm   float64 `query:"radius_km" validate:"gt=0,lte=100"`
	MaxResults int     `query:"max_results" validate:"gte=0,lte=200"`
}

// NearbyResult nearby search output; RadiusKm is the radius actually applied
type NearbyResult struct {
	Center   GeoPoint           `json:"center"`
	RadiusKm float64            `json:"radius_km"`
	Books    []BookWithDistance `json:"books"`
	Dropped  int                `json:"dropped"`
}
