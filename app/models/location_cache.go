package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationCache bản ghi cache tọa độ, bất biến sau khi tạo
type LocationCache struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Fingerprint string             `bson:"fingerprint" json:"fingerprint"` // sha256 của (city, state, country) literal
	City        *string            `bson:"city" json:"city"`
	State       *string            `bson:"state" json:"state"`
	Country     string             `bson:"country" json:"country"`
	Latitude    float64            `bson:"latitude" json:"latitude"`
	Longitude   float64            `bson:"longitude" json:"longitude"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// NewLocationCache tạo bản ghi cache từ query và tọa độ đã resolve
func NewLocationCache(q LocationQuery, c Coordinates) *LocationCache {
	return &LocationCache{
		Fingerprint: q.Fingerprint(),
		City:        q.City,
		State:       q.State,
		Country:     q.Country,
		Latitude:    c.Lat,
		Longitude:   c.Lon,
		CreatedAt:   time.Now().UTC(),
	}
}

// Query trả về LocationQuery tương ứng với bản ghi
func (lc *LocationCache) Query() LocationQuery {
	return LocationQuery{City: lc.City, State: lc.State, Country: lc.Country}
}

// Coordinates tọa độ của bản ghi
func (lc *LocationCache) Coordinates() Coordinates {
	return Coordinates{Lat: lc.Latitude, Lon: lc.Longitude}
}
