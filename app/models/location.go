package models

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// DefaultCountry quốc gia mặc định khi query không có country
const DefaultCountry = "USA"

// LocationQuery yêu cầu resolve tọa độ cho một địa điểm
type LocationQuery struct {
	City    *string `json:"city"`    // Thành phố (có thể null)
	State   *string `json:"state"`   // Bang (có thể null)
	Country string  `json:"country"` // Quốc gia, mặc định "USA"
}

// NewLocationQuery tạo LocationQuery, country rỗng sẽ được gán "USA"
func NewLocationQuery(city, state *string, country string) LocationQuery {
	if strings.TrimSpace(country) == "" {
		country = DefaultCountry
	}
	return LocationQuery{City: city, State: state, Country: country}
}

// Resolvable false khi cả city và state đều không có
func (q LocationQuery) Resolvable() bool {
	return present(q.City) || present(q.State)
}

// Fingerprint định danh chính xác bộ (city, state, country) theo giá trị literal.
// Khác với cache key: "Arlington" và "arlington" cho ra hai fingerprint khác nhau,
// null và chuỗi rỗng cũng được phân biệt.
func (q LocationQuery) Fingerprint() string {
	raw := literal(q.City) + "|" + literal(q.State) + "|" + q.Country
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("sha256:%x", hash)
}

// String dạng "city, state, country" dùng cho log
func (q LocationQuery) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{q.City, q.State} {
		if present(p) {
			parts = append(parts, *p)
		}
	}
	if q.Country != "" {
		parts = append(parts, q.Country)
	}
	return strings.Join(parts, ", ")
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func literal(s *string) string {
	if s == nil {
		return "\x00"
	}
	return *s
}

// Coordinates tọa độ địa lý
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
