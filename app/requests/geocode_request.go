package requests

import "github.com/job-geocoder/app/models"

// GeocodeRequest request resolve một địa điểm dạng text
type GeocodeRequest struct {
	Location string `json:"location"` // Ví dụ "Arlington, VA"
}

// Point tọa độ trong request; con trỏ để phân biệt thiếu field với giá trị 0
type Point struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

// Coordinates chuyển Point đã validate sang models.Coordinates
func (p *Point) Coordinates() models.Coordinates {
	return models.Coordinates{Lat: *p.Lat, Lon: *p.Lon}
}

// DistanceRequest request tính khoảng cách giữa hai điểm
type DistanceRequest struct {
	From *Point `json:"from" binding:"required"`
	To   *Point `json:"to" binding:"required"`
}

// InvalidateCacheRequest request invalidate cache; không có city và state thì xóa toàn bộ
type InvalidateCacheRequest struct {
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Country string  `json:"country,omitempty"`
}

// Query LocationQuery cần invalidate, nil nghĩa là toàn bộ cache
func (r *InvalidateCacheRequest) Query() *models.LocationQuery {
	if r.City == nil && r.State == nil {
		return nil
	}
	q := models.NewLocationQuery(r.City, r.State, r.Country)
	return &q
}

// WarmUpRequest request warm up cache in-memory
type WarmUpRequest struct {
	Limit int `json:"limit" binding:"omitempty,min=1,max=100000"`
}
