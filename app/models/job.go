package models

import (
	"strings"
)

// RawJobRecord một job từ provider, key có thể là chữ thường hoặc chữ hoa (site/SITE, ...)
type RawJobRecord map[string]any

// Field lấy giá trị theo tên trường: ưu tiên key chữ thường, fallback key chữ hoa
// khi key chữ thường không có hoặc là JSON null
func (r RawJobRecord) Field(name string) (any, bool) {
	if v, ok := r[strings.ToLower(name)]; ok && v != nil {
		return v, true
	}
	if v, ok := r[strings.ToUpper(name)]; ok && v != nil {
		return v, true
	}
	return nil, false
}

// JobType loại công việc đã chuẩn hóa
type JobType string

const (
	JobTypeFullTime   JobType = "fulltime"
	JobTypePartTime   JobType = "parttime"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
	JobTypeOther      JobType = "other"
)

// SalaryInterval chu kỳ lương đã chuẩn hóa
type SalaryInterval string

const (
	IntervalYearly  SalaryInterval = "yearly"
	IntervalMonthly SalaryInterval = "monthly"
	IntervalWeekly  SalaryInterval = "weekly"
	IntervalDaily   SalaryInterval = "daily"
	IntervalHourly  SalaryInterval = "hourly"
	IntervalOther   SalaryInterval = "other"
)

// NormalizedJobRow job sau khi chuẩn hóa, đúng shape của bảng jobs
type NormalizedJobRow struct {
	SiteName     string          `json:"site_name" db:"site_name"`
	JobURL       string          `json:"job_url" db:"job_url"`
	Title        string          `json:"title" db:"title"`
	Company      *string         `json:"company" db:"company"`
	Description  *string         `json:"description" db:"description"`
	JobType      *JobType        `json:"job_type" db:"job_type"`
	IsRemote     *bool           `json:"is_remote" db:"is_remote"`
	City         *string         `json:"city" db:"city"`
	State        *string         `json:"state" db:"state"`
	Country      string          `json:"country" db:"country"`
	Interval     *SalaryInterval `json:"interval" db:"interval"`
	MinAmount    *float64        `json:"min_amount" db:"min_amount"`
	MaxAmount    *float64        `json:"max_amount" db:"max_amount"`
	Currency     *string         `json:"currency" db:"currency"`
	SalarySource *string         `json:"salary_source" db:"salary_source"`
	DatePosted   *string         `json:"date_posted" db:"date_posted"` // RFC3339 UTC
	Latitude     *float64        `json:"latitude" db:"latitude"`
	Longitude    *float64        `json:"longitude" db:"longitude"`
}

// LocationQuery địa điểm của job dùng cho geocode
func (r *NormalizedJobRow) LocationQuery() LocationQuery {
	return NewLocationQuery(r.City, r.State, r.Country)
}

// SetCoordinates gán tọa độ sau khi geocode
func (r *NormalizedJobRow) SetCoordinates(c Coordinates) {
	lat, lon := c.Lat, c.Lon
	r.Latitude = &lat
	r.Longitude = &lon
}

// HeatmapPoint một điểm trên heatmap
type HeatmapPoint struct {
	ID     int64   `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight int     `json:"weight"`
}

// DistanceResult kết quả tính khoảng cách giữa hai điểm
type DistanceResult struct {
	DistanceMeters  float64  `json:"distance_meters"`
	DurationSeconds *float64 `json:"duration_seconds"`
	Geometry        any      `json:"geometry"`
	Reason          string   `json:"reason,omitempty"`
}
