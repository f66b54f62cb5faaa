package responses

import (
	"github.com/job-geocoder/app/models"
)

// GeocodeResponse tọa độ của địa điểm đã resolve
type GeocodeResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DebugGeocodeResponse kết quả geocode địa điểm kiểm tra, coords null khi không resolve được
type DebugGeocodeResponse struct {
	Coords *models.Coordinates `json:"coords"`
}

// JobSearchResponse response tìm job
type JobSearchResponse struct {
	Count int                       `json:"count"`
	Jobs  []models.NormalizedJobRow `json:"jobs"`
}

// HeatmapResponse response heatmap
type HeatmapResponse struct {
	Count  int                   `json:"count"`
	Points []models.HeatmapPoint `json:"points"`
}

// KeywordsResponse các title phổ biến
type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

// CacheStatsResponse thống kê cache tọa độ
type CacheStatsResponse struct {
	HitRate    float64             `json:"hit_rate"`        // Tỷ lệ hit cache
	TotalHits  int64               `json:"total_hits"`      // Tổng số hit
	TotalMiss  int64               `json:"total_miss"`      // Tổng số miss
	TotalItems int64               `json:"total_items"`     // Số bản ghi trong store
	Redis      *RedisStatsResponse `json:"redis,omitempty"` // nil khi không cấu hình Redis
	Timestamp  string              `json:"timestamp"`
}

// RedisStatsResponse thống kê riêng tầng Redis
type RedisStatsResponse struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`                // Mã lỗi
	Message   string      `json:"message"`              // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"`    // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`            // Thời gian xảy ra lỗi
	RequestID string      `json:"request_id,omitempty"` // ID của request
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`        // Có thành công không
	Message   string      `json:"message"`        // Thông báo
	Data      interface{} `json:"data,omitempty"` // Dữ liệu
	Timestamp string      `json:"timestamp"`      // Thời gian
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`    // Trạng thái sức khỏe
	Timestamp string            `json:"timestamp"` // Thời gian kiểm tra
	Uptime    string            `json:"uptime"`    // Thời gian hoạt động
	Version   string            `json:"version"`   // Phiên bản
	Services  map[string]string `json:"services"`  // Trạng thái các service
}
