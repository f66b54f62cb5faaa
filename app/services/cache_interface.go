package services

import (
	"context"

	"github.com/job-geocoder/app/models"
)

// CacheStats thống kê cache
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`

	Redis *CacheStats `json:"redis,omitempty"` // thống kê riêng tầng Redis, nil nếu không cấu hình
}

// InvalidateResult số entry đã xóa ở từng tầng cache
type InvalidateResult struct {
	MemoryPurged int `json:"memory_purged"`
	RedisDeleted int `json:"redis_deleted"`
}

// ILocationCache gateway cache tọa độ. Lookup và Store không trả lỗi:
// lỗi của store được log và coi như miss / no-op.
type ILocationCache interface {
	// Lookup tìm tọa độ theo (city, state, country) literal
	Lookup(ctx context.Context, q models.LocationQuery) (*models.Coordinates, bool)

	// Store lưu tọa độ đã resolve (best-effort)
	Store(ctx context.Context, q models.LocationQuery, c models.Coordinates)

	// GetStats lấy thống kê cache
	GetStats(ctx context.Context) (*CacheStats, error)
}

// LocationStore tầng lưu trữ bền vững của cache tọa độ
type LocationStore interface {
	// Find trả về nil, nil khi không có bản ghi khớp
	Find(ctx context.Context, q models.LocationQuery) (*models.LocationCache, error)

	// Insert thêm bản ghi; bản ghi trùng (city, state, country) được bỏ qua
	Insert(ctx context.Context, entry *models.LocationCache) error

	// Count tổng số bản ghi
	Count(ctx context.Context) (int64, error)

	// Recent các bản ghi mới nhất, dùng để warm up cache in-memory
	Recent(ctx context.Context, limit int) ([]models.LocationCache, error)
}

// ICacheAdmin thao tác quản trị cache tọa độ
type ICacheAdmin interface {
	GetStats(ctx context.Context) (*CacheStats, error)
	WarmUp(ctx context.Context, limit int) (int, error)

	// Invalidate xóa LRU và Redis; q nil thì xóa toàn bộ
	Invalidate(ctx context.Context, q *models.LocationQuery) (*InvalidateResult, error)
}
