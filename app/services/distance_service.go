package services

import (
	"context"
	"math"
	"net/http"

	"github.com/job-geocoder/app/models"
	"github.com/job-geocoder/internal/external"
	"go.uber.org/zap"
)

const earthRadiusMeters = 6371000.0

// ReasonApproximate khoảng cách đường chim bay thay cho tuyến đường thật
const ReasonApproximate = "approximate"

// Router provider chỉ đường
type Router interface {
	Directions(ctx context.Context, from, to models.Coordinates) (*external.Route, error)
}

// DistanceService tính khoảng cách lái xe, fallback haversine khi provider không tìm được tuyến
type DistanceService struct {
	router Router // nil nếu chưa cấu hình API key
	logger *zap.Logger
}

// NewDistanceService tạo mới DistanceService
func NewDistanceService(router Router, logger *zap.Logger) *DistanceService {
	return &DistanceService{router: router, logger: logger}
}

// Distance trả về external.ErrNotConfigured khi chưa có router
func (s *DistanceService) Distance(ctx context.Context, from, to models.Coordinates) (*models.DistanceResult, error) {
	if s.router == nil {
		return nil, external.ErrNotConfigured
	}

	route, err := s.router.Directions(ctx, from, to)
	if err != nil {
		if external.IsStatus(err, http.StatusNotFound) {
			s.logger.Warn("Routing provider không tìm được tuyến, dùng haversine", zap.Error(err))
			return approximate(from, to), nil
		}
		return nil, err
	}
	if route.Distance == nil {
		return approximate(from, to), nil
	}

	return &models.DistanceResult{
		DistanceMeters:  *route.Distance,
		DurationSeconds: route.Duration,
		Geometry:        route.Geometry,
	}, nil
}

func approximate(from, to models.Coordinates) *models.DistanceResult {
	return &models.DistanceResult{
		DistanceMeters: HaversineMeters(from, to),
		Reason:         ReasonApproximate,
	}
}

// HaversineMeters khoảng cách đường tròn lớn giữa hai điểm (mét)
func HaversineMeters(a, b models.Coordinates) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	lat1, lat2 := toRad(a.Lat), toRad(b.Lat)

	sinDLat, sinDLon := math.Sin(dLat/2), math.Sin(dLon/2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
