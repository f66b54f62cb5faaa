package services

import (
	"context"
	"sync"
	"time"

	"github.com/job-geocoder/app/models"
	"github.com/job-geocoder/internal/normalizer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Geocoder resolve một địa điểm qua dịch vụ bên ngoài.
// nil, nil nghĩa là không có kết quả.
type Geocoder interface {
	Geocode(ctx context.Context, q models.LocationQuery) (*models.Coordinates, error)
}

// FlightTimeout giới hạn thời gian một lượt resolve dùng chung
const FlightTimeout = 60 * time.Second

// GeocodeService resolve tọa độ theo lô: gom trùng theo cache key,
// mỗi key chỉ gọi geocoder bên ngoài tối đa một lần.
type GeocodeService struct {
	cache       ILocationCache
	geocoder    Geocoder // nil: chỉ đọc cache
	concurrency int
	flights     singleflight.Group
	logger      *zap.Logger
}

// NewGeocodeService tạo mới GeocodeService; concurrency < 1 được coi là 1 (tuần tự)
func NewGeocodeService(cache ILocationCache, geocoder Geocoder, concurrency int, logger *zap.Logger) *GeocodeService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GeocodeService{
		cache:       cache,
		geocoder:    geocoder,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ExternalEnabled true khi có geocoder bên ngoài
func (s *GeocodeService) ExternalEnabled() bool {
	return s.geocoder != nil
}

// Resolve resolve một địa điểm. nil nghĩa là không resolve được.
func (s *GeocodeService) Resolve(ctx context.Context, q models.LocationQuery) *models.Coordinates {
	if !q.Resolvable() {
		return nil
	}
	return s.resolveKey(ctx, normalizer.KeyFor(q), q)
}

// ResolveAll resolve cả lô, trả về map cache key -> tọa độ.
// Key không resolve được sẽ không có trong map; hàm không trả lỗi.
func (s *GeocodeService) ResolveAll(ctx context.Context, queries []models.LocationQuery) map[string]models.Coordinates {
	unique := make(map[string]models.LocationQuery)
	order := make([]string, 0)
	for _, q := range queries {
		if !q.Resolvable() {
			continue
		}
		key := normalizer.KeyFor(q)
		if _, seen := unique[key]; seen {
			continue
		}
		unique[key] = q
		order = append(order, key)
	}

	result := make(map[string]models.Coordinates, len(order))
	if len(order) == 0 {
		return result
	}

	s.logger.Debug("Batch geocode",
		zap.Int("queries", len(queries)),
		zap.Int("unique_keys", len(order)))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, key := range order {
		key, q := key, unique[key]
		g.Go(func() error {
			if coords := s.resolveKey(ctx, key, q); coords != nil {
				mu.Lock()
				result[key] = *coords
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// resolveKey lookup -> geocode -> store cho một key.
// Các lời gọi đồng thời cùng key dùng chung một lượt resolve; lượt này chạy
// tách khỏi cancel của từng request, mỗi caller chỉ ngừng chờ khi ctx của chính nó bị hủy.
func (s *GeocodeService) resolveKey(ctx context.Context, key string, q models.LocationQuery) *models.Coordinates {
	ch := s.flights.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FlightTimeout)
		defer cancel()
		return s.resolveShared(flightCtx, q), nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		coords, _ := res.Val.(*models.Coordinates)
		return coords
	}
}

func (s *GeocodeService) resolveShared(ctx context.Context, q models.LocationQuery) *models.Coordinates {
	if coords, found := s.cache.Lookup(ctx, q); found {
		return coords
	}

	if s.geocoder == nil {
		s.logger.Warn("Geocoder chưa cấu hình, bỏ qua geocode", zap.String("location", q.String()))
		return nil
	}

	coords, err := s.geocoder.Geocode(ctx, q)
	if err != nil {
		s.logger.Warn("Geocode thất bại", zap.Error(err), zap.String("location", q.String()))
		return nil
	}
	if coords == nil {
		s.logger.Info("Geocode không có kết quả", zap.String("location", q.String()))
		return nil
	}

	s.cache.Store(ctx, q, *coords)
	return coords
}

// AttachCoordinates gán tọa độ vào các job theo cache key, trả về số job được gán
func AttachCoordinates(rows []*models.NormalizedJobRow, coords map[string]models.Coordinates) int {
	attached := 0
	for _, row := range rows {
		c, ok := coords[normalizer.KeyFor(row.LocationQuery())]
		if !ok {
			continue
		}
		row.SetCoordinates(c)
		attached++
	}
	return attached
}

// QueriesFor các LocationQuery của danh sách job
func QueriesFor(rows []*models.NormalizedJobRow) []models.LocationQuery {
	queries := make([]models.LocationQuery, 0, len(rows))
	for _, row := range rows {
		queries = append(queries, row.LocationQuery())
	}
	return queries
}
