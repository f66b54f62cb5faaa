package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/job-geocoder/app/models"
	"go.uber.org/zap"
)

// HybridLocationCache gateway cache tọa độ nhiều tầng:
// LRU in-memory -> Redis (tùy chọn) -> LocationStore bền vững (PostgreSQL hoặc MongoDB).
type HybridLocationCache struct {
	memCache   *lru.Cache[string, models.Coordinates]
	redisCache *RedisCacheService // nil nếu không cấu hình Redis
	store      LocationStore
	logger     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewHybridLocationCache tạo mới gateway; redisCache có thể nil
func NewHybridLocationCache(store LocationStore, redisCache *RedisCacheService, memSize int, logger *zap.Logger) (*HybridLocationCache, error) {
	if memSize <= 0 {
		memSize = 1
	}
	memCache, err := lru.New[string, models.Coordinates](memSize)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo LRU cache: %w", err)
	}

	return &HybridLocationCache{
		memCache:   memCache,
		redisCache: redisCache,
		store:      store,
		logger:     logger,
	}, nil
}

// Lookup tìm tọa độ qua từng tầng; lỗi của Redis hay store chỉ được log
func (h *HybridLocationCache) Lookup(ctx context.Context, q models.LocationQuery) (*models.Coordinates, bool) {
	fingerprint := q.Fingerprint()

	if coords, found := h.memCache.Get(fingerprint); found {
		h.hits.Add(1)
		return &coords, true
	}

	if h.redisCache != nil {
		coords, found, err := h.redisCache.Get(ctx, fingerprint)
		if err != nil {
			h.logger.Warn("Lỗi Redis cache, fallback store", zap.Error(err), zap.String("location", q.String()))
		} else if found {
			h.memCache.Add(fingerprint, *coords)
			h.hits.Add(1)
			return coords, true
		}
	}

	entry, err := h.store.Find(ctx, q)
	if err != nil {
		h.logger.Error("locations cache lookup error", zap.Error(err), zap.String("location", q.String()))
		h.misses.Add(1)
		return nil, false
	}
	if entry == nil {
		h.misses.Add(1)
		return nil, false
	}

	coords := entry.Coordinates()
	h.memCache.Add(fingerprint, coords)
	h.hits.Add(1)

	if h.redisCache != nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := h.redisCache.Set(bgCtx, fingerprint, coords); err != nil {
				h.logger.Warn("Lỗi sync store->Redis", zap.Error(err), zap.String("fingerprint", fingerprint))
			}
		}()
	}

	h.logger.Debug("Store cache hit", zap.String("location", q.String()))
	return &coords, true
}

// Store ghi vào store bền vững trước, sau đó tới các tầng cache nhanh.
// Lỗi store được log và bỏ qua.
func (h *HybridLocationCache) Store(ctx context.Context, q models.LocationQuery, c models.Coordinates) {
	fingerprint := q.Fingerprint()

	if err := h.store.Insert(ctx, models.NewLocationCache(q, c)); err != nil {
		h.logger.Error("locations cache insert error", zap.Error(err), zap.String("location", q.String()))
		return
	}

	h.memCache.Add(fingerprint, c)

	if h.redisCache != nil {
		if err := h.redisCache.Set(ctx, fingerprint, c); err != nil {
			h.logger.Warn("Lỗi lưu vào Redis", zap.Error(err), zap.String("fingerprint", fingerprint))
		}
	}
}

// GetStats hit/miss của gateway và số bản ghi trong store
func (h *HybridLocationCache) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := h.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	hits, misses := h.hits.Load(), h.misses.Load()
	stats := &CacheStats{
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}

	if h.redisCache != nil {
		redisStats, err := h.redisCache.GetStats(ctx)
		if err != nil {
			h.logger.Warn("Lỗi lấy Redis stats", zap.Error(err))
		} else {
			stats.Redis = redisStats
		}
	}

	h.logger.Debug("Cache stats",
		zap.Float64("hit_rate", stats.HitRate),
		zap.Int64("total_hits", hits),
		zap.Int64("total_miss", misses),
		zap.Int("mem_size", h.memCache.Len()),
		zap.Int64("store_count", count))

	return stats, nil
}

// WarmUp nạp các bản ghi mới nhất từ store vào LRU
func (h *HybridLocationCache) WarmUp(ctx context.Context, limit int) (int, error) {
	entries, err := h.store.Recent(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("lỗi warm up cache: %w", err)
	}

	for i := range entries {
		entry := &entries[i]
		h.memCache.Add(entry.Query().Fingerprint(), entry.Coordinates())
	}

	h.logger.Info("Cache warm up hoàn thành",
		zap.Int("loaded_items", len(entries)),
		zap.Int("mem_size", h.memCache.Len()))

	return len(entries), nil
}

// Purge xóa LRU in-memory; store bền vững không bị ảnh hưởng
func (h *HybridLocationCache) Purge() {
	h.memCache.Purge()
}

// Invalidate xóa entry ở LRU và Redis. Store bền vững giữ nguyên,
// lookup sau đó sẽ nạp lại đúng tọa độ cũ từ store.
func (h *HybridLocationCache) Invalidate(ctx context.Context, q *models.LocationQuery) (*InvalidateResult, error) {
	res := &InvalidateResult{}

	if q != nil {
		fingerprint := q.Fingerprint()
		if h.memCache.Remove(fingerprint) {
			res.MemoryPurged = 1
		}
		if h.redisCache != nil {
			n, err := h.redisCache.Delete(ctx, fingerprint)
			if err != nil {
				return res, err
			}
			res.RedisDeleted = n
		}
		h.logger.Info("Invalidated location cache",
			zap.String("location", q.String()),
			zap.Int("memory_purged", res.MemoryPurged),
			zap.Int("redis_deleted", res.RedisDeleted))
		return res, nil
	}

	res.MemoryPurged = h.memCache.Len()
	h.Purge()
	if h.redisCache != nil {
		n, err := h.redisCache.Clear(ctx)
		res.RedisDeleted = n
		if err != nil {
			return res, err
		}
	}
	h.logger.Info("Invalidated location cache",
		zap.Int("memory_purged", res.MemoryPurged),
		zap.Int("redis_deleted", res.RedisDeleted))
	return res, nil
}

// Close đóng kết nối Redis nếu có
func (h *HybridLocationCache) Close() error {
	if h.redisCache != nil {
		return h.redisCache.Close()
	}
	return nil
}
