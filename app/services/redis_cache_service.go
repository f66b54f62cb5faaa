package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/job-geocoder/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCacheService tầng cache Redis dùng chung giữa các instance, key là fingerprint
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration // 0: không hết hạn

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService tạo mới Redis cache service từ URL
func NewRedisCacheService(redisURL string, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return NewRedisCacheServiceWithClient(client, logger), nil
}

// NewRedisCacheServiceWithClient tạo service từ client có sẵn
func NewRedisCacheServiceWithClient(client *redis.Client, logger *zap.Logger) *RedisCacheService {
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "loc_cache:",
	}
}

// Get lấy tọa độ theo fingerprint
func (rcs *RedisCacheService) Get(ctx context.Context, fingerprint string) (*models.Coordinates, bool, error) {
	cacheKey := rcs.prefix + fingerprint

	val, err := rcs.client.Get(ctx, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lỗi get từ Redis: %w", err)
	}

	var coords models.Coordinates
	if err := json.Unmarshal([]byte(val), &coords); err != nil {
		return nil, false, fmt.Errorf("lỗi unmarshal cache data: %w", err)
	}

	rcs.hits.Add(1)
	return &coords, true, nil
}

// Set lưu tọa độ theo fingerprint
func (rcs *RedisCacheService) Set(ctx context.Context, fingerprint string, coords models.Coordinates) error {
	data, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("lỗi marshal cache data: %w", err)
	}

	if err := rcs.client.Set(ctx, rcs.prefix+fingerprint, data, rcs.ttl).Err(); err != nil {
		return fmt.Errorf("lỗi set vào Redis: %w", err)
	}
	return nil
}

// Delete xóa key khỏi cache, trả về số key đã xóa
func (rcs *RedisCacheService) Delete(ctx context.Context, fingerprint string) (int, error) {
	n, err := rcs.client.Del(ctx, rcs.prefix+fingerprint).Result()
	if err != nil {
		return 0, fmt.Errorf("lỗi xóa key: %w", err)
	}
	return int(n), nil
}

// Clear xóa toàn bộ key có prefix của service
func (rcs *RedisCacheService) Clear(ctx context.Context) (int, error) {
	deleted := 0
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		if err := rcs.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("lỗi xóa key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("lỗi scan keys: %w", err)
	}

	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", deleted))
	return deleted, nil
}

// GetStats thống kê hit/miss của tầng Redis
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	stats := &CacheStats{TotalHits: hits, TotalMiss: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}

	var items int64
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		items++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("lỗi scan keys: %w", err)
	}
	stats.TotalItems = items
	return stats, nil
}

// SetTTL thiết lập TTL cho các key mới
func (rcs *RedisCacheService) SetTTL(ttl time.Duration) {
	rcs.ttl = ttl
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
