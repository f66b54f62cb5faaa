package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/requests"
	"github.com/job-geocoder/app/responses"
	"github.com/job-geocoder/app/services"
	"go.uber.org/zap"
)

// defaultWarmUpLimit số bản ghi nạp vào LRU khi request không chỉ định
const defaultWarmUpLimit = 5000

// AdminController controller xử lý các request admin
type AdminController struct {
	cacheAdmin services.ICacheAdmin
	logger     *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(cacheAdmin services.ICacheAdmin, logger *zap.Logger) *AdminController {
	return &AdminController{
		cacheAdmin: cacheAdmin,
		logger:     logger,
	}
}

// GetCacheStats lấy thống kê cache tọa độ
func (ac *AdminController) GetCacheStats(c *gin.Context) {
	stats, err := ac.cacheAdmin.GetStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi lấy cache stats", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "STATS_ERROR", "Lỗi lấy thống kê cache", err.Error())
		return
	}

	resp := responses.CacheStatsResponse{
		HitRate:    stats.HitRate,
		TotalHits:  stats.TotalHits,
		TotalMiss:  stats.TotalMiss,
		TotalItems: stats.TotalItems,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if r := stats.Redis; r != nil {
		resp.Redis = &responses.RedisStatsResponse{
			HitRate:    r.HitRate,
			TotalHits:  r.TotalHits,
			TotalMiss:  r.TotalMiss,
			TotalItems: r.TotalItems,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// InvalidateCache xóa cache LRU và Redis, toàn bộ hoặc theo một location
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error(), nil)
		return
	}

	startTime := time.Now()
	result, err := ac.cacheAdmin.Invalidate(c.Request.Context(), req.Query())
	if err != nil {
		ac.logger.Error("Lỗi invalidate cache", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "INVALIDATE_ERROR", "Lỗi invalidate cache: "+err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Invalidate cache thành công",
		Data:      gin.H{"memory_purged": result.MemoryPurged, "redis_deleted": result.RedisDeleted, "processing_time_ms": time.Since(startTime).Milliseconds()},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// WarmUpCache nạp các bản ghi mới nhất vào cache in-memory
func (ac *AdminController) WarmUpCache(c *gin.Context) {
	var req requests.WarmUpRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error(), nil)
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultWarmUpLimit
	}

	loaded, err := ac.cacheAdmin.WarmUp(c.Request.Context(), limit)
	if err != nil {
		ac.logger.Error("Lỗi warm up cache", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "WARMUP_ERROR", "Lỗi warm up cache", err.Error())
		return
	}

	ac.logger.Info("Warm up cache thành công", zap.Int("loaded_items", loaded))
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Warm up cache thành công",
		Data:      gin.H{"loaded_items": loaded},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
