// Package bootstrap khởi tạo kết nối và services dùng chung cho API server và worker
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/job-geocoder/app/config"
	"github.com/job-geocoder/app/services"
	"github.com/job-geocoder/helpers/database"
	"github.com/job-geocoder/internal/external"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container giữ các kết nối và services đã khởi tạo
type Container struct {
	DB       *sql.DB
	Mongo    *mongo.Database // nil khi store.driver=postgres
	Cache    *services.HybridLocationCache
	Jobs     *services.JobStore
	Geocode  *services.GeocodeService
	Search   *services.JobSearchService
	Distance *services.DistanceService

	logger *zap.Logger
}

// Build kết nối store, dựng cache nhiều tầng và các services
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{logger: logger}

	db, err := database.OpenPostgres(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, err
	}
	c.DB = db

	jobs := services.NewJobStore(db, logger)
	if err := jobs.EnsureSchema(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.Jobs = jobs

	store, err := c.locationStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	var redisCache *services.RedisCacheService
	if cfg.Redis.URL != "" {
		redisCache, err = services.NewRedisCacheService(cfg.Redis.URL, logger)
		if err != nil {
			// thiếu Redis thì chạy không có tầng L1
			logger.Warn("Không kết nối được Redis, tắt tầng Redis", zap.Error(err))
			redisCache = nil
		} else {
			redisCache.SetTTL(cfg.Redis.TTL)
		}
	}

	cache, err := services.NewHybridLocationCache(store, redisCache, cfg.Cache.L1Size, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Cache = cache

	c.Geocode = services.NewGeocodeService(cache, newGeocoder(cfg, logger), cfg.Geocoder.Concurrency, logger)
	c.Search = services.NewJobSearchService(newJobProvider(cfg, logger), jobs, c.Geocode, logger)
	c.Distance = services.NewDistanceService(newRouter(cfg, logger), logger)

	return c, nil
}

func (c *Container) locationStore(ctx context.Context, cfg *config.Config) (services.LocationStore, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		db, err := database.OpenMongo(ctx, cfg.Mongo.URL, cfg.Mongo.Database, c.logger)
		if err != nil {
			return nil, err
		}
		c.Mongo = db
		return services.NewMongoLocationStore(db, c.logger), nil
	case config.DriverPostgres:
		store := services.NewPostgresLocationStore(c.DB, c.logger)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newGeocoder trả về nil interface khi chưa cấu hình base URL
func newGeocoder(cfg *config.Config, logger *zap.Logger) services.Geocoder {
	client, err := external.NewNominatimClient(cfg.Geocoder.BaseURL,
		external.WithEmail(cfg.Geocoder.Email),
		external.WithUserAgent(cfg.Geocoder.UserAgent),
		external.WithTimeout(cfg.Geocoder.Timeout),
		external.WithRateLimit(cfg.Geocoder.RatePerSecond),
	)
	if err != nil {
		logNotConfigured(logger, "geocoder", err)
		return nil
	}
	return client
}

func newJobProvider(cfg *config.Config, logger *zap.Logger) services.JobProvider {
	client, err := external.NewJobSpyClient(cfg.Jobs.ProviderURL, cfg.Jobs.Timeout)
	if err != nil {
		logNotConfigured(logger, "job provider", err)
		return nil
	}
	return client
}

func newRouter(cfg *config.Config, logger *zap.Logger) services.Router {
	client, err := external.NewOpenRouteClient(cfg.Routing.BaseURL, cfg.Routing.APIKey, cfg.Routing.Timeout)
	if err != nil {
		logNotConfigured(logger, "routing", err)
		return nil
	}
	return client
}

func logNotConfigured(logger *zap.Logger, name string, err error) {
	if errors.Is(err, external.ErrNotConfigured) {
		logger.Warn("External client chưa cấu hình", zap.String("client", name))
		return
	}
	logger.Error("Lỗi khởi tạo external client", zap.String("client", name), zap.Error(err))
}

// Close đóng Redis, MongoDB và PostgreSQL
func (c *Container) Close() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.logger.Warn("Lỗi đóng Redis", zap.Error(err))
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Client().Disconnect(context.Background()); err != nil {
			c.logger.Error("Error disconnecting MongoDB", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.Error("Error closing PostgreSQL", zap.Error(err))
		}
	}
}
