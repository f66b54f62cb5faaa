package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/bootstrap"
	"github.com/job-geocoder/app/config"
	"github.com/job-geocoder/app/controllers"
	"github.com/job-geocoder/routes"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Cannot load config:", err)
	}

	// 2. Khởi tạo logger
	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Job Geocoder Service", zap.String("store_driver", cfg.Store.Driver))

	// 3. Kết nối store và khởi tạo services
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := bootstrap.Build(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer container.Close()

	// 4. Warm up cache từ store
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := container.Cache.WarmUp(warmCtx, cfg.Cache.L1Size/2); err != nil {
		logger.Warn("Failed to warm up cache", zap.Error(err))
	}
	warmCancel()

	// 5. Khởi tạo controllers
	ctrls := routes.Controllers{
		Geocode:  controllers.NewGeocodeController(container.Geocode, logger),
		Job:      controllers.NewJobController(container.Search, logger),
		Distance: controllers.NewDistanceController(container.Distance, logger),
		Admin:    controllers.NewAdminController(container.Cache, logger),
	}

	// 6. Khởi tạo Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, ctrls, logger)

	// 7. Khởi động server
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Job Geocoder Service starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
