package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/controllers"
	"go.uber.org/zap"
)

// Controllers các controller được mount vào router
type Controllers struct {
	Geocode  *controllers.GeocodeController
	Job      *controllers.JobController
	Distance *controllers.DistanceController
	Admin    *controllers.AdminController
}

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, ctrls Controllers) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/geocode", ctrls.Geocode.Geocode)
		v1.GET("/debug/geocode", ctrls.Geocode.DebugGeocode)
		v1.POST("/distance", ctrls.Distance.Distance)

		jobs := v1.Group("/jobs")
		{
			jobs.POST("/search", ctrls.Job.Search)
			jobs.POST("/heatmap", ctrls.Job.Heatmap)
			jobs.GET("/keywords", ctrls.Job.Keywords)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/cache/stats", ctrls.Admin.GetCacheStats)
			admin.POST("/cache/warmup", ctrls.Admin.WarmUpCache)
			admin.POST("/cache/invalidate", ctrls.Admin.InvalidateCache)
		}

		v1.GET("/health", ctrls.Geocode.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, geocodeController *controllers.GeocodeController) {
	router.GET("/health", geocodeController.HealthCheck)
	router.GET("/ready", geocodeController.HealthCheck)
	router.GET("/live", geocodeController.HealthCheck)
}

// SetupAllRoutes thiết lập middleware và tất cả routes
func SetupAllRoutes(router *gin.Engine, ctrls Controllers, logger *zap.Logger) {
	setupMiddleware(router, logger)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, ctrls.Geocode)
	SetupAPIRoutes(router, ctrls)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}
