package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/controllers"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "Job Geocoder Service",
				"version": controllers.Version,
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api": "Job Geocoder API v1",
				"endpoints": map[string]string{
					"geocode":          "POST /v1/geocode",
					"debug_geocode":    "GET /v1/debug/geocode",
					"job_search":       "POST /v1/jobs/search",
					"job_heatmap":      "POST /v1/jobs/heatmap",
					"job_keywords":     "GET /v1/jobs/keywords",
					"distance":         "POST /v1/distance",
					"cache_stats":      "GET /v1/admin/cache/stats",
					"cache_warmup":     "POST /v1/admin/cache/warmup",
					"cache_invalidate": "POST /v1/admin/cache/invalidate",
					"health":           "GET /health",
				},
			})
		})
	}
}
