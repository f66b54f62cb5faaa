package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/models"
	"github.com/job-geocoder/app/requests"
	"github.com/job-geocoder/app/responses"
	"github.com/job-geocoder/app/services"
	"go.uber.org/zap"
)

// Version phiên bản service
const Version = "1.0.0"

// debugProbeLocation địa điểm cố định dùng cho /v1/debug/geocode
const debugProbeLocation = "Arlington, VA"

// GeocodeController controller xử lý các request geocode
type GeocodeController struct {
	geocodeService *services.GeocodeService
	logger         *zap.Logger
	startTime      time.Time
}

// NewGeocodeController tạo mới GeocodeController
func NewGeocodeController(geocodeService *services.GeocodeService, logger *zap.Logger) *GeocodeController {
	return &GeocodeController{
		geocodeService: geocodeService,
		logger:         logger,
		startTime:      time.Now(),
	}
}

// Geocode resolve một địa điểm dạng text với state null, country USA
func (gc *GeocodeController) Geocode(c *gin.Context) {
	var req requests.GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error(), nil)
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "location is required", nil)
		return
	}

	coords := gc.geocodeService.Resolve(c.Request.Context(), models.NewLocationQuery(&location, nil, models.DefaultCountry))
	if coords == nil {
		abortWithError(c, http.StatusNotFound, "LOCATION_NOT_FOUND", "Location could not be resolved", nil)
		return
	}

	c.JSON(http.StatusOK, responses.GeocodeResponse{Lat: coords.Lat, Lon: coords.Lon})
}

// DebugGeocode resolve một địa điểm kiểm tra cố định
func (gc *GeocodeController) DebugGeocode(c *gin.Context) {
	location := debugProbeLocation
	coords := gc.geocodeService.Resolve(c.Request.Context(), models.NewLocationQuery(&location, nil, models.DefaultCountry))

	gc.logger.Debug("Debug geocode", zap.String("location", location), zap.Any("coords", coords))
	c.JSON(http.StatusOK, responses.DebugGeocodeResponse{Coords: coords})
}

// HealthCheck kiểm tra sức khỏe service
func (gc *GeocodeController) HealthCheck(c *gin.Context) {
	geocoder := "healthy"
	if !gc.geocodeService.ExternalEnabled() {
		geocoder = "disabled"
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(gc.startTime).String(),
		Version:   Version,
		Services: map[string]string{
			"geocoder": geocoder,
			"cache":    "healthy",
		},
	})
}
