package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/requests"
	"github.com/job-geocoder/app/services"
	"github.com/job-geocoder/internal/external"
	"go.uber.org/zap"
)

// DistanceController controller tính khoảng cách lái xe
type DistanceController struct {
	distanceService *services.DistanceService
	logger          *zap.Logger
}

// NewDistanceController tạo mới DistanceController
func NewDistanceController(distanceService *services.DistanceService, logger *zap.Logger) *DistanceController {
	return &DistanceController{
		distanceService: distanceService,
		logger:          logger,
	}
}

// Distance tính khoảng cách giữa from và to
func (dc *DistanceController) Distance(c *gin.Context) {
	var req requests.DistanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "from and to coordinates are required", err.Error())
		return
	}

	result, err := dc.distanceService.Distance(c.Request.Context(), req.From.Coordinates(), req.To.Coordinates())
	if errors.Is(err, external.ErrNotConfigured) {
		dc.logger.Error("Routing API key chưa cấu hình")
		abortWithError(c, http.StatusInternalServerError, "ROUTING_NOT_CONFIGURED", "routing API key is not configured", nil)
		return
	}
	if err != nil {
		dc.logger.Error("Routing provider error", zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "ROUTING_ERROR", "Routing API error", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
