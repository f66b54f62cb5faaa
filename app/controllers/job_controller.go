package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/requests"
	"github.com/job-geocoder/app/responses"
	"github.com/job-geocoder/app/services"
	"go.uber.org/zap"
)

// JobController controller tìm job, heatmap và keywords
type JobController struct {
	jobSearchService *services.JobSearchService
	logger           *zap.Logger
}

// NewJobController tạo mới JobController
func NewJobController(jobSearchService *services.JobSearchService, logger *zap.Logger) *JobController {
	return &JobController{
		jobSearchService: jobSearchService,
		logger:           logger,
	}
}

// Search tìm job: store trước, sau đó job provider
func (jc *JobController) Search(c *gin.Context) {
	var req requests.JobSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error(), nil)
		return
	}

	result, err := jc.jobSearchService.Search(c.Request.Context(), services.SearchOptions{
		SearchTerm:    req.SearchTerm,
		Location:      req.Location,
		ResultsWanted: req.ResultsWanted,
		HoursOld:      req.HoursOld,
		ForceExternal: req.ForceExternal,
	})
	if err != nil {
		jc.handleSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.JobSearchResponse{Count: result.Count, Jobs: result.Jobs})
}

func (jc *JobController) handleSearchError(c *gin.Context, err error) {
	var providerErr *services.ProviderError
	switch {
	case errors.Is(err, services.ErrSearchTermRequired):
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, services.ErrProviderNotConfigured):
		jc.logger.Error("Job provider chưa cấu hình")
		abortWithError(c, http.StatusInternalServerError, "PROVIDER_NOT_CONFIGURED", err.Error(), nil)
	case errors.As(err, &providerErr):
		jc.logger.Error("Job provider error", zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "PROVIDER_ERROR", "Job provider API error", providerErr.Err.Error())
	default:
		jc.logger.Error("Lỗi tìm job", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "UPSERT_ERROR", "Failed to upsert jobs", err.Error())
	}
}

// Heatmap các điểm job đã geocode
func (jc *JobController) Heatmap(c *gin.Context) {
	var req requests.HeatmapRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error(), nil)
		return
	}

	points, err := jc.jobSearchService.Heatmap(c.Request.Context(), req.SearchTerm, req.Location, req.HoursOld)
	if err != nil {
		jc.logger.Error("job-heatmap query error", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "HEATMAP_ERROR", "Failed to load heatmap data", nil)
		return
	}

	c.JSON(http.StatusOK, responses.HeatmapResponse{Count: len(points), Points: points})
}

// Keywords các title phổ biến; lỗi query trả về danh sách rỗng
func (jc *JobController) Keywords(c *gin.Context) {
	c.JSON(http.StatusOK, responses.KeywordsResponse{
		Keywords: jc.jobSearchService.Keywords(c.Request.Context()),
	})
}
