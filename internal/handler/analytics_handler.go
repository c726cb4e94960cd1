package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/rosterly-backend/internal/response"
	"github.com/rosterly/rosterly-backend/internal/service"
)

// AnalyticsHandler serves the dashboard aggregates.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetDashboard godoc
// GET /api/v1/admin/dashboard
// Returns the full dashboard statistics for chart rendering.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GetPerformanceAnalysis godoc
// GET /api/v1/admin/dashboard/performance
func (h *AnalyticsHandler) GetPerformanceAnalysis(c *gin.Context) {
	analysis, err := h.analyticsService.Performance(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"analysis": analysis})
}

// GetPublicStats godoc
// GET /api/v1/public/stats
// Reduced counts only; served with a short Cache-Control header.
func (h *AnalyticsHandler) GetPublicStats(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"stats": h.analyticsService.Public(c.Request.Context())})
}
