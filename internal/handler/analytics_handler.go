package handler

import (
	"net/http"
	"time"

	"bouncehub/internal/middleware"
	"bouncehub/internal/model"
	"bouncehub/internal/service"
	"bouncehub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public tracking beacon
	router.POST("/api/track", h.TrackEvent)

	analytics := router.Group("/api/analytics", middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
	{
		analytics.GET("/funnel", h.GetFunnel)
	}
}

// TrackEvent records a visitor interaction
// @Summary      Track visitor event
// @Description  Fire-and-forget tracking beacon for the public site
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TrackEventRequest  true  "Event Payload"
// @Success      202      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/track [post]
func (h *AnalyticsHandler) TrackEvent(c *gin.Context) {
	var req service.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	h.analyticsService.TrackEvent(c.Request.Context(), req)

	c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, gin.H{"recorded": true}))
}

// GetFunnel returns engagement and conversion metrics for a date range
// @Summary      Get conversion funnel
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "Range start (RFC3339, default 30 days ago)"
// @Param        end_date    query  string  false  "Range end (RFC3339, default now)"
// @Success      200  {object}  response.Response{data=model.FunnelReport}
// @Failure      500  {object}  response.Response
// @Router       /api/analytics/funnel [get]
func (h *AnalyticsHandler) GetFunnel(c *gin.Context) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if parsed, err := time.Parse(time.RFC3339, c.Query("start_date")); err == nil {
		startDate = parsed
	}
	if parsed, err := time.Parse(time.RFC3339, c.Query("end_date")); err == nil {
		endDate = parsed
	}

	report, err := h.analyticsService.GetFunnel(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
