package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/middleware"
	"github.com/highcommand/highcommand/internal/services"
)

// DashboardHandler serves the signed-in user's home screen counters.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the user's active project count and assigned task
// counts by status.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	summary, err := h.dashboardService.Summary(userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
