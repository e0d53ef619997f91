package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acs-institute-api/internal/dto"
	"github.com/noah-isme/acs-institute-api/pkg/response"
)

type dashboardService interface {
	Student(ctx context.Context, email string) (*dto.StudentDashboardResponse, bool, error)
	Admin(ctx context.Context) (*dto.AdminStatsResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Student godoc
// @Summary Student dashboard
// @Tags Dashboard
// @Produce json
// @Param email query string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	resp, hit, err := h.service.Student(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp, map[string]interface{}{"cache_hit": hit})
}

// Admin godoc
// @Summary Admin statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	resp, hit, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp, map[string]interface{}{"cache_hit": hit})
}
