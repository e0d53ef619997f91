package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acs-institute-api/internal/dto"
	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/pkg/response"
)

const readinessTimeout = 2 * time.Second

type coordinatorState interface {
	Mode() string
	Loading() bool
	Ping(ctx context.Context) error
	Refresh(ctx context.Context) error
	Courses() []models.Course
	Enrollments() []models.Enrollment
	Students() []models.Student
}

type metricsSnapshotter interface {
	Snapshot() dto.SystemMetrics
}

// SystemHandler serves liveness, readiness and the manual reload trigger.
type SystemHandler struct {
	state   coordinatorState
	metrics metricsSnapshotter
}

// NewSystemHandler constructs SystemHandler. metrics may be nil.
func NewSystemHandler(state coordinatorState, metrics metricsSnapshotter) *SystemHandler {
	return &SystemHandler{state: state, metrics: metrics}
}

// Health responds with a generic OK payload for liveness probes.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready godoc
// @Summary Readiness
// @Description Reports backend mode, loading flag and collection sizes.
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := dto.ReadinessResponse{
		Mode:        h.state.Mode(),
		Loading:     h.state.Loading(),
		Courses:     len(h.state.Courses()),
		Enrollments: len(h.state.Enrollments()),
		Students:    len(h.state.Students()),
	}
	if h.metrics != nil {
		resp.Metrics = h.metrics.Snapshot()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	if err := h.state.Ping(ctx); err != nil {
		response.JSON(c, http.StatusServiceUnavailable, resp, map[string]interface{}{"error": err.Error()})
		return
	}
	response.OK(c, resp)
}

// Refresh godoc
// @Summary Reload collections
// @Description Reloads courses, enrollments and students. Without a database the sample dataset is restored.
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /refresh [post]
func (h *SystemHandler) Refresh(c *gin.Context) {
	if err := h.state.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"mode":        h.state.Mode(),
		"courses":     len(h.state.Courses()),
		"enrollments": len(h.state.Enrollments()),
		"students":    len(h.state.Students()),
	})
}
