package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/internal/service"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
	"github.com/noah-isme/acs-institute-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, req service.EnrollRequest) (*models.Enrollment, error)
	List(filter models.EnrollmentFilter) ([]models.Enrollment, error)
	Update(ctx context.Context, id string, req service.UpdateEnrollmentRequest) (*models.Enrollment, error)
	Drop(ctx context.Context, id string) (*models.Enrollment, error)
	Students() []models.Student
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param status query string false "Filter by status"
// @Param email query string false "Filter by student email"
// @Param courseId query string false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	enrollments, err := h.enrollments.List(filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollments, map[string]interface{}{"total": len(enrollments)})
}

// Create godoc
// @Summary Submit enrollment form
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Update godoc
// @Summary Update enrollment status, progress or notes
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateEnrollmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [patch]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	var req service.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// Drop godoc
// @Summary Drop enrollment
// @Description Marks the enrollment dropped. Seat and course counters are kept.
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	enrollment, err := h.enrollments.Drop(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// Students godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *EnrollmentHandler) Students(c *gin.Context) {
	students := h.enrollments.Students()
	response.OK(c, students, map[string]interface{}{"total": len(students)})
}

func filterFromQuery(c *gin.Context) models.EnrollmentFilter {
	return models.EnrollmentFilter{
		Status:       models.EnrollmentStatus(c.Query("status")),
		StudentEmail: c.Query("email"),
		CourseID:     c.Query("courseId"),
	}
}
