package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acs-institute-api/internal/models"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
	"github.com/noah-isme/acs-institute-api/pkg/response"
)

type courseCatalog interface {
	Courses() []models.Course
	CourseByID(id string) (models.Course, bool)
}

// CourseHandler exposes the course catalog.
type CourseHandler struct {
	catalog courseCatalog
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(catalog courseCatalog) *CourseHandler {
	return &CourseHandler{catalog: catalog}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param category query string false "Filter by category"
// @Param level query string false "Filter by level"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	category := c.Query("category")
	level := models.CourseLevel(c.Query("level"))

	courses := h.catalog.Courses()
	out := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if category != "" && course.Category != category {
			continue
		}
		if level != "" && course.Level != level {
			continue
		}
		out = append(out, course)
	}
	response.OK(c, out, map[string]interface{}{"total": len(out)})
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, ok := h.catalog.CourseByID(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "course not found"))
		return
	}
	response.OK(c, course)
}
