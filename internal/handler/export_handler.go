package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/internal/service"
	"github.com/noah-isme/acs-institute-api/pkg/response"
)

type rosterExporter interface {
	Enrollments(format string, filter models.EnrollmentFilter) (*service.ExportFile, error)
}

// ExportHandler serves roster downloads.
type ExportHandler struct {
	exports rosterExporter
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports rosterExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Enrollments godoc
// @Summary Export enrollment roster
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param status query string false "Filter by status"
// @Param email query string false "Filter by student email"
// @Param courseId query string false "Filter by course"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /exports/enrollments [get]
func (h *ExportHandler) Enrollments(c *gin.Context) {
	file, err := h.exports.Enrollments(c.Query("format"), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
