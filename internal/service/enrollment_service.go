package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/acs-institute-api/internal/models"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
)

const defaultExperience = "beginner"

type enrollmentStore interface {
	CourseByID(id string) (models.Course, bool)
	Enrollments() []models.Enrollment
	Students() []models.Student
	AddEnrollment(ctx context.Context, payload models.NewEnrollment) (*models.Enrollment, error)
	UpdateEnrollment(ctx context.Context, id string, update models.EnrollmentUpdate) (*models.Enrollment, error)
	CancelEnrollment(ctx context.Context, id string) (*models.Enrollment, error)
}

// EnrollRequest is the enrollment form submission.
type EnrollRequest struct {
	CourseID   string  `json:"course_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      string  `json:"phone" validate:"required"`
	Experience string  `json:"experience" validate:"omitempty,oneof=beginner intermediate advanced"`
	Goals      *string `json:"goals"`
}

// UpdateEnrollmentRequest carries the admin-editable enrollment fields.
type UpdateEnrollmentRequest struct {
	Status   *models.EnrollmentStatus `json:"status" validate:"omitempty,oneof=pending enrolled completed dropped"`
	Progress *int                     `json:"progress" validate:"omitempty,min=0,max=100"`
	Notes    *string                  `json:"notes"`
}

// EnrollmentService implements the enrollment form and admin enrollment
// management on top of the coordinator.
type EnrollmentService struct {
	store     enrollmentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(store enrollmentStore, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, validator: validate, logger: logger}
}

// Enroll validates the form and registers the student on the course at its
// current price.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	course, ok := s.store.CourseByID(req.CourseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	experience := req.Experience
	if experience == "" {
		experience = defaultExperience
	}
	notes := ""

	enrollment, err := s.store.AddEnrollment(ctx, models.NewEnrollment{
		CourseID:     course.ID,
		CourseName:   course.Name,
		StudentName:  req.Name,
		StudentEmail: req.Email,
		StudentPhone: req.Phone,
		Status:       models.EnrollmentStatusEnrolled,
		Price:        course.Price,
		Progress:     0,
		Notes:        &notes,
		Experience:   &experience,
		Goals:        req.Goals,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("course_id", course.ID),
	)
	return enrollment, nil
}

// List returns enrollments matching filter, newest first.
func (s *EnrollmentService) List(filter models.EnrollmentFilter) ([]models.Enrollment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}
	all := s.store.Enrollments()
	out := make([]models.Enrollment, 0, len(all))
	for _, e := range all {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Update applies an admin edit to an enrollment.
func (s *EnrollmentService) Update(ctx context.Context, id string, req UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment update")
	}
	update := models.EnrollmentUpdate{Status: req.Status, Progress: req.Progress, Notes: req.Notes}
	if update.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	return s.store.UpdateEnrollment(ctx, id, update)
}

// Drop soft-deletes an enrollment by marking it dropped.
func (s *EnrollmentService) Drop(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.store.CancelEnrollment(ctx, id)
}

// Students returns every known student.
func (s *EnrollmentService) Students() []models.Student {
	return s.store.Students()
}
