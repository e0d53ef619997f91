package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/acs-institute-api/internal/dto"
	"github.com/noah-isme/acs-institute-api/internal/models"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
)

type dashboardSource interface {
	Courses() []models.Course
	Enrollments() []models.Enrollment
	Students() []models.Student
	StudentEnrollments(email string) []models.Enrollment
}

// DashboardService composes the student and admin dashboards from coordinator
// snapshots, caching payloads until the next change event.
type DashboardService struct {
	source   dashboardSource
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the service. cache may be nil.
func NewDashboardService(source dashboardSource, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{source: source, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Student builds the dashboard for email. The boolean reports a cache hit.
func (s *DashboardService) Student(ctx context.Context, email string) (*dto.StudentDashboardResponse, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}

	key := studentDashboardKey(email)
	var cached dto.StudentDashboardResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	enrollments := s.source.StudentEnrollments(email)
	resp := &dto.StudentDashboardResponse{Email: email, Enrollments: enrollments}
	if resp.Enrollments == nil {
		resp.Enrollments = []models.Enrollment{}
	}

	var progressTotal int
	for _, e := range enrollments {
		switch {
		case e.Status.Active():
			resp.ActiveCount++
		case e.Status == models.EnrollmentStatusCompleted:
			resp.CompletedCount++
		}
		progressTotal += e.Progress
	}
	if len(enrollments) > 0 {
		resp.AverageProgress = float64(progressTotal) / float64(len(enrollments))
	}
	for _, st := range s.source.Students() {
		if st.Email == email {
			student := st
			resp.Student = &student
			break
		}
	}

	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Debug("student dashboard not cached", zap.Error(err))
	}
	return resp, false, nil
}

// Admin builds institute-wide statistics. The boolean reports a cache hit.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminStatsResponse, bool, error) {
	var cached dto.AdminStatsResponse
	if hit, _ := s.cache.Get(ctx, adminStatsCacheKey, &cached); hit {
		return &cached, true, nil
	}

	enrollments := s.source.Enrollments()
	courses := s.source.Courses()
	resp := &dto.AdminStatsResponse{
		TotalEnrollments: len(enrollments),
		TotalStudents:    len(s.source.Students()),
		TotalCourses:     len(courses),
		Courses:          make([]dto.CourseFillRow, 0, len(courses)),
	}
	for _, e := range enrollments {
		if e.Status.Billable() {
			resp.TotalRevenue += e.Price
		}
		switch e.Status {
		case models.EnrollmentStatusEnrolled:
			resp.ActiveEnrollments++
		case models.EnrollmentStatusCompleted:
			resp.CompletedEnrollments++
		}
	}
	for _, c := range courses {
		resp.Courses = append(resp.Courses, dto.CourseFillRow{
			CourseID:         c.ID,
			Name:             c.Name,
			EnrolledStudents: c.EnrolledStudents,
			MaxStudents:      c.MaxStudents,
			SeatsLeft:        c.SeatsLeft(),
		})
	}

	if err := s.cache.Set(ctx, adminStatsCacheKey, resp, s.cacheTTL); err != nil {
		s.logger.Debug("admin stats not cached", zap.Error(err))
	}
	return resp, false, nil
}
