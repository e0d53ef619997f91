package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acs-institute-api/internal/models"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
)

type staticSource struct {
	courses     []models.Course
	enrollments []models.Enrollment
	students    []models.Student
}

func (s staticSource) Courses() []models.Course         { return s.courses }
func (s staticSource) Enrollments() []models.Enrollment { return s.enrollments }
func (s staticSource) Students() []models.Student       { return s.students }

func (s staticSource) StudentEnrollments(email string) []models.Enrollment {
	var out []models.Enrollment
	for _, e := range s.enrollments {
		if e.StudentEmail == email {
			out = append(out, e)
		}
	}
	return out
}

func dashboardFixture() staticSource {
	return staticSource{
		courses: []models.Course{
			{ID: "1", Name: "Full Stack", MaxStudents: 30, EnrolledStudents: 3},
			{ID: "2", Name: "Python", MaxStudents: 2, EnrolledStudents: 3},
		},
		enrollments: []models.Enrollment{
			{ID: "e1", StudentEmail: "a@x.com", Status: models.EnrollmentStatusEnrolled, Price: 20000, Progress: 40},
			{ID: "e2", StudentEmail: "a@x.com", Status: models.EnrollmentStatusCompleted, Price: 25000, Progress: 100},
			{ID: "e3", StudentEmail: "a@x.com", Status: models.EnrollmentStatusPending, Price: 20000, Progress: 10},
			{ID: "e4", StudentEmail: "b@x.com", Status: models.EnrollmentStatusDropped, Price: 25000, Progress: 0},
		},
		students: []models.Student{
			{ID: "s1", Email: "a@x.com", TotalCourses: 3, CompletedCourses: 1},
			{ID: "s2", Email: "b@x.com", TotalCourses: 1},
		},
	}
}

func TestDashboardServiceStudent(t *testing.T) {
	svc := NewDashboardService(dashboardFixture(), nil, time.Minute, nil)

	resp, hit, err := svc.Student(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, resp.Enrollments, 3)
	assert.Equal(t, 2, resp.ActiveCount)
	assert.Equal(t, 1, resp.CompletedCount)
	assert.InDelta(t, 50.0, resp.AverageProgress, 0.001)
	require.NotNil(t, resp.Student)
	assert.Equal(t, "s1", resp.Student.ID)
}

func TestDashboardServiceStudentUnknownEmail(t *testing.T) {
	svc := NewDashboardService(dashboardFixture(), nil, time.Minute, nil)

	resp, _, err := svc.Student(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.NotNil(t, resp.Enrollments)
	assert.Empty(t, resp.Enrollments)
	assert.Nil(t, resp.Student)
	assert.Zero(t, resp.AverageProgress)
}

func TestDashboardServiceStudentRequiresEmail(t *testing.T) {
	svc := NewDashboardService(dashboardFixture(), nil, time.Minute, nil)
	_, _, err := svc.Student(context.Background(), "  ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDashboardServiceAdmin(t *testing.T) {
	svc := NewDashboardService(dashboardFixture(), nil, time.Minute, nil)

	resp, _, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45000.0, resp.TotalRevenue)
	assert.Equal(t, 1, resp.ActiveEnrollments)
	assert.Equal(t, 1, resp.CompletedEnrollments)
	assert.Equal(t, 4, resp.TotalEnrollments)
	assert.Equal(t, 2, resp.TotalStudents)
	assert.Equal(t, 2, resp.TotalCourses)
	require.Len(t, resp.Courses, 2)
	assert.Equal(t, 27, resp.Courses[0].SeatsLeft)
	assert.Equal(t, 0, resp.Courses[1].SeatsLeft)
}

func TestDashboardServiceUsesCache(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc := NewDashboardService(dashboardFixture(), cache, time.Minute, nil)
	ctx := context.Background()

	_, hit, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	resp, hit, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 45000.0, resp.TotalRevenue)

	_, hit, err = svc.Student(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, repo.has(studentDashboardKey("a@x.com")))
}
