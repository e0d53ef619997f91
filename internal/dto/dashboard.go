package dto

import (
	"time"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

// StudentDashboardResponse aggregates a student's enrollments.
type StudentDashboardResponse struct {
	Email           string              `json:"email"`
	Student         *models.Student     `json:"student,omitempty"`
	Enrollments     []models.Enrollment `json:"enrollments"`
	ActiveCount     int                 `json:"activeCount"`
	CompletedCount  int                 `json:"completedCount"`
	AverageProgress float64             `json:"averageProgress"`
}

// AdminStatsResponse summarises institute-wide figures.
type AdminStatsResponse struct {
	TotalRevenue         float64         `json:"totalRevenue"`
	ActiveEnrollments    int             `json:"activeEnrollments"`
	CompletedEnrollments int             `json:"completedEnrollments"`
	TotalEnrollments     int             `json:"totalEnrollments"`
	TotalStudents        int             `json:"totalStudents"`
	TotalCourses         int             `json:"totalCourses"`
	Courses              []CourseFillRow `json:"courses"`
}

// CourseFillRow reports seat usage for one course.
type CourseFillRow struct {
	CourseID         string `json:"courseId"`
	Name             string `json:"name"`
	EnrolledStudents int    `json:"enrolledStudents"`
	MaxStudents      int    `json:"maxStudents"`
	SeatsLeft        int    `json:"seatsLeft"`
}

// SystemMetrics is a lightweight view of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CoordinatorFailures      uint64    `json:"coordinatorFailures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// ReadinessResponse describes the coordinator state.
type ReadinessResponse struct {
	Mode        string        `json:"mode"`
	Loading     bool          `json:"loading"`
	Courses     int           `json:"courses"`
	Enrollments int           `json:"enrollments"`
	Students    int           `json:"students"`
	Metrics     SystemMetrics `json:"metrics"`
}
