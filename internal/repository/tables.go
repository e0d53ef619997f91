package repository

import (
	"context"
	"time"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

// Backend modes reported by the adapters.
const (
	ModePostgres = "postgres"
	ModeMemory   = "memory"
)

// Tables is the table-level create/read/update surface over courses,
// enrollments and students. Lookups that find nothing return sql.ErrNoRows.
type Tables interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	IncrementCourseEnrollment(ctx context.Context, courseID string) (bool, error)

	ListEnrollments(ctx context.Context) ([]models.Enrollment, error)
	FindEnrollmentByID(ctx context.Context, id string) (*models.Enrollment, error)
	InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	UpdateEnrollment(ctx context.Context, id string, update models.EnrollmentUpdate) (bool, error)

	ListStudents(ctx context.Context) ([]models.Student, error)
	FindStudentByEmail(ctx context.Context, email string) (*models.Student, error)
	InsertStudent(ctx context.Context, student *models.Student) error
	RecordStudentEnrollment(ctx context.Context, email string, at time.Time) error
	IncrementStudentCompleted(ctx context.Context, email string) (bool, error)
}
