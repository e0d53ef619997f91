package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

const courseColumns = `id, name, description, duration, price, image, features, level, instructor, category,
        start_date, max_students, enrolled_students, created_at`

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db sqlx.ExtContext
}

// NewCourseRepository constructs the repository over a database or transaction.
func NewCourseRepository(db sqlx.ExtContext) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListCourses returns every course, oldest first.
func (r *CourseRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at ASC`
	var courses []models.Course
	if err := sqlx.SelectContext(ctx, r.db, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// IncrementCourseEnrollment adds one seat to enrolled_students. It reports
// false when no course matched.
func (r *CourseRepository) IncrementCourseEnrollment(ctx context.Context, courseID string) (bool, error) {
	const query = `UPDATE courses SET enrolled_students = enrolled_students + 1 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, courseID)
	if err != nil {
		return false, fmt.Errorf("increment course enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment course enrollment: %w", err)
	}
	return affected > 0, nil
}
