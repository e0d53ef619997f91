package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

const enrollmentColumns = `id, course_id, course_name, student_name, student_email, student_phone, enrollment_date,
        status, price, progress, notes, experience, goals, created_at`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db sqlx.ExtContext
}

// NewEnrollmentRepository constructs the repository over a database or transaction.
func NewEnrollmentRepository(db sqlx.ExtContext) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListEnrollments returns every enrollment, newest first.
func (r *EnrollmentRepository) ListEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments ORDER BY created_at DESC`
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, r.db, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindEnrollmentByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindEnrollmentByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, r.db, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// InsertEnrollment persists a new enrollment record, filling id and timestamps.
func (r *EnrollmentRepository) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = now
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}
	enrollment.CreatedAt = now
	const query = `INSERT INTO enrollments (id, course_id, course_name, student_name, student_email, student_phone,
        enrollment_date, status, price, progress, notes, experience, goals, created_at)
        VALUES (:id, :course_id, :course_name, :student_name, :student_email, :student_phone,
        :enrollment_date, :status, :price, :progress, :notes, :experience, :goals, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, enrollment); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// UpdateEnrollment applies the set fields of update. It reports false when no
// enrollment matched; an empty update is a no-op that still reports true.
func (r *EnrollmentRepository) UpdateEnrollment(ctx context.Context, id string, update models.EnrollmentUpdate) (bool, error) {
	if update.Empty() {
		return true, nil
	}
	var sets []string
	var args []interface{}
	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if update.Progress != nil {
		args = append(args, *update.Progress)
		sets = append(sets, fmt.Sprintf("progress = $%d", len(args)))
	}
	if update.Notes != nil {
		args = append(args, *update.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE enrollments SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update enrollment: %w", err)
	}
	return affected > 0, nil
}
