package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

const studentColumns = `id, name, email, phone, total_courses, completed_courses, member_since, last_activity, created_at`

// StudentRepository handles persistence of students.
type StudentRepository struct {
	db sqlx.ExtContext
}

// NewStudentRepository constructs the repository over a database or transaction.
func NewStudentRepository(db sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListStudents returns every student, newest first.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY created_at DESC`
	var students []models.Student
	if err := sqlx.SelectContext(ctx, r.db, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindStudentByEmail returns the oldest student registered with email.
func (r *StudentRepository) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE email = $1 ORDER BY created_at ASC LIMIT 1`
	var student models.Student
	if err := sqlx.GetContext(ctx, r.db, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// InsertStudent persists a new student record.
func (r *StudentRepository) InsertStudent(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO students (id, name, email, phone, total_courses, completed_courses, member_since, last_activity, created_at)
        VALUES (:id, :name, :email, :phone, :total_courses, :completed_courses, :member_since, :last_activity, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, student); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// RecordStudentEnrollment bumps total_courses and last_activity for email.
func (r *StudentRepository) RecordStudentEnrollment(ctx context.Context, email string, at time.Time) error {
	const query = `UPDATE students SET total_courses = total_courses + 1, last_activity = $2 WHERE email = $1`
	if _, err := r.db.ExecContext(ctx, query, email, at); err != nil {
		return fmt.Errorf("record student enrollment: %w", err)
	}
	return nil
}

// IncrementStudentCompleted bumps completed_courses for email. It reports
// false when no student matched.
func (r *StudentRepository) IncrementStudentCompleted(ctx context.Context, email string) (bool, error) {
	const query = `UPDATE students SET completed_courses = completed_courses + 1 WHERE email = $1`
	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return false, fmt.Errorf("increment completed courses: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment completed courses: %w", err)
	}
	return affected > 0, nil
}
