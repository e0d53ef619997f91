package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sony/gobreaker"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

type sqlTables struct {
	*CourseRepository
	*EnrollmentRepository
	*StudentRepository
}

func newSQLTables(db sqlx.ExtContext) sqlTables {
	return sqlTables{
		CourseRepository:     NewCourseRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		StudentRepository:    NewStudentRepository(db),
	}
}

// PostgresBackend serves the coordinator from PostgreSQL. Collection reads and
// units of work pass through a circuit breaker so a failing database trips
// quickly instead of piling up requests.
type PostgresBackend struct {
	sqlTables
	db      *sqlx.DB
	breaker *gobreaker.CircuitBreaker
}

// NewPostgresBackend builds the backend. cb may be nil.
func NewPostgresBackend(db *sqlx.DB, cb *gobreaker.CircuitBreaker) *PostgresBackend {
	return &PostgresBackend{sqlTables: newSQLTables(db), db: db, breaker: cb}
}

// Mode identifies the adapter.
func (b *PostgresBackend) Mode() string { return ModePostgres }

// Ping checks database connectivity.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// ListCourses returns every course through the breaker.
func (b *PostgresBackend) ListCourses(ctx context.Context) ([]models.Course, error) {
	return guarded(b.breaker, func() ([]models.Course, error) { return b.sqlTables.ListCourses(ctx) })
}

// ListEnrollments returns every enrollment through the breaker.
func (b *PostgresBackend) ListEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	return guarded(b.breaker, func() ([]models.Enrollment, error) { return b.sqlTables.ListEnrollments(ctx) })
}

// ListStudents returns every student through the breaker.
func (b *PostgresBackend) ListStudents(ctx context.Context) ([]models.Student, error) {
	return guarded(b.breaker, func() ([]models.Student, error) { return b.sqlTables.ListStudents(ctx) })
}

// InTx runs fn inside a single SQL transaction. Any error from fn rolls the
// whole unit of work back.
func (b *PostgresBackend) InTx(ctx context.Context, fn func(Tables) error) error {
	_, err := guarded(b.breaker, func() (struct{}, error) { return struct{}{}, b.inTx(ctx, fn) })
	return err
}

func (b *PostgresBackend) inTx(ctx context.Context, fn func(Tables) error) (err error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(newSQLTables(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func guarded[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}
	out, err := cb.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}
