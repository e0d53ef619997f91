package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/internal/repository"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
	"github.com/noah-isme/acs-institute-api/pkg/logger"
)

// Backend is the persistence adapter behind the coordinator.
type Backend interface {
	repository.Tables
	// InTx runs fn as one unit of work; an error from fn discards every
	// write made through the supplied tables.
	InTx(ctx context.Context, fn func(repository.Tables) error) error
	Mode() string
	Ping(ctx context.Context) error
}

// resetter is implemented by backends that can restore a built-in dataset.
type resetter interface {
	Reset(ctx context.Context) error
}

// ChangeListener observes committed coordinator changes.
type ChangeListener func(models.ChangeEvent)

// Coordinator owns the shared course, enrollment and student collections. It
// serves reads from an in-memory snapshot and performs compound writes as a
// single backend unit of work before reloading the snapshot.
type Coordinator struct {
	backend Backend
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.RWMutex
	courses     []models.Course
	enrollments []models.Enrollment
	students    []models.Student
	// appliedSeq is the sequence of the reload that produced the snapshot.
	appliedSeq uint64
	reloadSeq  atomic.Uint64

	loading atomic.Bool
	group   singleflight.Group

	listenersMu  sync.Mutex
	listeners    map[int]ChangeListener
	nextListener int
}

// NewCoordinator constructs a coordinator over backend. The snapshot is empty
// until Refresh is called.
func NewCoordinator(backend Backend, metrics *MetricsService, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		backend:   backend,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]ChangeListener),
	}
}

// Mode reports which backend adapter is active.
func (c *Coordinator) Mode() string {
	return c.backend.Mode()
}

// Ping checks backend connectivity.
func (c *Coordinator) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

// Loading reports whether a refresh is in flight.
func (c *Coordinator) Loading() bool {
	return c.loading.Load()
}

// Courses returns a copy of the course collection.
func (c *Coordinator) Courses() []models.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Course, len(c.courses))
	for i, course := range c.courses {
		course.Features = append([]string(nil), course.Features...)
		out[i] = course
	}
	return out
}

// Enrollments returns a copy of the enrollment collection, newest first.
func (c *Coordinator) Enrollments() []models.Enrollment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Enrollment(nil), c.enrollments...)
}

// Students returns a copy of the student collection, newest first.
func (c *Coordinator) Students() []models.Student {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Student(nil), c.students...)
}

// StudentEnrollments filters the snapshot by exact, case-sensitive email.
func (c *Coordinator) StudentEnrollments(email string) []models.Enrollment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Enrollment
	for _, e := range c.enrollments {
		if e.StudentEmail == email {
			out = append(out, e)
		}
	}
	return out
}

// CourseByID looks a course up in the snapshot.
func (c *Coordinator) CourseByID(id string) (models.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, course := range c.courses {
		if course.ID == id {
			course.Features = append([]string(nil), course.Features...)
			return course, true
		}
	}
	return models.Course{}, false
}

// Subscribe registers listener for committed changes and returns a func that
// removes it. Listeners run synchronously after the snapshot is swapped.
func (c *Coordinator) Subscribe(listener ChangeListener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners, id)
			c.listenersMu.Unlock()
		})
	}
}

// Refresh reloads all three collections. Backends holding a built-in dataset
// are reset to it first. Concurrent callers share one reload.
func (c *Coordinator) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		start := c.now()
		c.loading.Store(true)
		defer c.loading.Store(false)

		if r, ok := c.backend.(resetter); ok {
			if err := r.Reset(ctx); err != nil {
				return nil, err
			}
		}
		if err := c.reload(ctx); err != nil {
			return nil, err
		}
		c.metrics.ObserveCoordinatorRefresh(c.now().Sub(start))
		return nil, nil
	})
	if err != nil {
		logger.FromContext(ctx, c.logger).Error("refresh failed", zap.String("mode", c.Mode()), zap.Error(err))
		c.metrics.ObserveCoordinatorOperation("refresh", false)
		return appErrors.Backend(err, "failed to load data")
	}

	c.metrics.ObserveCoordinatorOperation("refresh", true)
	c.notify(models.ChangeEvent{Type: models.ChangeRefreshed})
	return nil
}

// AddEnrollment persists the enrollment, creates or updates the matching
// student and bumps the course's enrolled count, all in one unit of work.
// Identical payloads are not deduplicated.
func (c *Coordinator) AddEnrollment(ctx context.Context, payload models.NewEnrollment) (*models.Enrollment, error) {
	enrollment := payload.Enrollment()
	err := c.backend.InTx(ctx, func(tx repository.Tables) error {
		if err := tx.InsertEnrollment(ctx, &enrollment); err != nil {
			return err
		}

		at := c.now().UTC()
		_, err := tx.FindStudentByEmail(ctx, enrollment.StudentEmail)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			student := &models.Student{
				Name:         enrollment.StudentName,
				Email:        enrollment.StudentEmail,
				Phone:        enrollment.StudentPhone,
				TotalCourses: 1,
				MemberSince:  at.Truncate(24 * time.Hour),
				LastActivity: &at,
			}
			if err := tx.InsertStudent(ctx, student); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.RecordStudentEnrollment(ctx, enrollment.StudentEmail, at); err != nil {
				return err
			}
		}

		found, err := tx.IncrementCourseEnrollment(ctx, enrollment.CourseID)
		if err != nil {
			return err
		}
		if !found {
			c.logger.Warn("enrollment references unknown course", zap.String("course_id", enrollment.CourseID))
		}
		return nil
	})
	if err != nil {
		return nil, c.writeFailed(ctx, "add_enrollment", err, "failed to add enrollment")
	}

	c.committed(ctx, "add_enrollment", models.ChangeEvent{
		Type:         models.ChangeEnrollmentAdded,
		EnrollmentID: enrollment.ID,
		CourseID:     enrollment.CourseID,
		StudentEmail: enrollment.StudentEmail,
	})
	return &enrollment, nil
}

// UpdateEnrollment applies the set fields of update. Marking an enrollment
// completed increments the student's completed count every time.
func (c *Coordinator) UpdateEnrollment(ctx context.Context, id string, update models.EnrollmentUpdate) (*models.Enrollment, error) {
	updated, err := c.applyUpdate(ctx, "update_enrollment", id, update)
	if err != nil {
		return nil, err
	}
	c.committed(ctx, "update_enrollment", models.ChangeEvent{
		Type:         models.ChangeEnrollmentUpdated,
		EnrollmentID: updated.ID,
		CourseID:     updated.CourseID,
		StudentEmail: updated.StudentEmail,
	})
	return updated, nil
}

// CancelEnrollment marks the enrollment dropped. Counters are left untouched.
func (c *Coordinator) CancelEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	dropped := models.EnrollmentStatusDropped
	updated, err := c.applyUpdate(ctx, "cancel_enrollment", id, models.EnrollmentUpdate{Status: &dropped})
	if err != nil {
		return nil, err
	}
	c.committed(ctx, "cancel_enrollment", models.ChangeEvent{
		Type:         models.ChangeEnrollmentDropped,
		EnrollmentID: updated.ID,
		CourseID:     updated.CourseID,
		StudentEmail: updated.StudentEmail,
	})
	return updated, nil
}

func (c *Coordinator) applyUpdate(ctx context.Context, op, id string, update models.EnrollmentUpdate) (*models.Enrollment, error) {
	var updated *models.Enrollment
	err := c.backend.InTx(ctx, func(tx repository.Tables) error {
		found, err := tx.UpdateEnrollment(ctx, id, update)
		if err != nil {
			return err
		}
		if !found {
			return sql.ErrNoRows
		}
		if updated, err = tx.FindEnrollmentByID(ctx, id); err != nil {
			return err
		}
		if update.Completes() {
			matched, err := tx.IncrementStudentCompleted(ctx, updated.StudentEmail)
			if err != nil {
				return err
			}
			if !matched {
				c.logger.Warn("completed enrollment has no student", zap.String("enrollment_id", id))
			}
		}
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		c.metrics.ObserveCoordinatorOperation(op, false)
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("enrollment %s not found", id))
	}
	if err != nil {
		return nil, c.writeFailed(ctx, op, err, "failed to update enrollment")
	}
	return updated, nil
}

func (c *Coordinator) writeFailed(ctx context.Context, op string, err error, message string) error {
	logger.FromContext(ctx, c.logger).Error(message, zap.String("operation", op), zap.String("mode", c.Mode()), zap.Error(err))
	c.metrics.ObserveCoordinatorOperation(op, false)
	return appErrors.Backend(err, message)
}

// committed reloads the snapshot after a successful write and notifies
// listeners. A failed reload leaves the previous snapshot in place.
func (c *Coordinator) committed(ctx context.Context, op string, evt models.ChangeEvent) {
	c.metrics.ObserveCoordinatorOperation(op, true)
	if err := c.reload(ctx); err != nil {
		logger.FromContext(ctx, c.logger).Warn("reload after write failed", zap.String("operation", op), zap.Error(err))
	}
	c.notify(evt)
}

// reload reads all three collections and swaps them in. Reloads are numbered
// when they start; one finishing after a newer reload is discarded.
func (c *Coordinator) reload(ctx context.Context) error {
	seq := c.reloadSeq.Add(1)
	var (
		courses     []models.Course
		enrollments []models.Enrollment
		students    []models.Student
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = c.backend.ListCourses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		enrollments, err = c.backend.ListEnrollments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		students, err = c.backend.ListStudents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.appliedSeq {
		c.logger.Debug("discarding stale reload", zap.Uint64("seq", seq), zap.Uint64("applied", c.appliedSeq))
		return nil
	}
	c.appliedSeq = seq
	c.courses, c.enrollments, c.students = courses, enrollments, students
	return nil
}

func (c *Coordinator) notify(evt models.ChangeEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = c.now().UTC()
	}
	c.listenersMu.Lock()
	listeners := make([]ChangeListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.listenersMu.Unlock()

	for _, l := range listeners {
		l(evt)
	}
}
