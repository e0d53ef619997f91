package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/internal/repository"
	"github.com/noah-isme/acs-institute-api/pkg/breaker"
	"github.com/noah-isme/acs-institute-api/pkg/config"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
	"github.com/noah-isme/acs-institute-api/pkg/middleware/requestid"
)

var coordinatorClock = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newMemoryCoordinator(t *testing.T) (*Coordinator, *repository.MemoryBackend) {
	t.Helper()
	backend := repository.NewMemoryBackendWithClock(func() time.Time { return coordinatorClock })
	c := NewCoordinator(backend, NewMetricsService(), nil)
	c.now = func() time.Time { return coordinatorClock }
	require.NoError(t, c.Refresh(context.Background()))
	return c, backend
}

func samplePayload(email string) models.NewEnrollment {
	return models.NewEnrollment{
		CourseID:     "1",
		CourseName:   "Full Stack Web Development",
		StudentName:  "Ana",
		StudentEmail: email,
		StudentPhone: "+91 90000 00000",
		Status:       models.EnrollmentStatusEnrolled,
		Price:        20000,
	}
}

func courseCount(t *testing.T, c *Coordinator, id string) int {
	t.Helper()
	course, ok := c.CourseByID(id)
	require.True(t, ok)
	return course.EnrolledStudents
}

func studentByEmail(t *testing.T, c *Coordinator, email string) models.Student {
	t.Helper()
	for _, s := range c.Students() {
		if s.Email == email {
			return s
		}
	}
	t.Fatalf("student %s not found", email)
	return models.Student{}
}

func TestCoordinatorRefreshLoadsSampleDataset(t *testing.T) {
	c, _ := newMemoryCoordinator(t)

	courses := c.Courses()
	require.Len(t, courses, 4)
	assert.Equal(t, []string{"1", "2", "3", "4"}, []string{courses[0].ID, courses[1].ID, courses[2].ID, courses[3].ID})
	assert.Empty(t, c.Enrollments())
	assert.Empty(t, c.Students())
	assert.False(t, c.Loading())
	assert.Equal(t, repository.ModeMemory, c.Mode())
}

func TestCoordinatorRefreshDiscardsInMemoryWrites(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	_, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	require.Len(t, c.Enrollments(), 1)

	require.NoError(t, c.Refresh(ctx))
	assert.Len(t, c.Courses(), 4)
	assert.Empty(t, c.Enrollments())
	assert.Empty(t, c.Students())
	assert.Equal(t, 0, courseCount(t, c, "1"))
}

func TestCoordinatorAddEnrollmentFansOut(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	created, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 20000.0, created.Price)

	require.Len(t, c.Enrollments(), 1)
	require.Len(t, c.Students(), 1)
	student := studentByEmail(t, c, "a@x.com")
	assert.Equal(t, 1, student.TotalCourses)
	assert.Equal(t, 0, student.CompletedCourses)
	assert.Equal(t, "Ana", student.Name)
	assert.Equal(t, coordinatorClock.Truncate(24*time.Hour), student.MemberSince)
	assert.Equal(t, 1, courseCount(t, c, "1"))
}

func TestCoordinatorDuplicateAddDoubleCounts(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	first, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	second, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, c.Enrollments(), 2)
	require.Len(t, c.Students(), 1)
	assert.Equal(t, 2, studentByEmail(t, c, "a@x.com").TotalCourses)
	assert.Equal(t, 2, courseCount(t, c, "1"))
}

func TestCoordinatorAddWithUnknownCourseSkipsCounter(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	payload := samplePayload("a@x.com")
	payload.CourseID = "99"

	_, err := c.AddEnrollment(context.Background(), payload)
	require.NoError(t, err)

	assert.Len(t, c.Enrollments(), 1)
	assert.Equal(t, 1, studentByEmail(t, c, "a@x.com").TotalCourses)
	for _, course := range c.Courses() {
		assert.Equal(t, 0, course.EnrolledStudents)
	}
}

func TestCoordinatorCancelLeavesCounters(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()
	created, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)

	dropped, err := c.CancelEnrollment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, dropped.Status)

	assert.Equal(t, models.EnrollmentStatusDropped, c.Enrollments()[0].Status)
	assert.Equal(t, 1, courseCount(t, c, "1"))
	assert.Equal(t, 1, studentByEmail(t, c, "a@x.com").TotalCourses)
}

func TestCoordinatorRepeatedCompletionCountsAgain(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()
	created, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)

	completed := models.EnrollmentStatusCompleted
	progress := 100
	update := models.EnrollmentUpdate{Status: &completed, Progress: &progress}

	updated, err := c.UpdateEnrollment(ctx, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, 1, studentByEmail(t, c, "a@x.com").CompletedCourses)

	_, err = c.UpdateEnrollment(ctx, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, 2, studentByEmail(t, c, "a@x.com").CompletedCourses)
}

func TestCoordinatorUpdateOnlyTouchesSuppliedFields(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()
	created, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)

	notes := "prefers evening batch"
	updated, err := c.UpdateEnrollment(ctx, created.ID, models.EnrollmentUpdate{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
	assert.Equal(t, models.EnrollmentStatusEnrolled, updated.Status)
	assert.Equal(t, 0, studentByEmail(t, c, "a@x.com").CompletedCourses)
}

func TestCoordinatorUpdateUnknownEnrollment(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	_, err := c.CancelEnrollment(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCoordinatorStudentEnrollmentsExactMatch(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()
	_, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	_, err = c.AddEnrollment(ctx, samplePayload("b@x.com"))
	require.NoError(t, err)

	assert.Len(t, c.StudentEnrollments("a@x.com"), 1)
	assert.Empty(t, c.StudentEnrollments("A@x.com"))
	assert.Empty(t, c.StudentEnrollments("a@x.co"))
}

func TestCoordinatorCourseByIDMissing(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	course, ok := c.CourseByID("42")
	assert.False(t, ok)
	assert.Equal(t, models.Course{}, course)
}

func TestCoordinatorReadersGetCopies(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	courses := c.Courses()
	courses[0].Name = "mutated"
	courses[0].Features[0] = "mutated"

	fresh, ok := c.CourseByID(courses[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", fresh.Name)
	assert.NotEqual(t, "mutated", fresh.Features[0])
}

func TestCoordinatorNotifiesSubscribers(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	var events []models.ChangeEvent
	unsubscribe := c.Subscribe(func(evt models.ChangeEvent) { events = append(events, evt) })

	created, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	_, err = c.CancelEnrollment(ctx, created.ID)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, models.ChangeEnrollmentAdded, events[0].Type)
	assert.Equal(t, created.ID, events[0].EnrollmentID)
	assert.Equal(t, "a@x.com", events[0].StudentEmail)
	assert.Equal(t, models.ChangeEnrollmentDropped, events[1].Type)
	assert.Equal(t, coordinatorClock, events[1].OccurredAt)

	unsubscribe()
	unsubscribe()
	require.NoError(t, c.Refresh(ctx))
	assert.Len(t, events, 2)
}

func TestCoordinatorConcurrentRefreshes(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Refresh(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, c.Courses(), 4)
	assert.False(t, c.Loading())
}

type failingTables struct {
	repository.Tables
	err error
}

func (f failingTables) IncrementCourseEnrollment(context.Context, string) (bool, error) {
	return false, f.err
}

type failingBackend struct {
	*repository.MemoryBackend
	err error
}

func (b *failingBackend) InTx(ctx context.Context, fn func(repository.Tables) error) error {
	return b.MemoryBackend.InTx(ctx, func(tx repository.Tables) error {
		return fn(failingTables{Tables: tx, err: b.err})
	})
}

func TestCoordinatorFailedAddLeavesNoPartialState(t *testing.T) {
	boom := errors.New("course counter unavailable")
	backend := &failingBackend{MemoryBackend: repository.NewMemoryBackend(), err: boom}
	c := NewCoordinator(backend, nil, nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	notified := false
	c.Subscribe(func(models.ChangeEvent) { notified = true })

	_, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrBackend)
	assert.ErrorIs(t, err, boom)
	assert.False(t, notified)

	enrollments, _ := backend.ListEnrollments(ctx)
	students, _ := backend.ListStudents(ctx)
	assert.Empty(t, enrollments)
	assert.Empty(t, students)
	assert.Empty(t, c.Enrollments())
}

func TestCoordinatorPostgresAddRunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	backend := repository.NewPostgresBackend(sqlx.NewDb(db, "sqlmock"), nil)
	c := NewCoordinator(backend, nil, nil)

	insertArgs := make([]driver.Value, 14)
	for i := range insertArgs {
		insertArgs[i] = sqlmock.AnyArg()
	}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO enrollments").WithArgs(insertArgs...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM students WHERE email = \$1`).WithArgs("a@x.com").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE courses SET enrolled_students = enrolled_students \+ 1`).WithArgs("1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM courses").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM enrollments").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM students ORDER BY").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	created, err := c.AddEnrollment(context.Background(), samplePayload("a@x.com"))
	require.NoError(t, err)
	assert.Len(t, created.ID, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoordinatorPostgresMissingEnrollmentKeepsBreakerClosed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	cb := breaker.New("postgres", config.BreakerConfig{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFailures: 2}, nil)
	backend := repository.NewPostgresBackend(sqlx.NewDb(db, "sqlmock"), cb)
	c := NewCoordinator(backend, nil, nil)

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE enrollments SET status = \$1 WHERE id = \$2`).
			WithArgs(sqlmock.AnyArg(), "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := c.CancelEnrollment(context.Background(), "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, appErrors.ErrNotFound)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	mock.ExpectQuery("FROM courses").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1"))
	courses, err := backend.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// stallingBackend holds the first ListEnrollments result until released so a
// slow reload can finish after a newer one.
type stallingBackend struct {
	*repository.MemoryBackend
	once    sync.Once
	stalled chan struct{}
	release chan struct{}
}

func (b *stallingBackend) ListEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	out, err := b.MemoryBackend.ListEnrollments(ctx)
	stall := false
	b.once.Do(func() { stall = true })
	if stall {
		close(b.stalled)
		<-b.release
	}
	return out, err
}

func TestCoordinatorStaleReloadDoesNotOverwriteNewerSnapshot(t *testing.T) {
	backend := &stallingBackend{
		MemoryBackend: repository.NewMemoryBackendWithClock(func() time.Time { return coordinatorClock }),
		stalled:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	c := NewCoordinator(backend, nil, nil)
	c.now = func() time.Time { return coordinatorClock }
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.reload(ctx) }()
	<-backend.stalled

	_, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	require.Len(t, c.Enrollments(), 1)

	close(backend.release)
	require.NoError(t, <-done)

	assert.Len(t, c.Enrollments(), 1)
	assert.Equal(t, 1, studentByEmail(t, c, "a@x.com").TotalCourses)
	assert.Equal(t, 1, courseCount(t, c, "1"))
}

func TestCoordinatorEnrollCompleteThenDropUnrelated(t *testing.T) {
	c, _ := newMemoryCoordinator(t)
	ctx := context.Background()

	first, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, first.Status)
	assert.Equal(t, 0, first.Progress)
	assert.Equal(t, float64(20000), first.Price)
	assert.Equal(t, 1, studentByEmail(t, c, "a@x.com").TotalCourses)

	other := samplePayload("b@x.com")
	other.CourseID = "2"
	second, err := c.AddEnrollment(ctx, other)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	completed := models.EnrollmentStatusCompleted
	_, err = c.UpdateEnrollment(ctx, first.ID, models.EnrollmentUpdate{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, 1, studentByEmail(t, c, "a@x.com").CompletedCourses)

	dropped, err := c.CancelEnrollment(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, dropped.Status)

	statuses := map[string]models.EnrollmentStatus{}
	for _, e := range c.Enrollments() {
		statuses[e.ID] = e.Status
	}
	assert.Equal(t, map[string]models.EnrollmentStatus{
		first.ID:  models.EnrollmentStatusCompleted,
		second.ID: models.EnrollmentStatusDropped,
	}, statuses)

	a := studentByEmail(t, c, "a@x.com")
	assert.Equal(t, 1, a.TotalCourses)
	assert.Equal(t, 1, a.CompletedCourses)
	b := studentByEmail(t, c, "b@x.com")
	assert.Equal(t, 1, b.TotalCourses)
	assert.Equal(t, 0, b.CompletedCourses)
	assert.Equal(t, 1, courseCount(t, c, "1"))
	assert.Equal(t, 1, courseCount(t, c, "2"))
}

func TestCoordinatorWriteFailureLogsRequestID(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	backend := &failingBackend{MemoryBackend: repository.NewMemoryBackend(), err: errors.New("down")}
	c := NewCoordinator(backend, nil, zap.New(core))
	require.NoError(t, c.Refresh(context.Background()))

	ctx := requestid.WithValue(context.Background(), "req-42")
	_, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.Error(t, err)

	entries := logs.FilterMessage("failed to add enrollment").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "add_enrollment", entries[0].ContextMap()["operation"])
}
