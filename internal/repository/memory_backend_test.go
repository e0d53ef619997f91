package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMemoryBackendStartsWithSampleCatalog(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	courses, err := backend.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 4)
	assert.Equal(t, "1", courses[0].ID)
	assert.Equal(t, 20000.0, courses[0].Price)

	enrollments, err := backend.ListEnrollments(ctx)
	require.NoError(t, err)
	assert.Empty(t, enrollments)

	students, err := backend.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestMemoryBackendIDsAreMonotonic(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	backend := NewMemoryBackendWithClock(fixedClock(now))

	first, _ := strconv.ParseInt(backend.nextID(), 10, 64)
	second, _ := strconv.ParseInt(backend.nextID(), 10, 64)
	assert.Equal(t, now.UnixMilli(), first)
	assert.Equal(t, first+1, second)
}

func TestMemoryBackendInTxDiscardsFailedWork(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()
	boom := errors.New("boom")

	err := backend.InTx(ctx, func(tx Tables) error {
		require.NoError(t, tx.InsertEnrollment(ctx, &models.Enrollment{CourseID: "1", StudentEmail: "a@x.com"}))
		_, err := tx.IncrementCourseEnrollment(ctx, "1")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	enrollments, _ := backend.ListEnrollments(ctx)
	assert.Empty(t, enrollments)
	courses, _ := backend.ListCourses(ctx)
	assert.Equal(t, 0, courses[0].EnrolledStudents)
}

func TestMemoryBackendInTxCommits(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	err := backend.InTx(ctx, func(tx Tables) error {
		return tx.InsertStudent(ctx, &models.Student{Email: "a@x.com", TotalCourses: 1})
	})
	require.NoError(t, err)

	student, err := backend.FindStudentByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, student.TotalCourses)
	assert.NotEmpty(t, student.ID)
}

func TestMemoryBackendListsNewestFirst(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, backend.InsertEnrollment(ctx, &models.Enrollment{ID: "a"}))
	require.NoError(t, backend.InsertEnrollment(ctx, &models.Enrollment{ID: "b"}))

	enrollments, err := backend.ListEnrollments(ctx)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, "b", enrollments[0].ID)
	assert.Equal(t, "a", enrollments[1].ID)
}

func TestMemoryBackendUpdateAndLookup(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, backend.InsertEnrollment(ctx, &models.Enrollment{ID: "e1", Status: models.EnrollmentStatusEnrolled}))

	dropped := models.EnrollmentStatusDropped
	ok, err := backend.UpdateEnrollment(ctx, "e1", models.EnrollmentUpdate{Status: &dropped})
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := backend.FindEnrollmentByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, found.Status)

	ok, err = backend.UpdateEnrollment(ctx, "missing", models.EnrollmentUpdate{Status: &dropped})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = backend.FindEnrollmentByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryBackendResetRestoresSample(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()
	_, err := backend.IncrementCourseEnrollment(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, backend.InsertEnrollment(ctx, &models.Enrollment{ID: "e1"}))

	require.NoError(t, backend.Reset(ctx))

	courses, _ := backend.ListCourses(ctx)
	assert.Equal(t, 0, courses[0].EnrolledStudents)
	enrollments, _ := backend.ListEnrollments(ctx)
	assert.Empty(t, enrollments)
}

func TestMemorySalonInsertAndList(t *testing.T) {
	salon := NewMemorySalon()
	ctx := context.Background()

	services, err := salon.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 4)

	require.NoError(t, salon.InsertAppointment(ctx, &models.Appointment{ServiceID: "1"}))
	require.NoError(t, salon.InsertAppointment(ctx, &models.Appointment{ServiceID: "2"}))
	appointments, err := salon.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.Equal(t, "2", appointments[0].ServiceID)

	_, err = salon.FindServiceByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
