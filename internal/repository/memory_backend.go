package repository

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

type memoryState struct {
	courses     []models.Course
	enrollments []models.Enrollment // insertion order
	students    []models.Student    // insertion order
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		courses:     make([]models.Course, len(s.courses)),
		enrollments: make([]models.Enrollment, len(s.enrollments)),
		students:    make([]models.Student, len(s.students)),
	}
	copy(out.courses, s.courses)
	copy(out.enrollments, s.enrollments)
	copy(out.students, s.students)
	return out
}

// MemoryBackend keeps the three collections in process. It starts from the
// sample catalog and Reset restores it. Units of work operate on a copy of
// the state that replaces the live state only when fn succeeds.
type MemoryBackend struct {
	mu     sync.Mutex
	state  *memoryState
	now    func() time.Time
	lastID int64
}

// NewMemoryBackend builds a backend seeded with the sample catalog.
func NewMemoryBackend() *MemoryBackend {
	return NewMemoryBackendWithClock(time.Now)
}

// NewMemoryBackendWithClock builds a backend using now as its time source.
func NewMemoryBackendWithClock(now func() time.Time) *MemoryBackend {
	b := &MemoryBackend{now: now}
	b.state = seedState()
	return b
}

func seedState() *memoryState {
	return &memoryState{courses: SampleCourses()}
}

// Mode identifies the adapter.
func (b *MemoryBackend) Mode() string { return ModeMemory }

// Ping always succeeds.
func (b *MemoryBackend) Ping(context.Context) error { return nil }

// Reset restores the sample catalog and clears enrollments and students.
func (b *MemoryBackend) Reset(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = seedState()
	return nil
}

// InTx runs fn against a private copy of the state and commits it on success.
func (b *MemoryBackend) InTx(ctx context.Context, fn func(Tables) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := b.state.clone()
	if err := fn(b.tables(work)); err != nil {
		return err
	}
	b.state = work
	return nil
}

// nextID returns a strictly increasing millisecond timestamp.
func (b *MemoryBackend) nextID() string {
	for {
		last := atomic.LoadInt64(&b.lastID)
		id := b.now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		if atomic.CompareAndSwapInt64(&b.lastID, last, id) {
			return strconv.FormatInt(id, 10)
		}
	}
}

func (b *MemoryBackend) tables(st *memoryState) memoryTables {
	return memoryTables{st: st, nextID: b.nextID, now: b.now}
}

func (b *MemoryBackend) live() (memoryTables, func()) {
	b.mu.Lock()
	return b.tables(b.state), b.mu.Unlock
}

func (b *MemoryBackend) ListCourses(ctx context.Context) ([]models.Course, error) {
	t, unlock := b.live()
	defer unlock()
	return t.ListCourses(ctx)
}

func (b *MemoryBackend) IncrementCourseEnrollment(ctx context.Context, courseID string) (bool, error) {
	t, unlock := b.live()
	defer unlock()
	return t.IncrementCourseEnrollment(ctx, courseID)
}

func (b *MemoryBackend) ListEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	t, unlock := b.live()
	defer unlock()
	return t.ListEnrollments(ctx)
}

func (b *MemoryBackend) FindEnrollmentByID(ctx context.Context, id string) (*models.Enrollment, error) {
	t, unlock := b.live()
	defer unlock()
	return t.FindEnrollmentByID(ctx, id)
}

func (b *MemoryBackend) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	t, unlock := b.live()
	defer unlock()
	return t.InsertEnrollment(ctx, enrollment)
}

func (b *MemoryBackend) UpdateEnrollment(ctx context.Context, id string, update models.EnrollmentUpdate) (bool, error) {
	t, unlock := b.live()
	defer unlock()
	return t.UpdateEnrollment(ctx, id, update)
}

func (b *MemoryBackend) ListStudents(ctx context.Context) ([]models.Student, error) {
	t, unlock := b.live()
	defer unlock()
	return t.ListStudents(ctx)
}

func (b *MemoryBackend) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	t, unlock := b.live()
	defer unlock()
	return t.FindStudentByEmail(ctx, email)
}

func (b *MemoryBackend) InsertStudent(ctx context.Context, student *models.Student) error {
	t, unlock := b.live()
	defer unlock()
	return t.InsertStudent(ctx, student)
}

func (b *MemoryBackend) RecordStudentEnrollment(ctx context.Context, email string, at time.Time) error {
	t, unlock := b.live()
	defer unlock()
	return t.RecordStudentEnrollment(ctx, email, at)
}

func (b *MemoryBackend) IncrementStudentCompleted(ctx context.Context, email string) (bool, error) {
	t, unlock := b.live()
	defer unlock()
	return t.IncrementStudentCompleted(ctx, email)
}

// memoryTables implements Tables over one memoryState. Callers serialise
// access through MemoryBackend.mu.
type memoryTables struct {
	st     *memoryState
	nextID func() string
	now    func() time.Time
}

func (t memoryTables) ListCourses(context.Context) ([]models.Course, error) {
	out := make([]models.Course, len(t.st.courses))
	for i, c := range t.st.courses {
		c.Features = append([]string(nil), c.Features...)
		out[i] = c
	}
	return out, nil
}

func (t memoryTables) IncrementCourseEnrollment(_ context.Context, courseID string) (bool, error) {
	for i := range t.st.courses {
		if t.st.courses[i].ID == courseID {
			t.st.courses[i].EnrolledStudents++
			return true, nil
		}
	}
	return false, nil
}

func (t memoryTables) ListEnrollments(context.Context) ([]models.Enrollment, error) {
	n := len(t.st.enrollments)
	out := make([]models.Enrollment, n)
	for i, e := range t.st.enrollments {
		out[n-1-i] = e
	}
	return out, nil
}

func (t memoryTables) FindEnrollmentByID(_ context.Context, id string) (*models.Enrollment, error) {
	for _, e := range t.st.enrollments {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t memoryTables) InsertEnrollment(_ context.Context, enrollment *models.Enrollment) error {
	now := t.now().UTC()
	if enrollment.ID == "" {
		enrollment.ID = t.nextID()
	}
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = now
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}
	enrollment.CreatedAt = now
	t.st.enrollments = append(t.st.enrollments, *enrollment)
	return nil
}

func (t memoryTables) UpdateEnrollment(_ context.Context, id string, update models.EnrollmentUpdate) (bool, error) {
	for i := range t.st.enrollments {
		if t.st.enrollments[i].ID == id {
			update.Apply(&t.st.enrollments[i])
			return true, nil
		}
	}
	return false, nil
}

func (t memoryTables) ListStudents(context.Context) ([]models.Student, error) {
	n := len(t.st.students)
	out := make([]models.Student, n)
	for i, s := range t.st.students {
		out[n-1-i] = s
	}
	return out, nil
}

func (t memoryTables) FindStudentByEmail(_ context.Context, email string) (*models.Student, error) {
	for _, s := range t.st.students {
		if s.Email == email {
			found := s
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t memoryTables) InsertStudent(_ context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = t.nextID()
	}
	student.CreatedAt = t.now().UTC()
	t.st.students = append(t.st.students, *student)
	return nil
}

func (t memoryTables) RecordStudentEnrollment(_ context.Context, email string, at time.Time) error {
	for i := range t.st.students {
		if t.st.students[i].Email == email {
			activity := at
			t.st.students[i].TotalCourses++
			t.st.students[i].LastActivity = &activity
		}
	}
	return nil
}

func (t memoryTables) IncrementStudentCompleted(_ context.Context, email string) (bool, error) {
	matched := false
	for i := range t.st.students {
		if t.st.students[i].Email == email {
			t.st.students[i].CompletedCourses++
			matched = true
		}
	}
	return matched, nil
}
