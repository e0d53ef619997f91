package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment. Any status may
// follow any other; dropped is a soft delete.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusEnrolled, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return true
	}
	return false
}

// Active reports whether the enrollment still occupies the student.
func (s EnrollmentStatus) Active() bool {
	return s == EnrollmentStatusEnrolled || s == EnrollmentStatusPending
}

// Billable reports whether the enrollment counts towards revenue.
func (s EnrollmentStatus) Billable() bool {
	return s == EnrollmentStatusEnrolled || s == EnrollmentStatusCompleted
}

// Enrollment captures a student's registration against one course.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	CourseName     string           `db:"course_name" json:"course_name"`
	StudentName    string           `db:"student_name" json:"student_name"`
	StudentEmail   string           `db:"student_email" json:"student_email"`
	StudentPhone   string           `db:"student_phone" json:"student_phone"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	Price          float64          `db:"price" json:"price"`
	Progress       int              `db:"progress" json:"progress"`
	Notes          *string          `db:"notes" json:"notes,omitempty"`
	Experience     *string          `db:"experience" json:"experience,omitempty"`
	Goals          *string          `db:"goals" json:"goals,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// NewEnrollment is the enrollment payload before an id is assigned.
type NewEnrollment struct {
	CourseID       string
	CourseName     string
	StudentName    string
	StudentEmail   string
	StudentPhone   string
	EnrollmentDate time.Time
	Status         EnrollmentStatus
	Price          float64
	Progress       int
	Notes          *string
	Experience     *string
	Goals          *string
}

// Enrollment materialises the payload into a record without an id.
func (n NewEnrollment) Enrollment() Enrollment {
	return Enrollment{
		CourseID:       n.CourseID,
		CourseName:     n.CourseName,
		StudentName:    n.StudentName,
		StudentEmail:   n.StudentEmail,
		StudentPhone:   n.StudentPhone,
		EnrollmentDate: n.EnrollmentDate,
		Status:         n.Status,
		Price:          n.Price,
		Progress:       n.Progress,
		Notes:          n.Notes,
		Experience:     n.Experience,
		Goals:          n.Goals,
	}
}

// EnrollmentUpdate lists the fields an update may touch. Nil fields are left
// unchanged.
type EnrollmentUpdate struct {
	Status   *EnrollmentStatus
	Progress *int
	Notes    *string
}

// Empty reports whether no field is set.
func (u EnrollmentUpdate) Empty() bool {
	return u.Status == nil && u.Progress == nil && u.Notes == nil
}

// Apply copies the set fields onto e.
func (u EnrollmentUpdate) Apply(e *Enrollment) {
	if u.Status != nil {
		e.Status = *u.Status
	}
	if u.Progress != nil {
		e.Progress = *u.Progress
	}
	if u.Notes != nil {
		notes := *u.Notes
		e.Notes = &notes
	}
}

// Completes reports whether the update marks the enrollment completed.
func (u EnrollmentUpdate) Completes() bool {
	return u.Status != nil && *u.Status == EnrollmentStatusCompleted
}

// EnrollmentFilter narrows admin enrollment listings.
type EnrollmentFilter struct {
	Status       EnrollmentStatus
	StudentEmail string
	CourseID     string
}

// Match reports whether e satisfies every set criterion.
func (f EnrollmentFilter) Match(e Enrollment) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.StudentEmail != "" && e.StudentEmail != f.StudentEmail {
		return false
	}
	if f.CourseID != "" && e.CourseID != f.CourseID {
		return false
	}
	return true
}
