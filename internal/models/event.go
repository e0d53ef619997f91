package models

import "time"

// ChangeType names a committed coordinator change.
type ChangeType string

// Change types emitted by the coordinator.
const (
	ChangeRefreshed         ChangeType = "refreshed"
	ChangeEnrollmentAdded   ChangeType = "enrollment.added"
	ChangeEnrollmentUpdated ChangeType = "enrollment.updated"
	ChangeEnrollmentDropped ChangeType = "enrollment.dropped"
)

// ChangeEvent describes a committed change to the shared collections.
type ChangeEvent struct {
	Type         ChangeType `json:"type"`
	EnrollmentID string     `json:"enrollment_id,omitempty"`
	CourseID     string     `json:"course_id,omitempty"`
	StudentEmail string     `json:"student_email,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
