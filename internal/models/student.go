package models

import "time"

// Student is keyed by email: one record per distinct enrollment email.
type Student struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	TotalCourses     int        `db:"total_courses" json:"total_courses"`
	CompletedCourses int        `db:"completed_courses" json:"completed_courses"`
	MemberSince      time.Time  `db:"member_since" json:"member_since"`
	LastActivity     *time.Time `db:"last_activity" json:"last_activity,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
