package models

import (
	"time"

	"github.com/lib/pq"
)

// CourseLevel grades the difficulty of a course.
type CourseLevel string

// Supported course levels.
const (
	CourseLevelBeginner     CourseLevel = "Beginner"
	CourseLevelIntermediate CourseLevel = "Intermediate"
	CourseLevelAdvanced     CourseLevel = "Advanced"
)

// Course is a training programme offered by the institute. EnrolledStudents is
// only ever incremented by new enrollments; it may exceed MaxStudents.
type Course struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Description      string         `db:"description" json:"description"`
	Duration         int            `db:"duration" json:"duration"`
	Price            float64        `db:"price" json:"price"`
	Image            string         `db:"image" json:"image"`
	Features         pq.StringArray `db:"features" json:"features"`
	Level            CourseLevel    `db:"level" json:"level"`
	Instructor       string         `db:"instructor" json:"instructor"`
	Category         string         `db:"category" json:"category"`
	StartDate        time.Time      `db:"start_date" json:"start_date"`
	MaxStudents      int            `db:"max_students" json:"max_students"`
	EnrolledStudents int            `db:"enrolled_students" json:"enrolled_students"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// SeatsLeft returns the remaining capacity, never negative.
func (c Course) SeatsLeft() int {
	if left := c.MaxStudents - c.EnrolledStudents; left > 0 {
		return left
	}
	return 0
}
