package models

import "time"

// Subject represents a unit taught within a course. The course association is
// immutable: a schedule entry's subject must belong to the entry's course.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	FacultyID *string   `db:"faculty_id" json:"faculty_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
