package models

import "time"

// Course represents a course offering. FacultyID is the optional coordinator
// used as the fallback when a subject has no assigned faculty.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	FacultyID *string   `db:"faculty_id" json:"faculty_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
