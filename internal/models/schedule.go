package models

import "time"

// Days of the week accepted on schedule entries. Cross-day meetings are not supported.
const (
	DayMonday    = "MONDAY"
	DayTuesday   = "TUESDAY"
	DayWednesday = "WEDNESDAY"
	DayThursday  = "THURSDAY"
	DayFriday    = "FRIDAY"
	DaySaturday  = "SATURDAY"
	DaySunday    = "SUNDAY"
)

// Weekdays lists the valid day_of_week literals in calendar order.
var Weekdays = []string{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday}

// IsWeekday reports whether day is one of the seven accepted literals.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ScheduleEntry is a recurring weekly class meeting. Faculty is not stored on
// the entry; it is resolved through the subject's assignment, falling back to
// the course coordinator.
type ScheduleEntry struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	RoomID    *string   `db:"room_id" json:"room_id,omitempty"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleDetail enriches an entry with display names for presentation.
type ScheduleDetail struct {
	ScheduleEntry
	CourseName  string  `db:"course_name" json:"course_name"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	RoomName    string  `db:"room_name" json:"room_name"`
	FacultyID   *string `db:"faculty_id" json:"faculty_id,omitempty"`
	FacultyName string  `db:"faculty_name" json:"faculty_name"`
}

// ScheduleSlot is the projection used for conflict detection: the entry's
// booking dimensions plus its resolved faculty.
type ScheduleSlot struct {
	ID        string  `db:"id"`
	CourseID  string  `db:"course_id"`
	SubjectID string  `db:"subject_id"`
	DayOfWeek string  `db:"day_of_week"`
	StartTime string  `db:"start_time"`
	EndTime   string  `db:"end_time"`
	RoomID    *string `db:"room_id"`
	FacultyID *string `db:"faculty_id"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	CourseID  string
	DayOfWeek string
	RoomID    string
	FacultyID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Conflict dimensions reported to callers.
const (
	ConflictRoom    = "ROOM"
	ConflictFaculty = "FACULTY"
)

// ScheduleConflict describes an existing entry that blocks a booking.
type ScheduleConflict struct {
	ScheduleID string  `json:"schedule_id"`
	CourseID   string  `json:"course_id"`
	SubjectID  string  `json:"subject_id"`
	RoomID     *string `json:"room_id,omitempty"`
	FacultyID  *string `json:"faculty_id,omitempty"`
	DayOfWeek  string  `json:"day_of_week"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Dimension  string  `json:"dimension"`
}

// ScheduleConflictError is returned when a booking collides with an existing one.
type ScheduleConflictError struct {
	Type     string           `json:"type"`
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// FacultyChange reports the subject faculty reassignment performed as a side
// effect of a schedule mutation, so callers can observe it explicitly.
type FacultyChange struct {
	SubjectID    string  `json:"subject_id"`
	OldFacultyID *string `json:"old_faculty_id,omitempty"`
	NewFacultyID string  `json:"new_faculty_id"`
}

// ScheduleMutationResult bundles the persisted entry with the optional
// cross-entity side effect.
type ScheduleMutationResult struct {
	Schedule      *ScheduleDetail `json:"schedule"`
	FacultyChange *FacultyChange  `json:"faculty_change,omitempty"`
}

// CourseScope is the set of course ids a caller may query. All trumps IDs.
type CourseScope struct {
	All       bool
	CourseIDs []string
}

// UnrestrictedScope grants visibility over every course.
func UnrestrictedScope() CourseScope {
	return CourseScope{All: true}
}

// ScopeOf builds an explicit scope from course ids, de-duplicating as it goes.
func ScopeOf(courseIDs ...string) CourseScope {
	seen := make(map[string]struct{}, len(courseIDs))
	ids := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return CourseScope{CourseIDs: ids}
}

// Empty reports whether the scope permits no courses at all.
func (s CourseScope) Empty() bool {
	return !s.All && len(s.CourseIDs) == 0
}

// Contains reports whether the scope covers the given course.
func (s CourseScope) Contains(courseID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}
