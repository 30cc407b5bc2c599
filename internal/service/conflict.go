package service

import (
	"regexp"

	"github.com/campuskit/timetable-api/internal/models"
)

// clockTimePattern accepts zero-padded 24-hour HH:MM only. Zero padding is what
// makes lexicographic comparison of times safe.
var clockTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClockTime reports whether raw is a well-formed HH:MM time of day.
func ValidClockTime(raw string) bool {
	return clockTimePattern.MatchString(raw)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) overlap.
// Entries that merely touch (e1 == s2) do not conflict.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// BookingCandidate is the proposed booking checked against committed entries.
// FacultyID must already be resolved (explicit assignment, subject faculty, or
// course coordinator fallback).
type BookingCandidate struct {
	DayOfWeek string
	StartTime string
	EndTime   string
	RoomID    *string
	FacultyID *string
}

// DetectConflict decides whether the candidate double-books a room or a
// faculty member against the committed slots of the same day. excludeID omits
// the entry being updated from its own comparison set. It returns the first
// blocking slot found, or nil when the candidate is bookable.
func DetectConflict(candidate BookingCandidate, existing []models.ScheduleSlot, excludeID string) *models.ScheduleConflict {
	for _, slot := range existing {
		if slot.ID == excludeID {
			continue
		}
		if slot.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if !Overlaps(candidate.StartTime, candidate.EndTime, slot.StartTime, slot.EndTime) {
			continue
		}
		if candidate.RoomID != nil && slot.RoomID != nil && *candidate.RoomID == *slot.RoomID {
			return conflictFrom(slot, models.ConflictRoom)
		}
		if candidate.FacultyID != nil && slot.FacultyID != nil && *candidate.FacultyID == *slot.FacultyID {
			return conflictFrom(slot, models.ConflictFaculty)
		}
	}
	return nil
}

func conflictFrom(slot models.ScheduleSlot, dimension string) *models.ScheduleConflict {
	return &models.ScheduleConflict{
		ScheduleID: slot.ID,
		CourseID:   slot.CourseID,
		SubjectID:  slot.SubjectID,
		RoomID:     slot.RoomID,
		FacultyID:  slot.FacultyID,
		DayOfWeek:  slot.DayOfWeek,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Dimension:  dimension,
	}
}
