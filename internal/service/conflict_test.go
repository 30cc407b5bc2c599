package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/timetable-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidClockTime(t *testing.T) {
	valid := []string{"00:00", "09:00", "13:45", "23:59"}
	for _, v := range valid {
		assert.True(t, ValidClockTime(v), v)
	}
	invalid := []string{"9:00", "24:00", "12:60", "12:5", "12-30", "noon", "", "09:00:00"}
	for _, v := range invalid {
		assert.False(t, ValidClockTime(v), v)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Touching intervals share a boundary but not a minute.
	assert.False(t, Overlaps("09:00", "10:00", "10:00", "11:00"))
	assert.False(t, Overlaps("10:00", "11:00", "09:00", "10:00"))

	assert.True(t, Overlaps("09:00", "10:00", "09:30", "10:30"))
	assert.True(t, Overlaps("09:30", "10:30", "09:00", "10:00"))
	assert.True(t, Overlaps("09:00", "12:00", "10:00", "11:00"))
	assert.True(t, Overlaps("10:00", "11:00", "09:00", "12:00"))
	assert.False(t, Overlaps("08:00", "09:00", "10:00", "11:00"))
}

func TestDetectConflictRoom(t *testing.T) {
	existing := []models.ScheduleSlot{
		{ID: "s1", CourseID: "c1", SubjectID: "sub1", DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomID: strPtr("room-a"), FacultyID: strPtr("fac-1")},
	}
	candidate := BookingCandidate{
		DayOfWeek: models.DayMonday,
		StartTime: "09:30",
		EndTime:   "10:30",
		RoomID:    strPtr("room-a"),
		FacultyID: strPtr("fac-2"),
	}

	conflict := DetectConflict(candidate, existing, "")
	require.NotNil(t, conflict)
	assert.Equal(t, models.ConflictRoom, conflict.Dimension)
	assert.Equal(t, "s1", conflict.ScheduleID)
}

func TestDetectConflictFaculty(t *testing.T) {
	existing := []models.ScheduleSlot{
		{ID: "s1", DayOfWeek: models.DayTuesday, StartTime: "13:00", EndTime: "14:00", RoomID: strPtr("room-a"), FacultyID: strPtr("fac-1")},
	}
	candidate := BookingCandidate{
		DayOfWeek: models.DayTuesday,
		StartTime: "13:30",
		EndTime:   "15:00",
		RoomID:    strPtr("room-b"),
		FacultyID: strPtr("fac-1"),
	}

	conflict := DetectConflict(candidate, existing, "")
	require.NotNil(t, conflict)
	assert.Equal(t, models.ConflictFaculty, conflict.Dimension)
}

func TestDetectConflictRoomReportedBeforeFaculty(t *testing.T) {
	// Same slot collides on both dimensions; room wins.
	existing := []models.ScheduleSlot{
		{ID: "s1", DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomID: strPtr("room-a"), FacultyID: strPtr("fac-1")},
	}
	candidate := BookingCandidate{
		DayOfWeek: models.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomID:    strPtr("room-a"),
		FacultyID: strPtr("fac-1"),
	}

	conflict := DetectConflict(candidate, existing, "")
	require.NotNil(t, conflict)
	assert.Equal(t, models.ConflictRoom, conflict.Dimension)
}

func TestDetectConflictSelfExcluded(t *testing.T) {
	existing := []models.ScheduleSlot{
		{ID: "s1", DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomID: strPtr("room-a"), FacultyID: strPtr("fac-1")},
	}
	candidate := BookingCandidate{
		DayOfWeek: models.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomID:    strPtr("room-a"),
		FacultyID: strPtr("fac-1"),
	}

	assert.Nil(t, DetectConflict(candidate, existing, "s1"))
}

func TestDetectConflictIgnoresOtherDimensions(t *testing.T) {
	existing := []models.ScheduleSlot{
		// Different day entirely.
		{ID: "s1", DayOfWeek: models.DayFriday, StartTime: "09:00", EndTime: "10:00", RoomID: strPtr("room-a"), FacultyID: strPtr("fac-1")},
		// Same day and time, but different room and faculty.
		{ID: "s2", DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomID: strPtr("room-b"), FacultyID: strPtr("fac-2")},
		// Same room, adjacent slot.
		{ID: "s3", DayOfWeek: models.DayMonday, StartTime: "10:00", EndTime: "11:00", RoomID: strPtr("room-a"), FacultyID: strPtr("fac-1")},
	}
	candidate := BookingCandidate{
		DayOfWeek: models.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomID:    strPtr("room-a"),
		FacultyID: strPtr("fac-1"),
	}

	assert.Nil(t, DetectConflict(candidate, existing, ""))
}

func TestDetectConflictNilDimensionsNeverMatch(t *testing.T) {
	existing := []models.ScheduleSlot{
		{ID: "s1", DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "10:00", RoomID: nil, FacultyID: nil},
	}
	candidate := BookingCandidate{
		DayOfWeek: models.DayMonday,
		StartTime: "09:00",
		EndTime:   "10:00",
		RoomID:    nil,
		FacultyID: nil,
	}

	assert.Nil(t, DetectConflict(candidate, existing, ""))
}
