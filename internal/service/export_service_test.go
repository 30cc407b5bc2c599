package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/timetable-api/internal/models"
	appErrors "github.com/campuskit/timetable-api/pkg/errors"
)

type fakeTimetableLister struct {
	pages [][]models.ScheduleDetail
	total int
	calls int
}

func (f *fakeTimetableLister) List(ctx context.Context, identity models.Identity, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error) {
	f.calls++
	idx := filter.Page - 1
	var items []models.ScheduleDetail
	if idx >= 0 && idx < len(f.pages) {
		items = f.pages[idx]
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: f.total}, nil
}

func sampleDetail(id string) models.ScheduleDetail {
	return models.ScheduleDetail{
		ScheduleEntry: models.ScheduleEntry{ID: id, DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "10:00"},
		CourseName:    "Informatics",
		SubjectName:   "Databases",
		RoomName:      "Lab A",
		FacultyName:   "Dr. Ada",
	}
}

func TestTimetableExportCSV(t *testing.T) {
	lister := &fakeTimetableLister{pages: [][]models.ScheduleDetail{{sampleDetail("s1")}}, total: 1}
	svc := NewTimetableExportService(lister, "Weekly Timetable", nil)

	result, err := svc.Export(context.Background(), models.Identity{Role: models.RoleAdmin}, models.ScheduleFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "timetable.csv", result.Filename)

	content := string(result.Content)
	assert.True(t, strings.HasPrefix(content, "Day,Start,End,Course,Subject,Room,Faculty"))
	assert.Contains(t, content, "MONDAY,09:00,10:00,Informatics,Databases,Lab A,Dr. Ada")
}

func TestTimetableExportPDF(t *testing.T) {
	lister := &fakeTimetableLister{pages: [][]models.ScheduleDetail{{sampleDetail("s1")}}, total: 1}
	svc := NewTimetableExportService(lister, "Weekly Timetable", nil)

	result, err := svc.Export(context.Background(), models.Identity{Role: models.RoleAdmin}, models.ScheduleFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Content)
}

func TestTimetableExportPaginatesThroughAllPages(t *testing.T) {
	first := make([]models.ScheduleDetail, exportPageSize)
	for i := range first {
		first[i] = sampleDetail("s")
	}
	lister := &fakeTimetableLister{
		pages: [][]models.ScheduleDetail{first, {sampleDetail("last")}},
		total: exportPageSize + 1,
	}
	svc := NewTimetableExportService(lister, "Weekly Timetable", nil)

	result, err := svc.Export(context.Background(), models.Identity{Role: models.RoleAdmin}, models.ScheduleFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
	// Header line plus one row per entry.
	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	assert.Len(t, lines, exportPageSize+2)
}

func TestTimetableExportUnsupportedFormat(t *testing.T) {
	svc := NewTimetableExportService(&fakeTimetableLister{}, "Weekly Timetable", nil)

	_, err := svc.Export(context.Background(), models.Identity{Role: models.RoleAdmin}, models.ScheduleFilter{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
