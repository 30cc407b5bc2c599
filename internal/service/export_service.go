package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campuskit/timetable-api/internal/models"
	appErrors "github.com/campuskit/timetable-api/pkg/errors"
	"github.com/campuskit/timetable-api/pkg/export"
)

// Export formats supported for timetable downloads.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

const exportPageSize = 100

type timetableLister interface {
	List(ctx context.Context, identity models.Identity, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error)
}

// ExportResult carries rendered bytes plus transport metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// TimetableExportService renders a caller's visible timetable as CSV or PDF.
// Visibility scoping is inherited from the schedule listing it wraps.
type TimetableExportService struct {
	schedules timetableLister
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	title     string
	logger    *zap.Logger
}

// NewTimetableExportService instantiates TimetableExportService.
func NewTimetableExportService(schedules timetableLister, title string, logger *zap.Logger) *TimetableExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableExportService{
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		title:     title,
		logger:    logger,
	}
}

// Export renders the caller's timetable in the requested format.
func (s *TimetableExportService) Export(ctx context.Context, identity models.Identity, filter models.ScheduleFilter, format string) (*ExportResult, error) {
	format = strings.ToLower(format)
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	dataset, err := s.collect(ctx, identity, filter)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(*dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "timetable.csv"}, nil
	default:
		content, err := s.pdf.Render(*dataset, s.title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "timetable.pdf"}, nil
	}
}

func (s *TimetableExportService) collect(ctx context.Context, identity models.Identity, filter models.ScheduleFilter) (*export.Dataset, error) {
	headers := []string{"Day", "Start", "End", "Course", "Subject", "Room", "Faculty"}
	dataset := &export.Dataset{Headers: headers}

	filter.PageSize = exportPageSize
	filter.SortBy = "day_of_week"
	for page := 1; ; page++ {
		filter.Page = page
		details, pagination, err := s.schedules.List(ctx, identity, filter)
		if err != nil {
			return nil, err
		}
		for _, detail := range details {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Day":     detail.DayOfWeek,
				"Start":   detail.StartTime,
				"End":     detail.EndTime,
				"Course":  detail.CourseName,
				"Subject": detail.SubjectName,
				"Room":    detail.RoomName,
				"Faculty": detail.FacultyName,
			})
		}
		if pagination == nil || page*exportPageSize >= pagination.TotalCount {
			break
		}
	}

	return dataset, nil
}
