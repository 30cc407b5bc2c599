package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuskit/timetable-api/internal/models"
	appErrors "github.com/campuskit/timetable-api/pkg/errors"
)

type coordinatedCourseReader interface {
	ListIDsByCoordinator(ctx context.Context, facultyID string) ([]string, error)
}

type taughtCourseReader interface {
	ListCourseIDsByFaculty(ctx context.Context, facultyID string) ([]string, error)
}

type activeEnrollmentReader interface {
	ListActiveCourseIDsByStudent(ctx context.Context, studentID string) ([]string, error)
}

// VisibilityService computes the set of course ids a caller may query
// schedules for. Administrators are unrestricted; faculty see the courses
// they coordinate or teach a subject in; students see only courses with an
// ACTIVE enrollment.
type VisibilityService struct {
	courses     coordinatedCourseReader
	subjects    taughtCourseReader
	enrollments activeEnrollmentReader
	logger      *zap.Logger
}

// NewVisibilityService instantiates VisibilityService.
func NewVisibilityService(courses coordinatedCourseReader, subjects taughtCourseReader, enrollments activeEnrollmentReader, logger *zap.Logger) *VisibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisibilityService{courses: courses, subjects: subjects, enrollments: enrollments, logger: logger}
}

// CourseScopeFor resolves the visibility scope of the caller. An empty scope
// is a valid result and means the caller sees no schedules at all; it is not
// an error. Unknown roles get the empty scope.
func (s *VisibilityService) CourseScopeFor(ctx context.Context, identity models.Identity) (models.CourseScope, error) {
	switch identity.Role {
	case models.RoleAdmin:
		return models.UnrestrictedScope(), nil
	case models.RoleFaculty:
		coordinated, err := s.courses.ListIDsByCoordinator(ctx, identity.UserID)
		if err != nil {
			return models.CourseScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve coordinated courses")
		}
		taught, err := s.subjects.ListCourseIDsByFaculty(ctx, identity.UserID)
		if err != nil {
			return models.CourseScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve taught courses")
		}
		return models.ScopeOf(append(coordinated, taught...)...), nil
	case models.RoleStudent:
		enrolled, err := s.enrollments.ListActiveCourseIDsByStudent(ctx, identity.UserID)
		if err != nil {
			return models.CourseScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrolled courses")
		}
		return models.ScopeOf(enrolled...), nil
	default:
		s.logger.Warn("unknown role requesting timetable scope", zap.String("role", string(identity.Role)))
		return models.ScopeOf(), nil
	}
}
