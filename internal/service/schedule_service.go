package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campuskit/timetable-api/internal/models"
	appErrors "github.com/campuskit/timetable-api/pkg/errors"
)

// Display fallbacks applied when a name cannot be resolved.
const (
	UnassignedFacultyLabel = "Unassigned"
	NoRoomLabel            = "No room"
)

const timetableCachePrefix = "timetable"

type scheduleRepository interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	List(ctx context.Context, scope models.CourseScope, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ScheduleEntry, error)
	FindDetailByID(ctx context.Context, id string) (*models.ScheduleDetail, error)
	ListSlotsByDay(ctx context.Context, exec sqlx.ExtContext, dayOfWeek string) ([]models.ScheduleSlot, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	Update(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type courseReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Course, error)
}

type subjectStore interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Subject, error)
	UpdateFaculty(ctx context.Context, exec sqlx.ExtContext, subjectID, facultyID string) error
}

type roomReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Room, error)
}

type scopeResolver interface {
	CourseScopeFor(ctx context.Context, identity models.Identity) (models.CourseScope, error)
}

type conflictRecorder interface {
	RecordConflict(dimension string)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleMutationRequest is the payload for creating or replacing an entry.
// FacultyID is optional; when supplied it reassigns the subject's faculty as a
// documented side effect. Callers that only want to move a slot must omit it.
type ScheduleMutationRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	FacultyID string `json:"faculty_id,omitempty"`
	RoomID    string `json:"room_id,omitempty"`
	DayOfWeek string `json:"day_of_week" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// ScheduleService owns the timetable mutation protocol and role-scoped reads.
type ScheduleService struct {
	repo      scheduleRepository
	courses   courseReader
	subjects  subjectStore
	rooms     roomReader
	scopes    scopeResolver
	cache     timetableCache
	cacheTTL  time.Duration
	metrics   conflictRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService. cache may be nil to disable
// read caching.
func NewScheduleService(repo scheduleRepository, courses courseReader, subjects subjectStore, rooms roomReader, scopes scopeResolver, cache timetableCache, cacheTTL time.Duration, metrics conflictRecorder, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:      repo,
		courses:   courses,
		subjects:  subjects,
		rooms:     rooms,
		scopes:    scopes,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Create validates, conflict-checks and persists a new schedule entry inside
// one serializable transaction, performing the subject faculty reassignment
// when an explicit faculty id was supplied.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleMutationRequest) (*models.ScheduleMutationResult, error) {
	normalized, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	entry := &models.ScheduleEntry{
		CourseID:  normalized.CourseID,
		SubjectID: normalized.SubjectID,
		RoomID:    normalized.roomID(),
		DayOfWeek: normalized.DayOfWeek,
		StartTime: normalized.StartTime,
		EndTime:   normalized.EndTime,
	}

	var change *models.FacultyChange
	err = s.repo.RunInTx(ctx, func(tx *sqlx.Tx) error {
		var txErr error
		change, txErr = s.applyMutation(ctx, tx, normalized, entry, "")
		if txErr != nil {
			return txErr
		}
		return s.repo.Insert(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.mutationResult(ctx, entry.ID, change)
}

// Update replaces an existing entry. The entry itself is excluded from the
// conflict comparison set so an unchanged or shifted slot never collides with
// its own previous booking.
func (s *ScheduleService) Update(ctx context.Context, id string, req ScheduleMutationRequest) (*models.ScheduleMutationResult, error) {
	normalized, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	var entry *models.ScheduleEntry
	var change *models.FacultyChange
	err = s.repo.RunInTx(ctx, func(tx *sqlx.Tx) error {
		existing, txErr := s.repo.FindByID(ctx, tx, id)
		if txErr != nil {
			if txErr == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
			}
			return appErrors.Wrap(txErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
		}

		entry = &models.ScheduleEntry{
			ID:        existing.ID,
			CourseID:  normalized.CourseID,
			SubjectID: normalized.SubjectID,
			RoomID:    normalized.roomID(),
			DayOfWeek: normalized.DayOfWeek,
			StartTime: normalized.StartTime,
			EndTime:   normalized.EndTime,
			CreatedAt: existing.CreatedAt,
		}

		change, txErr = s.applyMutation(ctx, tx, normalized, entry, existing.ID)
		if txErr != nil {
			return txErr
		}
		return s.repo.Update(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.mutationResult(ctx, entry.ID, change)
}

// Delete removes a schedule entry. Subjects and rooms are never cascaded.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	err := s.repo.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if _, txErr := s.repo.FindByID(ctx, tx, id); txErr != nil {
			if txErr == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
			}
			return appErrors.Wrap(txErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateCache(ctx)
	return nil
}

// Get returns a single shaped entry, enforcing the caller's visibility scope.
func (s *ScheduleService) Get(ctx context.Context, identity models.Identity, id string) (*models.ScheduleDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	scope, err := s.scopes.CourseScopeFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(detail.CourseID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "schedule outside caller visibility")
	}

	shapeDetail(detail)
	return detail, nil
}

// List answers "what does this caller see". The caller's visibility scope is
// always intersected with any row filters supplied; a course filter outside
// the scope yields an empty result rather than widening the view.
func (s *ScheduleService) List(ctx context.Context, identity models.Identity, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error) {
	scope, err := s.scopes.CourseScopeFor(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	filter.Page = page
	filter.PageSize = size

	if scope.Empty() || (filter.CourseID != "" && !scope.Contains(filter.CourseID)) {
		return []models.ScheduleDetail{}, &models.Pagination{Page: page, PageSize: size, TotalCount: 0}, nil
	}

	key := s.cacheKey(identity, filter)
	if s.cache != nil {
		var cached cachedTimetable
		if cacheErr := s.cache.Get(ctx, key, &cached); cacheErr == nil {
			return cached.Items, &models.Pagination{Page: page, PageSize: size, TotalCount: cached.Total}, nil
		}
	}

	details, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	if details == nil {
		details = []models.ScheduleDetail{}
	}
	for i := range details {
		shapeDetail(&details[i])
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, key, cachedTimetable{Items: details, Total: total}, s.cacheTTL); cacheErr != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(cacheErr))
		}
	}

	return details, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

type cachedTimetable struct {
	Items []models.ScheduleDetail `json:"items"`
	Total int                     `json:"total"`
}

// normalizedMutation is a mutation request after field validation with the
// day literal upper-cased.
type normalizedMutation struct {
	ScheduleMutationRequest
}

func (n normalizedMutation) roomID() *string {
	if n.RoomID == "" {
		return nil
	}
	id := n.RoomID
	return &id
}

func (s *ScheduleService) normalize(req ScheduleMutationRequest) (normalizedMutation, error) {
	if err := s.validator.Struct(req); err != nil {
		return normalizedMutation{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	req.DayOfWeek = strings.ToUpper(req.DayOfWeek)
	if !models.IsWeekday(req.DayOfWeek) {
		return normalizedMutation{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day of week %q", req.DayOfWeek))
	}
	if !ValidClockTime(req.StartTime) || !ValidClockTime(req.EndTime) {
		return normalizedMutation{}, appErrors.Clone(appErrors.ErrValidation, "times must be zero-padded 24-hour HH:MM")
	}
	if req.StartTime >= req.EndTime {
		return normalizedMutation{}, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	return normalizedMutation{ScheduleMutationRequest: req}, nil
}

// applyMutation runs the shared create/update body inside the transaction:
// referential validation, conflict detection and the conditional subject
// faculty reassignment. The entry write itself is left to the caller.
func (s *ScheduleService) applyMutation(ctx context.Context, tx *sqlx.Tx, req normalizedMutation, entry *models.ScheduleEntry, excludeID string) (*models.FacultyChange, error) {
	course, err := s.courses.FindByID(ctx, tx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	subject, err := s.subjects.FindByID(ctx, tx, req.SubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject.CourseID != course.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject does not belong to the given course")
	}

	if roomID := entry.RoomID; roomID != nil {
		if _, err := s.rooms.FindByID(ctx, tx, *roomID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
		}
	}

	candidate := BookingCandidate{
		DayOfWeek: entry.DayOfWeek,
		StartTime: entry.StartTime,
		EndTime:   entry.EndTime,
		RoomID:    entry.RoomID,
		FacultyID: resolveCandidateFaculty(req.FacultyID, subject, course),
	}

	slots, err := s.repo.ListSlotsByDay(ctx, tx, entry.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}
	if conflict := DetectConflict(candidate, slots, excludeID); conflict != nil {
		return nil, s.wrapConflict(conflict)
	}

	var change *models.FacultyChange
	if req.FacultyID != "" && (subject.FacultyID == nil || *subject.FacultyID != req.FacultyID) {
		if err := s.subjects.UpdateFaculty(ctx, tx, subject.ID, req.FacultyID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign subject faculty")
		}
		change = &models.FacultyChange{
			SubjectID:    subject.ID,
			OldFacultyID: subject.FacultyID,
			NewFacultyID: req.FacultyID,
		}
	}

	return change, nil
}

// resolveCandidateFaculty picks the faculty the booking will occupy after the
// mutation commits: the explicit reassignment when supplied, otherwise the
// subject's faculty, otherwise the course coordinator.
func resolveCandidateFaculty(explicit string, subject *models.Subject, course *models.Course) *string {
	if explicit != "" {
		return &explicit
	}
	if subject.FacultyID != nil {
		return subject.FacultyID
	}
	return course.FacultyID
}

func (s *ScheduleService) wrapConflict(conflict *models.ScheduleConflict) error {
	if s.metrics != nil {
		s.metrics.RecordConflict(conflict.Dimension)
	}
	message := "room already booked for this slot"
	if conflict.Dimension == models.ConflictFaculty {
		message = "faculty already scheduled for this slot"
	}
	domainErr := &models.ScheduleConflictError{Type: conflict.Dimension, Message: message, Conflict: *conflict}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("schedule conflict: %s", message))
}

func (s *ScheduleService) mutationResult(ctx context.Context, id string, change *models.FacultyChange) (*models.ScheduleMutationResult, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload schedule")
	}
	shapeDetail(detail)

	s.invalidateCache(ctx)

	return &models.ScheduleMutationResult{Schedule: detail, FacultyChange: change}, nil
}

func (s *ScheduleService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, timetableCachePrefix+":*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}

func (s *ScheduleService) cacheKey(identity models.Identity, filter models.ScheduleFilter) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s:%d:%d:%s:%s",
		timetableCachePrefix, identity.UserID, identity.Role,
		filter.CourseID, filter.DayOfWeek, filter.RoomID, filter.FacultyID,
		filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}

// shapeDetail applies presentation fallbacks: a best-effort faculty display
// name and a room label when no room is assigned.
func shapeDetail(detail *models.ScheduleDetail) {
	if detail.FacultyName == "" {
		detail.FacultyName = UnassignedFacultyLabel
	}
	if detail.RoomName == "" {
		detail.RoomName = NoRoomLabel
	}
}
