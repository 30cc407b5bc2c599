package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuskit/timetable-api/internal/models"
)

const scheduleDetailColumns = `se.id, se.course_id, se.subject_id, se.room_id, se.day_of_week, se.start_time, se.end_time, se.created_at, se.updated_at,
       c.name AS course_name,
       s.name AS subject_name,
       COALESCE(r.name, '') AS room_name,
       COALESCE(s.faculty_id, c.faculty_id) AS faculty_id,
       COALESCE(u.full_name, '') AS faculty_name`

const scheduleDetailJoins = `FROM schedule_entries se
JOIN courses c ON c.id = se.course_id
JOIN subjects s ON s.id = se.subject_id
LEFT JOIN rooms r ON r.id = se.room_id
LEFT JOIN users u ON u.id = COALESCE(s.faculty_id, c.faculty_id)`

// ScheduleRepository provides persistence for schedule entries. Mutation
// methods accept an sqlx.ExtContext so they compose inside a single
// transaction opened via RunInTx.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// RunInTx executes fn inside a serializable transaction. Conflict checks are
// check-then-act, so anything weaker would let two concurrent writers both
// pass the check and commit overlapping entries.
func (r *ScheduleRepository) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule tx: %w", err)
	}
	return nil
}

// List returns schedule details restricted to the given course scope with
// optional row filters and pagination.
func (r *ScheduleRepository) List(ctx context.Context, scope models.CourseScope, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error) {
	base := scheduleDetailJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if !scope.All {
		conditions = append(conditions, fmt.Sprintf("se.course_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(scope.CourseIDs))
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("se.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("se.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("se.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("COALESCE(s.faculty_id, c.faculty_id) = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"day_of_week": "se.day_of_week",
		"start_time":  "se.start_time",
		"course_name": "c.name",
		"created_at":  "se.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "se.day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, se.start_time ASC LIMIT %d OFFSET %d",
		scheduleDetailColumns, base, orderBy, order, size, offset)
	var details []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return details, total, nil
}

// FindByID loads a bare schedule entry by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ScheduleEntry, error) {
	const query = `SELECT id, course_id, subject_id, room_id, day_of_week, start_time, end_time, created_at, updated_at FROM schedule_entries WHERE id = $1`
	var entry models.ScheduleEntry
	if err := sqlx.GetContext(ctx, r.exec(exec), &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindDetailByID loads a schedule entry with resolved display names.
func (r *ScheduleRepository) FindDetailByID(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE se.id = $1", scheduleDetailColumns, scheduleDetailJoins)
	var detail models.ScheduleDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListSlotsByDay returns the booking slots committed for a day with the
// faculty resolved through the subject, falling back to the course
// coordinator. This is the comparison set for conflict detection.
func (r *ScheduleRepository) ListSlotsByDay(ctx context.Context, exec sqlx.ExtContext, dayOfWeek string) ([]models.ScheduleSlot, error) {
	const query = `SELECT se.id, se.course_id, se.subject_id, se.day_of_week, se.start_time, se.end_time, se.room_id,
       COALESCE(s.faculty_id, c.faculty_id) AS faculty_id
FROM schedule_entries se
JOIN courses c ON c.id = se.course_id
JOIN subjects s ON s.id = se.subject_id
WHERE se.day_of_week = $1`
	var slots []models.ScheduleSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &slots, query, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}

// Insert stores a new schedule entry.
func (r *ScheduleRepository) Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO schedule_entries (id, course_id, subject_id, room_id, day_of_week, start_time, end_time, created_at, updated_at)
VALUES (:id, :course_id, :subject_id, :room_id, :day_of_week, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("insert schedule entry: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing entry.
func (r *ScheduleRepository) Update(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET course_id = :course_id, subject_id = :subject_id, room_id = :room_id,
day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return nil
}

// Delete removes a schedule entry by id. No other entity is touched.
func (r *ScheduleRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return nil
}
