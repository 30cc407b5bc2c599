package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/timetable-api/internal/models"
)

// SubjectRepository provides subject lookups and the faculty reassignment
// write performed as a side effect of schedule mutations.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Subject, error) {
	const query = `SELECT id, course_id, code, name, faculty_id, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := sqlx.GetContext(ctx, r.exec(exec), &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// UpdateFaculty reassigns the subject's faculty member.
func (r *SubjectRepository) UpdateFaculty(ctx context.Context, exec sqlx.ExtContext, subjectID, facultyID string) error {
	const query = `UPDATE subjects SET faculty_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, subjectID, facultyID); err != nil {
		return fmt.Errorf("update subject faculty: %w", err)
	}
	return nil
}

// ListCourseIDsByFaculty returns distinct course ids of subjects taught by the
// faculty member.
func (r *SubjectRepository) ListCourseIDsByFaculty(ctx context.Context, facultyID string) ([]string, error) {
	const query = `SELECT DISTINCT course_id FROM subjects WHERE faculty_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, facultyID); err != nil {
		return nil, fmt.Errorf("list taught courses: %w", err)
	}
	return ids, nil
}
