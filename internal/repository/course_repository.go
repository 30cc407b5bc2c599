package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/timetable-api/internal/models"
)

// CourseRepository provides read access to the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Course, error) {
	const query = `SELECT id, code, name, faculty_id, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := sqlx.GetContext(ctx, r.exec(exec), &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListIDsByCoordinator returns ids of courses coordinated by the faculty member.
func (r *CourseRepository) ListIDsByCoordinator(ctx context.Context, facultyID string) ([]string, error) {
	const query = `SELECT id FROM courses WHERE faculty_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, facultyID); err != nil {
		return nil, fmt.Errorf("list coordinated courses: %w", err)
	}
	return ids, nil
}
