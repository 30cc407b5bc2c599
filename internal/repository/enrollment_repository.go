package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/timetable-api/internal/models"
)

// EnrollmentRepository provides read access to student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListActiveCourseIDsByStudent returns course ids the student is actively
// enrolled in. Dropped and completed enrollments grant no visibility.
func (r *EnrollmentRepository) ListActiveCourseIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT DISTINCT course_id FROM enrollments WHERE student_id = $1 AND status = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return ids, nil
}
