package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubjectRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "code", "name", "faculty_id", "created_at", "updated_at"}).
		AddRow("subject-1", "course-1", "DB101", "Databases", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, code, name, faculty_id, created_at, updated_at FROM subjects WHERE id = $1")).
		WithArgs("subject-1").
		WillReturnRows(rows)

	subject, err := repo.FindByID(context.Background(), nil, "subject-1")
	require.NoError(t, err)
	assert.Equal(t, "course-1", subject.CourseID)
	assert.Nil(t, subject.FacultyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryUpdateFaculty(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET faculty_id = $2, updated_at = NOW() WHERE id = $1")).
		WithArgs("subject-1", "fac-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateFaculty(context.Background(), nil, "subject-1", "fac-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListCourseIDsByFaculty(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"course_id"}).AddRow("course-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT course_id FROM subjects WHERE faculty_id = $1")).
		WithArgs("fac-1").
		WillReturnRows(rows)

	ids, err := repo.ListCourseIDsByFaculty(context.Background(), "fac-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"course-1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
