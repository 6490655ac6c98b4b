package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/internal/query"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
)

func newEnrollmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func enrollmentRowFixture() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_nim", "student_name", "course_code", "course_name",
		"semester", "academic_year", "status", "created_at", "updated_at",
	}).AddRow(int64(7), "2110001", "Budi Santoso", "IF101", "Algoritma", 1, "2024/2025", "APPROVED", time.Now(), time.Now())
}

func TestEnrollmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT e.id, s.nim AS student_nim").
		WillReturnRows(enrollmentRowFixture())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments e`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.List(context.Background(), query.Parse(nil))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Budi Santoso", rows[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListPassesPredicateArgs(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	q := query.ListQuery{Page: 2, PageSize: 20, Status: "APPROVED", Semester: 1}

	mock.ExpectQuery("SELECT e.id, s.nim AS student_nim").
		WithArgs("APPROVED", 1).
		WillReturnRows(enrollmentRowFixture())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments e`).
		WithArgs("APPROVED", 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	rows, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 21, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListAllCapsRows(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("ORDER BY e.id DESC LIMIT 500").
		WillReturnRows(enrollmentRowFixture())

	rows, err := repo.ListAll(context.Background(), query.Parse(nil), 500)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateAtomicNewStudentAndCourse(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WithArgs("2110002", "Siti Aminah", "siti@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("IF202", "Struktur Data", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(22)))
	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs(int64(11), int64(22), "2024/2025", 1, models.EnrollmentStatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(33)))
	mock.ExpectCommit()

	id, err := repo.CreateAtomic(context.Background(), models.EnrollmentCreate{
		NewStudent:   &models.Student{NIM: "2110002", Name: "Siti Aminah", Email: "siti@example.com"},
		NewCourse:    &models.Course{Code: "IF202", Name: "Struktur Data", Credits: 3},
		AcademicYear: "2024/2025",
		Semester:     1,
		Status:       models.EnrollmentStatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(33), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateAtomicDuplicateTermRollsBack(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_enrollments_student_course_term"})
	mock.ExpectRollback()

	_, err := repo.CreateAtomic(context.Background(), models.EnrollmentCreate{
		StudentID:    1,
		CourseID:     2,
		AcademicYear: "2024/2025",
		Semester:     1,
		Status:       models.EnrollmentStatusDraft,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "student already enrolled in this course for the term", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsTerm(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM enrollments").
		WithArgs(int64(1), int64(2), "2024/2025", 1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsTerm(context.Background(), 1, 2, "2024/2025", 1, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM enrollments").
		WithArgs(int64(1), int64(2), "2024/2025", 1, int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsTerm(context.Background(), 1, 2, "2024/2025", 1, 9)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("UPDATE enrollments SET").
		WithArgs(int64(99), int64(2), "2024/2025", 1, models.EnrollmentStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 99, 2, "2024/2025", 1, models.EnrollmentStatusSubmitted)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("DELETE FROM enrollments").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 7))

	mock.ExpectExec("DELETE FROM enrollments").
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, errors.Is(repo.Delete(context.Background(), 8), sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
