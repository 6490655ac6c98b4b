package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/internal/query"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentListBase = `FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN courses c ON c.id = e.course_id`

const enrollmentRowColumns = `e.id, s.nim AS student_nim, s.name AS student_name,
        c.code AS course_code, c.name AS course_name,
        e.semester, e.academic_year, e.status, e.created_at, e.updated_at`

// List returns one page of the student/course/enrollment join for the given
// query, plus the total count over the same predicate.
func (r *EnrollmentRepository) List(ctx context.Context, q query.ListQuery) ([]models.EnrollmentRow, int, error) {
	where, args := query.BuildWhere(q)
	orderBy := query.BuildOrderBy(q)
	offset := (q.Page - 1) * q.PageSize

	listQuery := fmt.Sprintf("SELECT %s %s%s %s LIMIT %d OFFSET %d",
		enrollmentRowColumns, enrollmentListBase, where, orderBy, q.PageSize, offset)

	rows := []models.EnrollmentRow{}
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", enrollmentListBase, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return rows, total, nil
}

// ListAll returns the complete filtered and sorted result set without
// pagination; used by exports. A positive maxRows caps the result size.
func (r *EnrollmentRepository) ListAll(ctx context.Context, q query.ListQuery, maxRows int) ([]models.EnrollmentRow, error) {
	where, args := query.BuildWhere(q)
	orderBy := query.BuildOrderBy(q)

	listQuery := fmt.Sprintf("SELECT %s %s%s %s",
		enrollmentRowColumns, enrollmentListBase, where, orderBy)
	if maxRows > 0 {
		listQuery += fmt.Sprintf(" LIMIT %d", maxRows)
	}

	rows := []models.EnrollmentRow{}
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, fmt.Errorf("export enrollments: %w", err)
	}
	return rows, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	const q = `SELECT id, student_id, course_id, academic_year, semester, status, created_at, updated_at
        FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, q, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with its student and course attributes.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	const q = `SELECT e.id, e.student_id, e.course_id, e.academic_year, e.semester, e.status, e.created_at, e.updated_at,
        s.nim AS student_nim, s.name AS student_name, s.email AS student_email,
        c.code AS course_code, c.name AS course_name, c.credits AS course_credits
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, q, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsTerm checks whether a (student, course, year, semester) tuple is
// already taken, optionally excluding one enrollment during updates.
func (r *EnrollmentRepository) ExistsTerm(ctx context.Context, studentID, courseID int64, academicYear string, semester int, excludeID int64) (bool, error) {
	q := "SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND academic_year = $3 AND semester = $4"
	args := []interface{}{studentID, courseID, academicYear, semester}
	if excludeID != 0 {
		q += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	q += " LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment term: %w", err)
	}
	return true, nil
}

// CreateAtomic inserts the optional new student and course together with the
// enrollment in a single transaction, so a failing uniqueness check leaves no
// orphaned rows. Returns the new enrollment ID.
func (r *EnrollmentRepository) CreateAtomic(ctx context.Context, in models.EnrollmentCreate) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create enrollment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	studentID := in.StudentID
	if in.NewStudent != nil {
		const insertStudent = `INSERT INTO students (nim, name, email, created_at, updated_at)
            VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`
		if err := tx.GetContext(ctx, &studentID, insertStudent, in.NewStudent.NIM, in.NewStudent.Name, in.NewStudent.Email); err != nil {
			return 0, mapConstraintError(err, "create student")
		}
	}

	courseID := in.CourseID
	if in.NewCourse != nil {
		const insertCourse = `INSERT INTO courses (code, name, credits, created_at, updated_at)
            VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`
		if err := tx.GetContext(ctx, &courseID, insertCourse, in.NewCourse.Code, in.NewCourse.Name, in.NewCourse.Credits); err != nil {
			return 0, mapConstraintError(err, "create course")
		}
	}

	const insertEnrollment = `INSERT INTO enrollments (student_id, course_id, academic_year, semester, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`
	var enrollmentID int64
	if err := tx.GetContext(ctx, &enrollmentID, insertEnrollment, studentID, courseID, in.AcademicYear, in.Semester, in.Status); err != nil {
		return 0, mapConstraintError(err, "create enrollment")
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create enrollment: %w", err)
	}
	return enrollmentID, nil
}

// Update rewrites the mutable enrollment fields. The student reference is
// locked after creation; the course may be switched.
func (r *EnrollmentRepository) Update(ctx context.Context, id, courseID int64, academicYear string, semester int, status models.EnrollmentStatus) error {
	const q = `UPDATE enrollments SET course_id = $2, academic_year = $3, semester = $4, status = $5, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, q, id, courseID, academicYear, semester, status)
	if err != nil {
		return mapConstraintError(err, "update enrollment")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a single enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
