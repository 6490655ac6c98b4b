package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
)

// Postgres error classes surfaced by constraint checks.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapConstraintError converts pq constraint violations into typed domain
// errors so handlers can answer with the right status. Anything else is
// wrapped with the operation name.
func mapConstraintError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			switch pqErr.Constraint {
			case "uq_enrollments_student_course_term":
				return appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this course for the term")
			case "uq_students_nim":
				return appErrors.Clone(appErrors.ErrConflict, "nim already used")
			case "uq_courses_code":
				return appErrors.Clone(appErrors.ErrConflict, "course code already used")
			}
			return appErrors.Clone(appErrors.ErrConflict, "duplicate value")
		case pgForeignKeyViolation:
			return appErrors.Clone(appErrors.ErrConflict, "row is referenced by other records")
		case pgCheckViolation:
			return appErrors.Clone(appErrors.ErrValidation, "value rejected by database check")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
