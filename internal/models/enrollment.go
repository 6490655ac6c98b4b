package models

import (
	"regexp"
	"time"
)

// EnrollmentStatus represents the workflow state of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusDraft     EnrollmentStatus = "DRAFT"
	EnrollmentStatusSubmitted EnrollmentStatus = "SUBMITTED"
	EnrollmentStatusApproved  EnrollmentStatus = "APPROVED"
	EnrollmentStatusRejected  EnrollmentStatus = "REJECTED"
)

// AcademicYearPattern validates academic years such as 2025/2026.
var AcademicYearPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

// ValidEnrollmentStatus reports whether s is one of the allowed statuses.
func ValidEnrollmentStatus(s string) bool {
	switch EnrollmentStatus(s) {
	case EnrollmentStatusDraft, EnrollmentStatusSubmitted, EnrollmentStatusApproved, EnrollmentStatusRejected:
		return true
	}
	return false
}

// ValidSemester reports whether sem is an allowed semester number.
func ValidSemester(sem int) bool {
	return sem == 1 || sem == 2
}

// Enrollment captures a student's registration to a course within a term.
type Enrollment struct {
	ID           int64            `db:"id" json:"id"`
	StudentID    int64            `db:"student_id" json:"student_id"`
	CourseID     int64            `db:"course_id" json:"course_id"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	Semester     int              `db:"semester" json:"semester"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentRow is the flattened listing shape over the student/course join.
type EnrollmentRow struct {
	ID           int64            `db:"id" json:"id"`
	StudentNIM   string           `db:"student_nim" json:"student_nim"`
	StudentName  string           `db:"student_name" json:"student_name"`
	CourseCode   string           `db:"course_code" json:"course_code"`
	CourseName   string           `db:"course_name" json:"course_name"`
	Semester     int              `db:"semester" json:"semester"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentCreate describes one atomic create after the service resolved
// the existing-vs-new choice for both references. Exactly one of
// StudentID/NewStudent is set, same for the course pair.
type EnrollmentCreate struct {
	StudentID    int64
	NewStudent   *Student
	CourseID     int64
	NewCourse    *Course
	AcademicYear string
	Semester     int
	Status       EnrollmentStatus
}

// EnrollmentDetail enriches Enrollment with student and course attributes
// so edit forms can be pre-filled without extra lookups.
type EnrollmentDetail struct {
	Enrollment
	StudentNIM    string `db:"student_nim" json:"student_nim"`
	StudentName   string `db:"student_name" json:"student_name"`
	StudentEmail  string `db:"student_email" json:"student_email"`
	CourseCode    string `db:"course_code" json:"course_code"`
	CourseName    string `db:"course_name" json:"course_name"`
	CourseCredits int    `db:"course_credits" json:"course_credits"`
}
