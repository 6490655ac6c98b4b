package models

import (
	"regexp"
	"time"
)

// CourseCodePattern validates course codes such as IF101 or MATH204.
var CourseCodePattern = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{3}$`)

// Course represents a unit of study students can enroll in.
type Course struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
