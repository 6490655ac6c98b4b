package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID        int64     `db:"id" json:"id"`
	NIM       string    `db:"nim" json:"nim"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
