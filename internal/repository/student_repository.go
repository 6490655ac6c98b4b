package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/krs-admin-api/internal/models"
)

// StudentRepository manages read access to student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListAll returns every student ordered by nim, for selection UIs.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	const q = `SELECT id, nim, name, email, created_at, updated_at FROM students ORDER BY nim ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, q); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const q = `SELECT id, nim, name, email, created_at, updated_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, q, id); err != nil {
		return nil, err
	}
	return &student, nil
}
