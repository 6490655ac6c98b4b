package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/krs-admin-api/internal/models"
)

// CourseRepository manages read access to course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListAll returns every course ordered by code, for selection UIs.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	const q = `SELECT id, code, name, credits, created_at, updated_at FROM courses ORDER BY code ASC`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, q); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const q = `SELECT id, code, name, credits, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, q, id); err != nil {
		return nil, err
	}
	return &course, nil
}
