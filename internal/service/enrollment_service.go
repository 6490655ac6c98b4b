package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/internal/query"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, q query.ListQuery) ([]models.EnrollmentRow, int, error)
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error)
	ExistsTerm(ctx context.Context, studentID, courseID int64, academicYear string, semester int, excludeID int64) (bool, error)
	CreateAtomic(ctx context.Context, in models.EnrollmentCreate) (int64, error)
	Update(ctx context.Context, id, courseID int64, academicYear string, semester int, status models.EnrollmentStatus) error
	Delete(ctx context.Context, id int64) error
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type optionCacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// Selection modes for the nested student/course payloads.
const (
	SelectionExisting = "existing"
	SelectionNew      = "new"
)

// StudentSelection chooses an existing student by id or describes a new one.
type StudentSelection struct {
	Mode  string `json:"mode"`
	ID    int64  `json:"id"`
	NIM   string `json:"nim"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CourseSelection chooses an existing course by id or describes a new one.
type CourseSelection struct {
	Mode    string `json:"mode"`
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}

// EnrollmentFields carries the term and status portion of a save request.
type EnrollmentFields struct {
	AcademicYear string `json:"academic_year"`
	Semester     int    `json:"semester"`
	Status       string `json:"status"`
}

// SaveEnrollmentRequest is the nested create/update payload.
type SaveEnrollmentRequest struct {
	Student    StudentSelection `json:"student"`
	Course     CourseSelection  `json:"course"`
	Enrollment EnrollmentFields `json:"enrollment"`
}

// EnrollmentService orchestrates enrollment workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	courses   courseReader
	cache     optionCacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. cache and metrics may be nil.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, courses courseReader, cache optionCacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// List returns one page of enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, q query.ListQuery) ([]models.EnrollmentRow, *models.Pagination, error) {
	start := time.Now()
	rows, total, err := s.repo.List(ctx, q)
	s.metrics.ObserveDBQuery("enrollments_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if rows == nil {
		rows = []models.EnrollmentRow{}
	}
	return rows, models.NewPagination(q.Page, q.PageSize, total), nil
}

// Create performs the atomic existing-or-new create flow.
func (s *EnrollmentService) Create(ctx context.Context, req SaveEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if fields := s.saveFieldErrors(req, false); len(fields) > 0 {
		return nil, appErrors.Validation("validation failed", fields)
	}

	in := models.EnrollmentCreate{
		AcademicYear: req.Enrollment.AcademicYear,
		Semester:     req.Enrollment.Semester,
		Status:       models.EnrollmentStatus(req.Enrollment.Status),
	}

	if req.Student.Mode == SelectionExisting {
		student, err := s.students.FindByID(ctx, req.Student.ID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Validation("validation failed", map[string]string{"studentId": "student not found"})
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		in.StudentID = student.ID
	} else {
		in.NewStudent = &models.Student{NIM: req.Student.NIM, Name: strings.TrimSpace(req.Student.Name), Email: req.Student.Email}
	}

	if req.Course.Mode == SelectionExisting {
		course, err := s.courses.FindByID(ctx, req.Course.ID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Validation("validation failed", map[string]string{"courseId": "course not found"})
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		in.CourseID = course.ID
	} else {
		in.NewCourse = &models.Course{Code: req.Course.Code, Name: strings.TrimSpace(req.Course.Name), Credits: req.Course.Credits}
	}

	// Friendly duplicate check when both sides already exist; races still
	// resolve through the unique constraint inside the transaction.
	if in.StudentID != 0 && in.CourseID != 0 {
		exists, err := s.repo.ExistsTerm(ctx, in.StudentID, in.CourseID, in.AcademicYear, in.Semester, 0)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this course for the term")
		}
	}

	id, err := s.repo.CreateAtomic(ctx, in)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.invalidateOptionCaches(ctx, in.NewStudent != nil, in.NewCourse != nil)

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

// Update rewrites the mutable fields of one enrollment. The student reference
// is locked; the course can be switched to another existing course.
func (s *EnrollmentService) Update(ctx context.Context, id int64, req SaveEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if fields := s.saveFieldErrors(req, true); len(fields) > 0 {
		return nil, appErrors.Validation("validation failed", fields)
	}

	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	course, err := s.courses.FindByID(ctx, req.Course.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Validation("validation failed", map[string]string{"courseId": "course not found"})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.ExistsTerm(ctx, enrollment.StudentID, course.ID, req.Enrollment.AcademicYear, req.Enrollment.Semester, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this course for the term")
	}

	if err := s.repo.Update(ctx, id, course.ID, req.Enrollment.AcademicYear, req.Enrollment.Semester, models.EnrollmentStatus(req.Enrollment.Status)); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

// Delete removes a single enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	return nil
}

func (s *EnrollmentService) invalidateOptionCaches(ctx context.Context, student, course bool) {
	if s.cache == nil {
		return
	}
	var keys []string
	if student {
		keys = append(keys, studentOptionsCacheKey)
	}
	if course {
		keys = append(keys, courseOptionsCacheKey)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("option cache invalidation failed", zap.Error(err))
	}
}

// saveFieldErrors applies the form validation rules and returns a per-field
// message map. forUpdate locks both references to existing rows.
func (s *EnrollmentService) saveFieldErrors(req SaveEnrollmentRequest, forUpdate bool) map[string]string {
	fields := make(map[string]string)

	studentMode := req.Student.Mode
	if forUpdate {
		studentMode = SelectionExisting
	}
	switch studentMode {
	case SelectionExisting:
		if req.Student.ID <= 0 {
			fields["studentId"] = "student is required"
		}
	case SelectionNew:
		nim := strings.TrimSpace(req.Student.NIM)
		if nim == "" || len(nim) > 10 {
			fields["nim"] = "nim is required and must be at most 10 characters"
		}
		if name := strings.TrimSpace(req.Student.Name); len(name) < 3 || len(name) > 100 {
			fields["studentName"] = "name must be 3-100 characters"
		}
		if err := s.validator.Var(strings.TrimSpace(req.Student.Email), "required,email"); err != nil {
			fields["studentEmail"] = "email is invalid"
		}
	default:
		fields["studentId"] = "student mode must be existing or new"
	}

	courseMode := req.Course.Mode
	if forUpdate {
		courseMode = SelectionExisting
	}
	switch courseMode {
	case SelectionExisting:
		if req.Course.ID <= 0 {
			fields["courseId"] = "course is required"
		}
	case SelectionNew:
		if !models.CourseCodePattern.MatchString(req.Course.Code) {
			fields["courseCode"] = "code must match [A-Z]{2,4}[0-9]{3}, e.g. IF101"
		}
		if name := strings.TrimSpace(req.Course.Name); len(name) < 3 || len(name) > 120 {
			fields["courseName"] = "name must be 3-120 characters"
		}
		if req.Course.Credits < 1 || req.Course.Credits > 6 {
			fields["credits"] = "credits must be an integer between 1 and 6"
		}
	default:
		fields["courseId"] = "course mode must be existing or new"
	}

	if !models.AcademicYearPattern.MatchString(req.Enrollment.AcademicYear) {
		fields["academicYear"] = "academic year must use the YYYY/YYYY format"
	}
	if !models.ValidSemester(req.Enrollment.Semester) {
		fields["semester"] = "semester must be 1 or 2"
	}
	if !models.ValidEnrollmentStatus(req.Enrollment.Status) {
		fields["status"] = "status is invalid"
	}

	return fields
}
