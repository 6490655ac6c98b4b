package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/internal/query"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	rows       []models.EnrollmentRow
	listTotal  int
	listErr    error
	lastQuery  query.ListQuery
	detail     *models.EnrollmentDetail
	enrollment *models.Enrollment
	termTaken  bool
	created    *models.EnrollmentCreate
	createErr  error
	createdID  int64
	updated    bool
	deleted    []int64
	deleteErr  error
}

func (m *mockEnrollmentRepo) List(ctx context.Context, q query.ListQuery) ([]models.EnrollmentRow, int, error) {
	m.lastQuery = q
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.rows, m.listTotal, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	if m.enrollment == nil || m.enrollment.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.enrollment, nil
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	if m.detail == nil {
		return nil, sql.ErrNoRows
	}
	return m.detail, nil
}

func (m *mockEnrollmentRepo) ExistsTerm(ctx context.Context, studentID, courseID int64, academicYear string, semester int, excludeID int64) (bool, error) {
	return m.termTaken, nil
}

func (m *mockEnrollmentRepo) CreateAtomic(ctx context.Context, in models.EnrollmentCreate) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.created = &in
	if m.createdID == 0 {
		m.createdID = 1
	}
	return m.createdID, nil
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, id, courseID int64, academicYear string, semester int, status models.EnrollmentStatus) error {
	m.updated = true
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStudentReader struct {
	students map[int64]models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockCourseReader struct {
	courses map[int64]models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type mockInvalidator struct {
	deleted []string
}

func (m *mockInvalidator) Delete(ctx context.Context, keys ...string) error {
	m.deleted = append(m.deleted, keys...)
	return nil
}

func validSaveRequest() SaveEnrollmentRequest {
	return SaveEnrollmentRequest{
		Student:    StudentSelection{Mode: SelectionExisting, ID: 1},
		Course:     CourseSelection{Mode: SelectionExisting, ID: 2},
		Enrollment: EnrollmentFields{AcademicYear: "2024/2025", Semester: 1, Status: "DRAFT"},
	}
}

func newEnrollmentServiceForTest(repo *mockEnrollmentRepo, cache *mockInvalidator) *EnrollmentService {
	students := &mockStudentReader{students: map[int64]models.Student{1: {ID: 1, NIM: "2110001", Name: "Budi"}}}
	courses := &mockCourseReader{courses: map[int64]models.Course{2: {ID: 2, Code: "IF101", Name: "Algoritma", Credits: 3}}}
	var invalidator optionCacheInvalidator
	if cache != nil {
		invalidator = cache
	}
	return NewEnrollmentService(repo, students, courses, invalidator, nil, nil, nil)
}

func TestEnrollmentServiceListPaginationMeta(t *testing.T) {
	repo := &mockEnrollmentRepo{rows: []models.EnrollmentRow{{ID: 1}}, listTotal: 25}
	svc := newEnrollmentServiceForTest(repo, nil)

	rows, meta, err := svc.List(context.Background(), query.ListQuery{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	require.NotNil(t, meta)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 25, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
}

func TestEnrollmentServiceListEmptyPageIsNotNil(t *testing.T) {
	repo := &mockEnrollmentRepo{rows: nil, listTotal: 0}
	svc := newEnrollmentServiceForTest(repo, nil)

	rows, meta, err := svc.List(context.Background(), query.ListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestEnrollmentServiceCreateExisting(t *testing.T) {
	repo := &mockEnrollmentRepo{detail: &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: 1}}}
	cache := &mockInvalidator{}
	svc := newEnrollmentServiceForTest(repo, cache)

	detail, err := svc.Create(context.Background(), validSaveRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.ID)
	require.NotNil(t, repo.created)
	assert.Equal(t, int64(1), repo.created.StudentID)
	assert.Equal(t, int64(2), repo.created.CourseID)
	assert.Nil(t, repo.created.NewStudent)
	assert.Empty(t, cache.deleted)
}

func TestEnrollmentServiceCreateNewStudentInvalidatesCache(t *testing.T) {
	repo := &mockEnrollmentRepo{detail: &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: 1}}}
	cache := &mockInvalidator{}
	svc := newEnrollmentServiceForTest(repo, cache)

	req := validSaveRequest()
	req.Student = StudentSelection{Mode: SelectionNew, NIM: "2110009", Name: "Siti Aminah", Email: "siti@example.com"}

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, repo.created.NewStudent)
	assert.Equal(t, "2110009", repo.created.NewStudent.NIM)
	assert.Equal(t, []string{"krs:options:students"}, cache.deleted)
}

func TestEnrollmentServiceCreateFieldErrors(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceForTest(repo, nil)

	req := SaveEnrollmentRequest{
		Student:    StudentSelection{Mode: SelectionNew, NIM: "12345678901", Name: "ab", Email: "bad"},
		Course:     CourseSelection{Mode: SelectionNew, Code: "if-101", Name: "x", Credits: 9},
		Enrollment: EnrollmentFields{AcademicYear: "2024", Semester: 3, Status: "PENDING"},
	}

	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 422, appErr.Status)
	for _, key := range []string{"nim", "studentName", "studentEmail", "courseCode", "courseName", "credits", "academicYear", "semester", "status"} {
		assert.Contains(t, appErr.Fields, key)
	}
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceCreateEmailValidation(t *testing.T) {
	repo := &mockEnrollmentRepo{detail: &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: 1}}}
	svc := newEnrollmentServiceForTest(repo, nil)

	req := validSaveRequest()
	req.Student = StudentSelection{Mode: SelectionNew, NIM: "2110009", Name: "Siti Aminah", Email: "not-an-email"}

	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "email is invalid", appErr.Fields["studentEmail"])

	req.Student.Email = "siti@example.com"
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestEnrollmentServiceCreateUnknownStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceForTest(repo, nil)

	req := validSaveRequest()
	req.Student.ID = 404

	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "student not found", appErr.Fields["studentId"])
}

func TestEnrollmentServiceCreateDuplicateTerm(t *testing.T) {
	repo := &mockEnrollmentRepo{termTaken: true}
	svc := newEnrollmentServiceForTest(repo, nil)

	_, err := svc.Create(context.Background(), validSaveRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceCreatePassesThroughRepoConflict(t *testing.T) {
	conflict := appErrors.Clone(appErrors.ErrConflict, "nim already used")
	repo := &mockEnrollmentRepo{createErr: conflict}
	svc := newEnrollmentServiceForTest(repo, nil)

	req := validSaveRequest()
	req.Student = StudentSelection{Mode: SelectionNew, NIM: "2110001", Name: "Budi Dua", Email: "budi2@example.com"}

	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "nim already used", appErr.Message)
}

func TestEnrollmentServiceUpdate(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollment: &models.Enrollment{ID: 5, StudentID: 1, CourseID: 2},
		detail:     &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: 5}},
	}
	svc := newEnrollmentServiceForTest(repo, nil)

	req := validSaveRequest()
	req.Enrollment.Status = "SUBMITTED"

	detail, err := svc.Update(context.Background(), 5, req)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.ID)
	assert.True(t, repo.updated)
}

func TestEnrollmentServiceUpdateNotFound(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceForTest(repo, nil)

	_, err := svc.Update(context.Background(), 99, validSaveRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestEnrollmentServiceUpdateIgnoresNewStudentMode(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollment: &models.Enrollment{ID: 5, StudentID: 1, CourseID: 2},
		detail:     &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: 5}},
	}
	svc := newEnrollmentServiceForTest(repo, nil)

	// Student side is locked on update, so a "new" selection with bad data
	// must not trip validation as long as the rest of the payload is valid.
	req := validSaveRequest()
	req.Student = StudentSelection{Mode: SelectionNew, ID: 1, NIM: "12345678901", Name: ""}

	_, err := svc.Update(context.Background(), 5, req)
	require.NoError(t, err)
}

func TestEnrollmentServiceDelete(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentServiceForTest(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 3))
	assert.Equal(t, []int64{3}, repo.deleted)

	repo.deleteErr = sql.ErrNoRows
	err := svc.Delete(context.Background(), 4)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
