package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/internal/query"
	"github.com/noah-isme/krs-admin-api/internal/service"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
	"github.com/noah-isme/krs-admin-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, q query.ListQuery) ([]models.EnrollmentRow, *models.Pagination, error)
	Create(ctx context.Context, req service.SaveEnrollmentRequest) (*models.EnrollmentDetail, error)
	Update(ctx context.Context, id int64, req service.SaveEnrollmentRequest) (*models.EnrollmentDetail, error)
	Delete(ctx context.Context, id int64) error
}

type exportService interface {
	Generate(ctx context.Context, q query.ListQuery, format string) (*service.ExportFile, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	exports     exportService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, exports exportService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, exports: exports}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size (1-100)"
// @Param status query string false "Quick filter: DRAFT|SUBMITTED|APPROVED|REJECTED|ALL"
// @Param semester query string false "Quick filter: 1|2|ALL"
// @Param academic_year query string false "Quick filter: YYYY/YYYY or ALL"
// @Param search query string false "Case-insensitive search over nim, student name, course code"
// @Param filters query string false "JSON array of {field,op,value} rules"
// @Param filter_logic query string false "AND or OR"
// @Param sorts query string false "JSON array of {field,dir} keys"
// @Param sort_by query string false "Fallback sort column"
// @Param sort_dir query string false "Fallback sort direction"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	q := query.Parse(c.Request.URL.Query())
	rows, meta, err := h.enrollments.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, meta)
}

// Export godoc
// @Summary Export the filtered enrollment view
// @Tags Enrollments
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	q := query.Parse(c.Request.URL.Query())
	file, err := h.exports.Generate(c.Request.Context(), q, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Create godoc
// @Summary Create an enrollment, optionally creating its student and course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.SaveEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} map[string]interface{}
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.SaveEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.enrollments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param payload body service.SaveEnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} map[string]interface{}
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment id"))
		return
	}
	var req service.SaveEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.enrollments.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete an enrollment
// @Tags Enrollments
// @Param id path int true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment id"))
		return
	}
	if err := h.enrollments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
