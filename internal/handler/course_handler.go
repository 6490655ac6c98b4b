package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/pkg/response"
)

type courseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

// CourseHandler exposes the course option list.
type CourseHandler struct {
	courses courseLister
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseLister) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List all courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
