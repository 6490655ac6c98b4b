package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/pkg/response"
)

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

// StudentHandler exposes the student option list.
type StudentHandler struct {
	students studentLister
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentLister) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List all students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
