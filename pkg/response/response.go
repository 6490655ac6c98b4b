package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/krs-admin-api/internal/models"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
)

// Envelope represents the common response contract for list and detail
// endpoints: data plus optional pagination metadata.
type Envelope struct {
	Data  interface{}        `json:"data"`
	Meta  *models.Pagination `json:"meta,omitempty"`
	Error *appErrors.Error   `json:"error,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, meta *models.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data, Meta: meta})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response. Validation errors carrying field messages
// are rendered as {message, errors} so form UIs can map them onto inputs;
// everything else uses the envelope error shape.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if len(appErr.Fields) > 0 {
		c.JSON(appErr.Status, gin.H{"message": appErr.Message, "errors": appErr.Fields})
		return
	}
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
