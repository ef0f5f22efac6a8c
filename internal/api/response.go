package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/dag"
	"github.com/vk/curriculum/internal/registration"
)

// Error codes returned in the error envelope.
const (
	ErrorCodeValidationFailed = "VALIDATION_FAILED"
	ErrorCodeNotFound         = "RESOURCE_NOT_FOUND"
	ErrorCodeCyclicGraph      = "CYCLIC_GRAPH"
	ErrorCodeDangling         = "DANGLING_PREREQUISITE"
	ErrorCodeInternal         = "INTERNAL_ERROR"
)

// Response is the envelope of every JSON response.
type Response struct {
	Data      any          `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Data: data, Timestamp: time.Now()})
}

func fail(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, Response{
		Error:     &ErrorDetail{Code: code, Message: message, Details: details},
		Timestamp: time.Now(),
	})
}

// handleError maps domain errors onto HTTP statuses.
func handleError(c *gin.Context, err error) {
	var (
		unknown  *catalog.UnknownCourseError
		dangling *catalog.DanglingError
		cycle    *dag.CycleError
	)
	switch {
	case errors.As(err, &unknown):
		fail(c, http.StatusNotFound, ErrorCodeNotFound, err.Error(), unknown.Codes)
	case errors.As(err, &cycle):
		fail(c, http.StatusConflict, ErrorCodeCyclicGraph, err.Error(), cycle.Cycle)
	case errors.As(err, &dangling):
		fail(c, http.StatusConflict, ErrorCodeDangling, err.Error(), dangling.Edges)
	case errors.Is(err, catalog.ErrSelfPrerequisite),
		errors.Is(err, catalog.ErrInvalidCourse),
		errors.Is(err, registration.ErrInvalidRequest):
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error(), nil)
	default:
		ctxlog.FromContext(c.Request.Context()).Error("Request failed.", "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, ErrorCodeInternal, "internal error", nil)
	}
}
