package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
)

// APIError is an error carrying an HTTP status code for the envelope.
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware converts errors attached to the context into the
// uniform error envelope.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// WrapError attaches an HTTP status code to an error.
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// HandleServiceError maps the service error taxonomy onto HTTP status codes
// and writes the error envelope. Validation failures come back as 400,
// authorization failures as 403, missing resources as 404 and decisions
// against a settled application as 409. Anything else is a 500 with the
// detail suppressed so storage internals never leak to clients.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		Error(c, http.StatusBadRequest, "validation failed", err.Error())
	case service.IsAuthorization(err):
		Error(c, http.StatusForbidden, "forbidden", err.Error())
	case service.IsNotFound(err):
		Error(c, http.StatusNotFound, "not found", err.Error())
	case service.IsInvalidState(err):
		Error(c, http.StatusConflict, "conflict", err.Error())
	default:
		GetLogger().WithError(err).Error("unhandled service error")
		Error(c, http.StatusInternalServerError, "internal server error", "")
	}
}
