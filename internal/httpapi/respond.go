package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"krankmeldung/internal/service"
)

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  any    `json:"fields,omitempty"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: responseError{Code: code, Message: message}})
}

// fail maps service errors onto HTTP statuses. Unknown errors are logged and
// reported as a generic 500.
func fail(c *gin.Context, err error) {
	if verr, ok := service.ValidationErrors(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: responseError{
			Code: "validation_failed", Message: "invalid input", Fields: verr,
		}})
		return
	}
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, "unauthorized", "not signed in")
	case errors.Is(err, service.ErrForbidden):
		writeError(c, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, service.ErrNoMitarbeiter):
		writeError(c, http.StatusForbidden, "no_mitarbeiter", err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, service.ErrConflict):
		writeError(c, http.StatusConflict, "overlap", err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, service.ErrDuplicate):
		writeError(c, http.StatusConflict, "duplicate", err.Error())
	default:
		log.Printf("request path=%s error=%v", c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// bindJSON decodes the body or answers 400.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}
