package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taskflow/internal/auth"
	"taskflow/internal/service"
)

// writeError maps domain errors onto status codes and a {"detail": ...} body.
func writeError(c *gin.Context, err error) {
	var ve *service.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &ve):
		abort(c, http.StatusUnprocessableEntity, ve.Error())
	case errors.As(err, &fieldErrs):
		abort(c, http.StatusUnprocessableEntity, describeFieldErrors(fieldErrs))
	case errors.Is(err, service.ErrBadCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		abort(c, http.StatusUnauthorized, "Incorrect username or password")
	case errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrMissingSubject):
		c.Header("WWW-Authenticate", "Bearer")
		abort(c, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, service.ErrTaskNotFound):
		abort(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrSubtaskNotFound):
		abort(c, http.StatusNotFound, "Subtask not found")
	case errors.Is(err, service.ErrNotFound):
		abort(c, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrEmailTaken):
		abort(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrAIUnconfigured):
		abort(c, http.StatusInternalServerError, "Gemini API Key not configured")
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		abort(c, http.StatusInternalServerError, "Internal server error")
	}
}

// writeBindError reports a body or form that could not be decoded.
func writeBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		abort(c, http.StatusUnprocessableEntity, describeFieldErrors(fieldErrs))
		return
	}
	abort(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s: field required", field))
		case "email":
			parts = append(parts, fmt.Sprintf("%s: value is not a valid email address", field))
		default:
			parts = append(parts, fmt.Sprintf("%s: failed %q rule", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
