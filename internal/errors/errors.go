// Package errors writes the API's JSON error envelope.
package errors

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/rentroll/internal/middleware"
)

// Error codes carried in the envelope.
const (
	ErrNotFound       = "NOT_FOUND"
	ErrBadRequest     = "BAD_REQUEST"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrValidation     = "VALIDATION_ERROR"
	ErrUnauthorized   = "UNAUTHORIZED"
	ErrForbidden      = "FORBIDDEN"
	ErrConflict       = "CONFLICT"
)

const validationMessage = "Validation failed for one or more fields"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the error envelope.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// write logs the failure on the request logger and sends the envelope.
// Client errors log at warn; a non-nil cause logs at error.
func write(c *gin.Context, status int, code, message string, details map[string]interface{}, cause error) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := map[string]interface{}{
			"code":    code,
			"status":  status,
			"message": message,
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}
		if cause != nil {
			log.Error("Request error", cause, fields)
		} else {
			log.Warn("Request error", fields)
		}
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound sends 404.
func NotFound(c *gin.Context, message string) {
	write(c, http.StatusNotFound, ErrNotFound, message, nil, nil)
}

// BadRequest sends 400 with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	write(c, http.StatusBadRequest, ErrBadRequest, message, details, nil)
}

// Unauthorized sends 401 with a Bearer challenge.
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	write(c, http.StatusUnauthorized, ErrUnauthorized, message, nil, nil)
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, message string) {
	write(c, http.StatusForbidden, ErrForbidden, message, nil, nil)
}

// Conflict sends 400 with the CONFLICT code. Used when a request clashes
// with existing state, such as a taken email or a second active lease.
func Conflict(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, ErrConflict, message, nil, nil)
}

// InternalServerError sends 500 with message. err is logged, never returned.
func InternalServerError(c *gin.Context, message string, err error) {
	write(c, http.StatusInternalServerError, ErrInternalServer, message, nil, err)
}

// ValidationError sends 422 with one message per failing field, keyed by
// the field name the validator reports.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = formatValidationError(fe)
	}
	InvalidFields(c, details)
}

// InvalidFields sends 422 for fields that failed to decode, keyed by JSON
// field name.
func InvalidFields(c *gin.Context, details map[string]interface{}) {
	write(c, http.StatusUnprocessableEntity, ErrValidation, validationMessage, details, nil)
}

// formatValidationError renders one failed rule for clients.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + unit(fe.Kind())
	case "max":
		return "Must be at most " + fe.Param() + unit(fe.Kind())
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lt":
		return "Must be less than " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return "Failed the " + fe.Tag() + " rule"
	}
}

// unit names what min and max count for a field of kind k.
func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}
