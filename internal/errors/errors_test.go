package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newContext returns a context carrying a request ID and a JSON logger
// writing to the returned buffer.
func newContext() (*gin.Context, *httptest.ResponseRecorder, *bytes.Buffer) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/leases", nil)

	var buf bytes.Buffer
	c.Set(middleware.LoggerKey, logger.NewWithWriter("production", &buf))
	c.Set(middleware.RequestIDKey, "req-123")
	return c, w, &buf
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func decodeLog(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestResponders(t *testing.T) {
	tests := []struct {
		name    string
		send    func(c *gin.Context)
		status  int
		code    string
		message string
		level   string
	}{
		{"not found", func(c *gin.Context) { NotFound(c, "Lease not found") }, http.StatusNotFound, ErrNotFound, "Lease not found", "warn"},
		{"bad request", func(c *gin.Context) { BadRequest(c, "Invalid id", nil) }, http.StatusBadRequest, ErrBadRequest, "Invalid id", "warn"},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "Could not validate credentials") }, http.StatusUnauthorized, ErrUnauthorized, "Could not validate credentials", "warn"},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "Not authorized to view this lease") }, http.StatusForbidden, ErrForbidden, "Not authorized to view this lease", "warn"},
		{"conflict", func(c *gin.Context) { Conflict(c, "Email already registered") }, http.StatusBadRequest, ErrConflict, "Email already registered", "warn"},
		{"internal", func(c *gin.Context) {
			InternalServerError(c, "Failed to create lease", errors.New("connection reset"))
		}, http.StatusInternalServerError, ErrInternalServer, "Failed to create lease", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w, buf := newContext()
			tt.send(c)

			assert.Equal(t, tt.status, w.Code)
			detail := decodeResponse(t, w)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.message, detail.Message)
			assert.Equal(t, "req-123", detail.RequestID)
			assert.Nil(t, detail.Details)

			entry := decodeLog(t, buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.code, entry["code"])
			assert.Equal(t, "/api/leases", entry["path"])
		})
	}
}

func TestUnauthorized_Challenge(t *testing.T) {
	c, w, _ := newContext()
	Unauthorized(c, "Not authenticated")
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestInternalServerError_HidesCause(t *testing.T) {
	c, w, buf := newContext()
	InternalServerError(c, "Failed to load payments", errors.New("pq: relation missing"))

	assert.NotContains(t, w.Body.String(), "relation missing")
	assert.Equal(t, "pq: relation missing", decodeLog(t, buf)["error"])
}

func TestBadRequest_Details(t *testing.T) {
	c, w, buf := newContext()
	BadRequest(c, "Invalid request body", map[string]interface{}{"body": "unexpected EOF"})

	detail := decodeResponse(t, w)
	assert.Equal(t, "unexpected EOF", detail.Details["body"])
	assert.Contains(t, decodeLog(t, buf), "details")
}

func TestValidationError(t *testing.T) {
	type leaseInput struct {
		Rent   float64 `validate:"gt=0"`
		Status string  `validate:"oneof=ACTIVE EXPIRED TERMINATED"`
		Notes  string  `validate:"max=5"`
	}

	err := validator.New().Struct(leaseInput{Rent: 0, Status: "BROKEN", Notes: "too long"})
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	c, w, _ := newContext()
	ValidationError(c, validationErrors)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	detail := decodeResponse(t, w)
	assert.Equal(t, ErrValidation, detail.Code)
	assert.Equal(t, "Validation failed for one or more fields", detail.Message)
	assert.Equal(t, map[string]interface{}{
		"Rent":   "Must be greater than 0",
		"Status": "Must be one of: ACTIVE, EXPIRED, TERMINATED",
		"Notes":  "Must be at most 5 characters",
	}, detail.Details)
}

func TestInvalidFields(t *testing.T) {
	c, w, _ := newContext()
	InvalidFields(c, map[string]interface{}{"startDate": "Must be a valid date"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	detail := decodeResponse(t, w)
	assert.Equal(t, ErrValidation, detail.Code)
	assert.Equal(t, "Must be a valid date", detail.Details["startDate"])
}

func TestFormatValidationError(t *testing.T) {
	tests := []struct {
		tag      string
		param    string
		kind     reflect.Kind
		expected string
	}{
		{"required", "", reflect.String, "This field is required"},
		{"email", "", reflect.String, "Must be a valid email address"},
		{"min", "6", reflect.String, "Must be at least 6 characters"},
		{"min", "1", reflect.Int, "Must be at least 1"},
		{"max", "255", reflect.String, "Must be at most 255 characters"},
		{"max", "10", reflect.Slice, "Must be at most 10 items"},
		{"max", "99", reflect.Float64, "Must be at most 99"},
		{"gt", "0", reflect.Float64, "Must be greater than 0"},
		{"gte", "0", reflect.Int, "Must be greater than or equal to 0"},
		{"lt", "100", reflect.Int, "Must be less than 100"},
		{"lte", "100", reflect.Int, "Must be less than or equal to 100"},
		{"oneof", "LOW MEDIUM HIGH", reflect.String, "Must be one of: LOW, MEDIUM, HIGH"},
		{"uuid", "", reflect.String, "Failed the uuid rule"},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.kind.String(), func(t *testing.T) {
			fe := &mockFieldError{tag: tt.tag, param: tt.param, kind: tt.kind}
			assert.Equal(t, tt.expected, formatValidationError(fe))
		})
	}
}

func TestWithoutMiddlewareContext(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/units/9", nil)

	NotFound(c, "Unit not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	detail := decodeResponse(t, w)
	assert.Equal(t, "Unit not found", detail.Message)
	assert.Empty(t, detail.RequestID)
	assert.NotContains(t, w.Body.String(), "request_id")
}

// mockFieldError implements validator.FieldError for formatter tests.
type mockFieldError struct {
	tag   string
	param string
	kind  reflect.Kind
}

func (m *mockFieldError) Tag() string                    { return m.tag }
func (m *mockFieldError) ActualTag() string              { return m.tag }
func (m *mockFieldError) Namespace() string              { return "" }
func (m *mockFieldError) StructNamespace() string        { return "" }
func (m *mockFieldError) Field() string                  { return "field" }
func (m *mockFieldError) StructField() string            { return "Field" }
func (m *mockFieldError) Value() interface{}             { return nil }
func (m *mockFieldError) Param() string                  { return m.param }
func (m *mockFieldError) Kind() reflect.Kind             { return m.kind }
func (m *mockFieldError) Type() reflect.Type             { return nil }
func (m *mockFieldError) Translate(ut.Translator) string { return "" }
func (m *mockFieldError) Error() string                  { return "" }
