// Package handlers exposes the services over HTTP with gin.
package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/rentroll/internal/authz"
	apierrors "github.com/stwalsh4118/rentroll/internal/errors"
	"github.com/stwalsh4118/rentroll/internal/middleware"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// respondError maps a service error onto the API error envelope. Errors
// without a sentinel are answered with a 500 carrying fallback.
func respondError(c *gin.Context, err error, fallback string) {
	msg := services.Message(err)
	switch {
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, msg)
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, msg)
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, msg)
	case errors.Is(err, services.ErrBadRequest):
		apierrors.BadRequest(c, msg, nil)
	case errors.Is(err, services.ErrUnauthorized):
		apierrors.Unauthorized(c, msg)
	case errors.Is(err, services.ErrNotConfigured):
		apierrors.InternalServerError(c, msg, err)
	default:
		_ = c.Error(err)
		apierrors.InternalServerError(c, fallback, err)
	}
}

// bindJSON decodes and validates the request body into dst. It writes the
// error response itself and reports whether the handler may continue.
// Malformed JSON is a 400; well-formed bodies with wrongly typed or
// unparseable fields are a 422 like any other validation failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindBodyWith(dst, binding.JSON)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrors):
		apierrors.ValidationError(c, validationErrors)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		apierrors.InvalidFields(c, map[string]interface{}{
			field: "Must be " + jsonKind(typeErr.Type),
		})
	case errors.Is(err, services.ErrInvalidDate):
		body, _ := c.Get(gin.BodyBytesKey)
		raw, _ := body.([]byte)
		details := invalidDates(raw, dst)
		if len(details) == 0 {
			details["body"] = err.Error()
		}
		apierrors.InvalidFields(c, details)
	default:
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{
			"body": err.Error(),
		})
	}
	return false
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "a list"
	}
	return "an object"
}

var dateTimeType = reflect.TypeOf(services.DateTime{})

// invalidDates reports the date fields of dst whose raw values do not parse.
func invalidDates(body []byte, dst interface{}) map[string]interface{} {
	details := map[string]interface{}{}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(body, &values); err != nil {
		return details
	}
	collectInvalidDates(reflect.TypeOf(dst), values, details)
	return details
}

func collectInvalidDates(t reflect.Type, values map[string]json.RawMessage, details map[string]interface{}) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		ft := f.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if f.Anonymous {
			collectInvalidDates(ft, values, details)
			continue
		}
		if ft != dateTimeType {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}
		raw, ok := values[name]
		if !ok || string(raw) == "null" {
			continue
		}
		var d services.DateTime
		if err := d.UnmarshalJSON(raw); err != nil {
			details[name] = "Must be a valid date"
		}
	}
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name, map[string]interface{}{
			name: c.Param(name),
		})
		return 0, false
	}
	return uint(id), true
}

// currentActor returns the actor stored by the auth middleware.
func currentActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return actor, ok
}
