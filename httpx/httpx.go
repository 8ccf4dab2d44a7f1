// Package httpx holds the small request/response helpers shared by every handler:
// JSON encoding, the error envelope and DTO decoding with struct-tag validation.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/logging"
)

// maxJSONBody caps JSON request bodies; uploads go through multipart instead.
const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// WriteJSON encodes data with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing left to do but drop the body.
		return
	}
}

// WriteError converts err into the error envelope. Internal errors are
// logged with their cause and surfaced as a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.FromError(err)
	l := logging.FromContext(r.Context())
	if appErr.IsInternal() {
		l.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
	} else {
		l.Debug("request rejected", zap.String("code", appErr.Code), zap.String("reason", appErr.Error()))
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// DecodeJSON decodes the request body into dst and runs struct validation on it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewBadRequestError("request body is required", err)
		}
		return apperror.NewBadRequestError("invalid request body", err)
	}
	return Validate(dst)
}

// Validate runs the `validate` struct tags of v.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError("invalid request", err)
	}
	details := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperror.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apperror.NewValidationError("invalid input", details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
