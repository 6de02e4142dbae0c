// Package request decodes and validates incoming HTTP requests.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/auth"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode reads a JSON body into dst and validates its struct tags.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}

		return fmt.Errorf("%w: %v", httperr.ErrBadRequest, err)
	}

	return Validate(dst)
}

// Validate reports the first failed constraint as a *scalar.ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]

		return &scalar.ValidationError{Field: fe.Field(), Reason: reason(fe)}
	}

	return fmt.Errorf("%w: %v", httperr.ErrBadRequest, err)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "must not be longer than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be an email address"
	case "uuid":
		return "must be a UUID"
	default:
		return "is invalid"
	}
}

// AccountID is the account authenticated for r.
func AccountID(r *http.Request) string {
	id, _ := auth.AccountID(r.Context())
	return id
}

// PathUUID parses the named URL parameter as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &scalar.ValidationError{Field: name, Reason: "must be a UUID"}
	}

	return id, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, &scalar.ValidationError{Field: name, Reason: "must be a date in the form YYYY-MM-DD"}
	}

	return &t, nil
}

// QueryUUID parses an optional UUID query parameter.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, &scalar.ValidationError{Field: name, Reason: "must be a UUID"}
	}

	return &id, nil
}

// FormFile reads the named multipart file, refusing bodies above maxBytes.
func FormFile(w http.ResponseWriter, r *http.Request, name string, maxBytes int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", maxBytesErr
		}

		return nil, "", fmt.Errorf("%w: %v", httperr.ErrBadRequest, err)
	}

	file, header, err := r.FormFile(name)
	if err != nil {
		return nil, "", &scalar.ValidationError{Field: name, Reason: "is required"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}

	return data, header.Filename, nil
}
