// Package validate checks decoded form payloads with go-playground/validator
// and reports failures per form field.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/devmarvs/jokebox/apperr"
)

// FieldError describes a validation failure for a field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors holds multiple field errors.
type Errors struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *Errors) Error() string {
	return "validation failed"
}

// Map returns the first message per field, suitable for apperr.Error.Fields.
func (e *Errors) Map() map[string]string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, field := range e.Fields {
		if _, ok := out[field.Field]; ok {
			continue
		}
		out[field.Field] = field.Message
	}
	return out
}

// As extracts validation errors if present.
func As(err error) (*Errors, bool) {
	if err == nil {
		return nil, false
	}
	var verr *Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(fieldName)
	})
	return instance
}

// Struct validates struct fields using `validate` tags.
//
// Field names come from the `form` tag, then `json`, then the Go name. A
// `message` tag replaces the generated text for every rule on that field.
// Failures are returned as an apperr validation error wrapping *Errors.
func Struct(value any) error {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := engine().Struct(value)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}

	verr := &Errors{Fields: make([]FieldError, 0, len(failures))}
	for _, failure := range failures {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   failure.Field(),
			Message: message(rv.Type(), failure),
		})
	}
	appErr := apperr.Validation("validation failed", verr.Map())
	appErr.Cause = verr
	return appErr
}

func fieldName(field reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		tag := field.Tag.Get(key)
		if tag == "" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return "-"
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

func message(rt reflect.Type, failure validator.FieldError) string {
	if field, ok := rt.FieldByName(failure.StructField()); ok {
		if msg := field.Tag.Get("message"); msg != "" {
			return msg
		}
	}

	name := failure.Field()
	switch failure.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if failure.Kind() == reflect.String {
			return name + " is too short"
		}
		return name + " must be at least " + failure.Param()
	case "max":
		if failure.Kind() == reflect.String {
			return name + " is too long"
		}
		return name + " must be at most " + failure.Param()
	case "email":
		return name + " must be a valid email"
	case "oneof":
		return name + " must be one of " + failure.Param()
	default:
		return name + " is invalid"
	}
}
