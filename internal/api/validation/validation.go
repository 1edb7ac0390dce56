// Package validation turns request payloads into typed values or a list of
// field errors. Shape mismatches are reported in the result, never raised.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of parsing one payload: either OK with Data, or not
// OK with at least one FieldError.
type Result[T any] struct {
	OK          bool
	Data        T
	FieldErrors []FieldError
}

// Err returns nil for a successful result and an *Error otherwise.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Fields: r.FieldErrors}
}

// Error carries field errors through the echo error handler.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fail builds a failed result for a single field.
func Fail[T any](field, message string) Result[T] {
	return Result[T]{FieldErrors: []FieldError{{Field: field, Message: message}}}
}

// Schema validates values of T using struct tags plus optional normalisation
// and cross-field rules.
type Schema[T any] struct {
	v         *validator.Validate
	normalize func(*T)
	rules     []func(T) []FieldError
}

// Option configures a Schema.
type Option[T any] func(*Schema[T])

// WithNormalize runs fn on the value before tags are checked.
func WithNormalize[T any](fn func(*T)) Option[T] {
	return func(s *Schema[T]) { s.normalize = fn }
}

// WithRule adds a check that runs after tag validation succeeds.
func WithRule[T any](fn func(T) []FieldError) Option[T] {
	return func(s *Schema[T]) { s.rules = append(s.rules, fn) }
}

func NewSchema[T any](opts ...Option[T]) *Schema[T] {
	s := &Schema[T]{v: newValidator()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse normalises and validates in.
func (s *Schema[T]) Parse(in T) Result[T] {
	if s.normalize != nil {
		s.normalize(&in)
	}

	if err := s.v.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]FieldError, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, FieldError{Field: fe.Field(), Message: fieldError(fe)})
			}
			return Result[T]{Data: in, FieldErrors: fields}
		}
		return Result[T]{Data: in, FieldErrors: []FieldError{{Field: "body", Message: err.Error()}}}
	}

	for _, rule := range s.rules {
		if fields := rule(in); len(fields) > 0 {
			return Result[T]{Data: in, FieldErrors: fields}
		}
	}

	return Result[T]{OK: true, Data: in}
}

// newValidator reports fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "param", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
