// Package errs defines the application's error taxonomy.
//
// Every failure that crosses a layer boundary is an *AppError carrying a
// Kind (connection, statement, not found, validation, inconsistency), a
// machine-friendly Code, a human message and, where there is one, the
// low-level cause.
//
//   - Keep driver errors out of the console: they are always wrapped.
//   - Support field-level validation errors for user input.
//   - Play nicely with Go's standard errors package (Is / As / Unwrap).
package errs

import (
	"fmt"
	"strings"
)

// Kind classifies an AppError.
type Kind string

const (
	// KindConnection means the store could not be reached or authenticated.
	KindConnection Kind = "connection"

	// KindStatement means a statement failed and its transaction was rolled back.
	KindStatement Kind = "statement"

	// KindNotFound means an identifier did not match any row.
	KindNotFound Kind = "not_found"

	// KindValidation means caller input could not be parsed or validated.
	KindValidation Kind = "validation"

	// KindInconsistency means a keyed mutation touched more than one row.
	KindInconsistency Kind = "inconsistency"
)

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "difficulty", "error": "must not exceed 5" }
type FieldError struct {
	// Field is the field name/key the error relates to (e.g. "difficulty").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// AppError is the main custom error type.
//
// Fields:
//   - Kind: taxonomy bucket, used by errors.Is.
//   - Code: machine-friendly code (e.g. "PROJECT_NOT_FOUND").
//   - Message: human-friendly message printed by the console.
//   - Errors: per-field validation errors.
//   - Cause: the wrapped low-level error, if any.
type AppError struct {
	Kind    Kind         `json:"kind"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Cause   error        `json:"-"`
}

// Error returns the message, followed by field errors and cause when present.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			parts = append(parts, fmt.Sprintf("%s %s", fe.Field, fe.Error))
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, "; "))
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError of the same Kind.
//
// This does NOT compare Code or Message, so the package-level sentinels
// (ErrNotFound, ErrConnection...) match any error of their kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy of this AppError with Message replaced.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: message,
		Errors:  e.Errors,
		Cause:   e.Cause,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"not found" -> "NOT_FOUND"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
