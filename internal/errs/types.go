package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. They compare by Kind only.
var (
	ErrConnection    = &AppError{Kind: KindConnection}
	ErrStatement     = &AppError{Kind: KindStatement}
	ErrNotFound      = &AppError{Kind: KindNotFound}
	ErrValidation    = &AppError{Kind: KindValidation}
	ErrInconsistency = &AppError{Kind: KindInconsistency}
)

// NewConnectionError wraps a failure to open a database connection.
func NewConnectionError(message string, cause error) *AppError {
	return &AppError{
		Kind:    KindConnection,
		Code:    MakeUpperCaseWithUnderscores("connection failed"),
		Message: message,
		Cause:   cause,
	}
}

// NewStatementError wraps a failed statement.
//
// code is optional: if nil it defaults to "STATEMENT_FAILED". The sqlerr
// package passes table-derived codes such as "PROJECT_REQUIRED".
func NewStatementError(message string, code *string, cause error) *AppError {
	formattedCode := MakeUpperCaseWithUnderscores("statement failed")
	if code != nil {
		formattedCode = *code
	}

	return &AppError{
		Kind:    KindStatement,
		Code:    formattedCode,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError reports an identifier that does not match any row.
func NewNotFoundError(entity string, id int) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    MakeUpperCaseWithUnderscores(entity + " not found"),
		Message: fmt.Sprintf("%s with ID=%d does not exist.", capitalize(entity), id),
	}
}

// NewValidationError reports unparseable or invalid input.
func NewValidationError(message string, fieldErrors []FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    MakeUpperCaseWithUnderscores("validation failed"),
		Message: message,
		Errors:  fieldErrors,
	}
}

// NewInconsistencyError reports a keyed mutation that matched several rows.
// It means the unique-identifier invariant is broken and must never be
// accepted silently.
func NewInconsistencyError(entity string, id int, rows int64) *AppError {
	return &AppError{
		Kind:    KindInconsistency,
		Code:    MakeUpperCaseWithUnderscores(entity + " inconsistent"),
		Message: fmt.Sprintf("%d %s rows matched ID=%d, expected at most one", rows, entity, id),
	}
}

// ValidationError converts a generic validation error into an AppError.
//
//	return errs.ValidationError(err)
func ValidationError(err error) *AppError {
	return NewValidationError("Validation failed: "+err.Error(), nil)
}

// KindOf reports the Kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
