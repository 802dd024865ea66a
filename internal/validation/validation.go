// Package validation checks records before they reach the database.
//
// Struct tags (`validate:"required,max=128"`) are enforced with the
// validator library; rules that tags cannot express come back as
// CustomValidationErrors. Either form is turned into an errs.AppError of
// kind Validation with one FieldError per offending field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/projects/internal/errs"
	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by records that know how to validate
// themselves, usually by calling Struct and then adding custom checks.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a single issue that validator tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var validate = validator.New()

// Struct runs the tag rules on v.
func Struct(v any) error {
	return validate.Struct(v)
}

// Validate runs v.Validate and converts a failure into a validation AppError.
//
//	if err := validation.Validate(project); err != nil {
//		return nil, err
//	}
func Validate(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	msg, fieldErrors := extractValidationError(err)
	if fieldErrors == nil {
		return errs.ValidationError(err)
	}
	return errs.NewValidationError(msg, fieldErrors)
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, custom := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: custom.Field,
				Error: custom.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", nil
	}

	for _, fe := range validationErrors {
		field := fieldPath(fe)
		var msg string

		switch fe.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// strings compare length, numbers compare value
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fe.Param())
			}

		case "max":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fe.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fe.Param())

		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, fe.Tag(), fe.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, fe.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

// fieldPath turns "Project.Materials[0].MaterialName" into
// "materials[0].materialname". Top-level fields lose the struct prefix.
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return strings.ToLower(namespace)
}
