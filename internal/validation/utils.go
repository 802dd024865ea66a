package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deppfellow/projects/internal/errs"
	"github.com/shopspring/decimal"
)

// ParseOptionalString trims input. Blank input means "no value" and yields nil.
func ParseOptionalString(input string) *string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ParseOptionalInt converts console input to an integer.
//
// Blank input yields (nil, nil). Anything that is not a whole number is a
// validation error naming both the input and the field.
func ParseOptionalInt(field, input string) (*int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, errs.NewValidationError(
			fmt.Sprintf("%s is not a valid number.", trimmed),
			[]errs.FieldError{{Field: field, Error: "must be a whole number"}},
		)
	}
	return &value, nil
}

// ParseOptionalDecimal converts console input to a decimal rounded to two
// fractional digits.
//
//	"10"     -> 10.00
//	"2.345"  -> 2.35
//	""       -> NULL
func ParseOptionalDecimal(field, input string) (decimal.NullDecimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.NullDecimal{}, nil
	}

	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.NullDecimal{}, errs.NewValidationError(
			fmt.Sprintf("%s is not a valid decimal number.", trimmed),
			[]errs.FieldError{{Field: field, Error: "must be a decimal number"}},
		)
	}
	return decimal.NewNullDecimal(value.Round(2)), nil
}

// ParseID converts a required identifier argument.
func ParseID(input string) (int, error) {
	id, err := ParseOptionalInt("id", input)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, errs.NewValidationError("A project ID is required.",
			[]errs.FieldError{{Field: "id", Error: "is required"}})
	}
	return *id, nil
}
