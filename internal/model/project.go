// Package model holds the records stored in the projects database.
//
// Optional columns use pointers (text and integers) or decimal.NullDecimal
// (hours and costs) so that SQL NULL survives a round trip.
package model

import (
	"fmt"
	"strings"

	"github.com/deppfellow/projects/internal/validation"
	"github.com/shopspring/decimal"
)

// Project is a row of the project table plus, on a full fetch, its
// children. Materials, Steps and Categories are display-only: updates never
// touch them.
type Project struct {
	ProjectID      int                 `json:"project_id"`
	ProjectName    string              `json:"project_name" validate:"required,max=128"`
	EstimatedHours decimal.NullDecimal `json:"estimated_hours"`
	ActualHours    decimal.NullDecimal `json:"actual_hours"`
	Difficulty     *int                `json:"difficulty,omitempty" validate:"omitempty,min=1,max=5"`
	Notes          *string             `json:"notes,omitempty"`

	Materials  []Material `json:"materials,omitempty" validate:"dive"`
	Steps      []Step     `json:"steps,omitempty" validate:"dive"`
	Categories []Category `json:"categories,omitempty"`
}

// Validate checks struct tags first, then the rules tags cannot express.
func (p *Project) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}

	var custom validation.CustomValidationErrors
	if isNegative(p.EstimatedHours) {
		custom = append(custom, validation.CustomValidationError{Field: "estimatedhours", Message: "must not be negative"})
	}
	if isNegative(p.ActualHours) {
		custom = append(custom, validation.CustomValidationError{Field: "actualhours", Message: "must not be negative"})
	}
	for i, material := range p.Materials {
		if isNegative(material.Cost) {
			custom = append(custom, validation.CustomValidationError{
				Field:   fmt.Sprintf("materials[%d].cost", i),
				Message: "must not be negative",
			})
		}
	}
	if len(custom) > 0 {
		return custom
	}

	return nil
}

// String renders the project the way the console prints it.
//
//	ID=1
//	   name=Hang a door
//	   estimatedHours=4.00
//	   actualHours=3.50
//	   difficulty=3
//	   notes=Use the new hinges
//
// Children follow in their own sections when present.
func (p Project) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n   ID=%d", p.ProjectID)
	fmt.Fprintf(&b, "\n   name=%s", p.ProjectName)
	fmt.Fprintf(&b, "\n   estimatedHours=%s", FormatHours(p.EstimatedHours))
	fmt.Fprintf(&b, "\n   actualHours=%s", FormatHours(p.ActualHours))
	fmt.Fprintf(&b, "\n   difficulty=%s", FormatInt(p.Difficulty))
	fmt.Fprintf(&b, "\n   notes=%s", FormatString(p.Notes))

	if len(p.Materials) > 0 {
		b.WriteString("\n   Materials:")
		for _, material := range p.Materials {
			fmt.Fprintf(&b, "\n      %s", material)
		}
	}

	if len(p.Steps) > 0 {
		b.WriteString("\n   Steps:")
		for _, step := range p.Steps {
			fmt.Fprintf(&b, "\n      %s", step)
		}
	}

	if len(p.Categories) > 0 {
		b.WriteString("\n   Categories:")
		for _, category := range p.Categories {
			fmt.Fprintf(&b, "\n      %s", category)
		}
	}

	return b.String()
}

// FormatHours renders a nullable decimal with exactly two fractional
// digits, or "null".
//
//	10   -> "10.00"
//	2.5  -> "2.50"
func FormatHours(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return d.Decimal.StringFixed(2)
}

// FormatInt renders a nullable integer, or "null".
func FormatInt(i *int) string {
	if i == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *i)
}

// FormatString renders a nullable string, or "null".
func FormatString(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

func isNegative(d decimal.NullDecimal) bool {
	return d.Valid && d.Decimal.IsNegative()
}
