package model

import (
	"fmt"

	"github.com/deppfellow/projects/internal/validation"
	"github.com/shopspring/decimal"
)

// Material is something a project needs, optionally with a quantity and
// a unit cost.
type Material struct {
	MaterialID   int                 `json:"material_id"`
	ProjectID    int                 `json:"project_id"`
	MaterialName string              `json:"material_name" validate:"required,max=128"`
	NumRequired  *int                `json:"num_required,omitempty" validate:"omitempty,min=0"`
	Cost         decimal.NullDecimal `json:"cost"`
}

func (m Material) String() string {
	return fmt.Sprintf("ID=%d, materialName=%s, numRequired=%s, cost=%s",
		m.MaterialID, m.MaterialName, FormatInt(m.NumRequired), FormatHours(m.Cost))
}

// Step is one instruction of a project. Steps are kept in StepOrder.
type Step struct {
	StepID    int    `json:"step_id"`
	ProjectID int    `json:"project_id"`
	StepText  string `json:"step_text" validate:"required"`
	StepOrder int    `json:"step_order" validate:"min=1"`
}

func (s Step) String() string {
	return fmt.Sprintf("ID=%d, stepOrder=%d, stepText=%s", s.StepID, s.StepOrder, s.StepText)
}

// Category groups projects. Names are unique across the table.
type Category struct {
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name" validate:"required,max=128"`
}

func (c Category) String() string {
	return fmt.Sprintf("ID=%d, categoryName=%s", c.CategoryID, c.CategoryName)
}

// Validate checks the category name.
func (c *Category) Validate() error {
	return validation.Struct(c)
}
