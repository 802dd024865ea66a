package service

import (
	"context"

	"github.com/deppfellow/projects/internal/model"
	"github.com/deppfellow/projects/internal/validation"
)

// CategoryStore is implemented by *repository.CategoryRepository.
type CategoryStore interface {
	InsertCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	FetchAllCategories(ctx context.Context) ([]model.Category, error)
}

// CategoryService validates categories before they are stored.
type CategoryService struct {
	store CategoryStore
}

// NewCategoryService wraps store.
func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// AddCategory validates category and inserts it.
func (s *CategoryService) AddCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if err := validation.Validate(category); err != nil {
		return nil, err
	}
	return s.store.InsertCategory(ctx, category)
}

func (s *CategoryService) FetchAllCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.FetchAllCategories(ctx)
}
