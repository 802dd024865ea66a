package service

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/projects/internal/errs"
	"github.com/deppfellow/projects/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryStore struct {
	categories []model.Category
}

func (f *fakeCategoryStore) InsertCategory(_ context.Context, c *model.Category) (*model.Category, error) {
	c.CategoryID = len(f.categories) + 1
	f.categories = append(f.categories, *c)
	return c, nil
}

func (f *fakeCategoryStore) FetchAllCategories(context.Context) ([]model.Category, error) {
	return f.categories, nil
}

func TestCategoryService(t *testing.T) {
	store := &fakeCategoryStore{}
	svc := NewCategoryService(store)
	ctx := context.Background()

	added, err := svc.AddCategory(ctx, &model.Category{CategoryName: "Plumbing"})
	require.NoError(t, err)
	assert.Equal(t, 1, added.CategoryID)

	_, err = svc.AddCategory(ctx, &model.Category{})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	all, err := svc.FetchAllCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
