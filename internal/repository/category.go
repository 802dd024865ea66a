package repository

import (
	"context"

	"github.com/deppfellow/projects/internal/database"
	"github.com/deppfellow/projects/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	insertCategorySQL = `
		INSERT INTO category (category_name)
		VALUES ($1)
		RETURNING category_id`

	fetchAllCategoriesSQL = `
		SELECT category_id, category_name
		FROM category
		ORDER BY category_name`
)

// CategoryRepository manages the category table. Categories exist on their
// own and are linked to projects when a project is inserted.
type CategoryRepository struct {
	provider database.Connector
}

// NewCategoryRepository returns a repository that opens a connection per call.
func NewCategoryRepository(provider database.Connector) *CategoryRepository {
	return &CategoryRepository{provider: provider}
}

// InsertCategory stores a category and sets its generated id. A duplicate
// name fails with a CATEGORY_ALREADY_EXISTS statement error.
func (r *CategoryRepository) InsertCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	var categoryID int

	err := database.WithTx(ctx, r.provider, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		categoryID, err = database.InsertReturningID(ctx, tx, insertCategorySQL, category.CategoryName)
		return err
	})
	if err != nil {
		return nil, err
	}

	category.CategoryID = categoryID
	return category, nil
}

// FetchAllCategories returns every category ordered by name.
func (r *CategoryRepository) FetchAllCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category

	err := database.WithTx(ctx, r.provider, database.ReadSnapshot, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fetchAllCategoriesSQL)
		if err != nil {
			return err
		}

		categories, err = pgx.CollectRows(rows, pgx.RowToStructByPos[model.Category])
		return err
	})
	if err != nil {
		return nil, err
	}

	return nonNil(categories), nil
}
