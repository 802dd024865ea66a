package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/projects/internal/database"
	"github.com/deppfellow/projects/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	insertProjectSQL = `
		INSERT INTO project (project_name, estimated_hours, actual_hours, difficulty, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING project_id`

	insertMaterialSQL = `
		INSERT INTO material (project_id, material_name, num_required, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING material_id`

	insertStepSQL = `
		INSERT INTO step (project_id, step_text, step_order)
		VALUES ($1, $2, $3)
		RETURNING step_id`

	insertProjectCategorySQL = `
		INSERT INTO project_category (project_id, category_id)
		VALUES ($1, $2)`

	selectProjectColumns = `
		SELECT project_id, project_name, estimated_hours, actual_hours, difficulty, notes
		FROM project`

	fetchAllProjectsSQL = selectProjectColumns + ` ORDER BY project_name`

	fetchProjectByIDSQL = selectProjectColumns + ` WHERE project_id = $1`

	fetchMaterialsSQL = `
		SELECT material_id, project_id, material_name, num_required, cost
		FROM material
		WHERE project_id = $1
		ORDER BY material_id`

	fetchStepsSQL = `
		SELECT step_id, project_id, step_text, step_order
		FROM step
		WHERE project_id = $1
		ORDER BY step_order`

	fetchCategoriesSQL = `
		SELECT c.category_id, c.category_name
		FROM category c
		JOIN project_category pc USING (category_id)
		WHERE pc.project_id = $1
		ORDER BY c.category_name`

	modifyProjectSQL = `
		UPDATE project SET
			project_name = $1,
			estimated_hours = $2,
			actual_hours = $3,
			difficulty = $4,
			notes = $5
		WHERE project_id = $6`

	deleteProjectSQL = `DELETE FROM project WHERE project_id = $1`
)

// ProjectRepository reads and writes the project table and its children.
type ProjectRepository struct {
	provider database.Connector
}

// NewProjectRepository returns a repository that opens a connection per call.
func NewProjectRepository(provider database.Connector) *ProjectRepository {
	return &ProjectRepository{provider: provider}
}

// InsertProject stores project and any materials, steps and category links
// it carries, all in one transaction. A failing child leaves no project row.
//
// On success the generated ids are set on project and its children, and
// project itself is returned.
func (r *ProjectRepository) InsertProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	project.EstimatedHours = roundHours(project.EstimatedHours)
	project.ActualHours = roundHours(project.ActualHours)

	var (
		projectID   int
		materialIDs = make([]int, len(project.Materials))
		stepIDs     = make([]int, len(project.Steps))
	)

	err := database.WithTx(ctx, r.provider, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		projectID, err = database.InsertReturningID(ctx, tx, insertProjectSQL,
			project.ProjectName,
			database.NullableDecimal(project.EstimatedHours),
			database.NullableDecimal(project.ActualHours),
			database.NullableInt(project.Difficulty),
			database.NullableString(project.Notes),
		)
		if err != nil {
			return err
		}

		for i, material := range project.Materials {
			materialIDs[i], err = database.InsertReturningID(ctx, tx, insertMaterialSQL,
				projectID,
				material.MaterialName,
				database.NullableInt(material.NumRequired),
				database.NullableDecimal(material.Cost),
			)
			if err != nil {
				return err
			}
		}

		for i, step := range project.Steps {
			stepIDs[i], err = database.InsertReturningID(ctx, tx, insertStepSQL,
				projectID, step.StepText, step.StepOrder)
			if err != nil {
				return err
			}
		}

		for _, category := range project.Categories {
			if _, err := tx.Exec(ctx, insertProjectCategorySQL, projectID, category.CategoryID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ids are only published once the transaction has committed.
	project.ProjectID = projectID
	for i := range project.Materials {
		project.Materials[i].MaterialID = materialIDs[i]
		project.Materials[i].ProjectID = projectID
		project.Materials[i].Cost = roundHours(project.Materials[i].Cost)
	}
	for i := range project.Steps {
		project.Steps[i].StepID = stepIDs[i]
		project.Steps[i].ProjectID = projectID
	}

	return project, nil
}

// FetchAllProjects returns every project ordered by name, without children.
func (r *ProjectRepository) FetchAllProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project

	err := database.WithTx(ctx, r.provider, database.ReadSnapshot, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fetchAllProjectsSQL)
		if err != nil {
			return err
		}

		projects, err = pgx.CollectRows(rows, scanProject)
		return err
	})
	if err != nil {
		return nil, err
	}

	return nonNil(projects), nil
}

// FetchProjectByID loads a project with its materials, steps and
// categories. A missing id is reported as (nil, false, nil) and no child
// query is issued.
//
// The four reads share one snapshot (database.ReadSnapshot), so a delete
// committed meanwhile is either fully visible or not at all.
func (r *ProjectRepository) FetchProjectByID(ctx context.Context, projectID int) (*model.Project, bool, error) {
	var (
		project model.Project
		found   bool
	)

	err := database.WithTx(ctx, r.provider, database.ReadSnapshot, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fetchProjectByIDSQL, projectID)
		if err != nil {
			return err
		}

		project, err = pgx.CollectExactlyOneRow(rows, scanProject)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		if project.Materials, err = fetchMaterials(ctx, tx, projectID); err != nil {
			return err
		}
		if project.Steps, err = fetchSteps(ctx, tx, projectID); err != nil {
			return err
		}
		project.Categories, err = fetchCategories(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	return &project, true, nil
}

// ModifyProjectDetails updates the five mutable columns of the project
// with project.ProjectID. Children are not touched.
//
// It reports false when no row has that id.
func (r *ProjectRepository) ModifyProjectDetails(ctx context.Context, project *model.Project) (bool, error) {
	project.EstimatedHours = roundHours(project.EstimatedHours)
	project.ActualHours = roundHours(project.ActualHours)

	var modified bool

	err := database.WithTx(ctx, r.provider, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, modifyProjectSQL,
			project.ProjectName,
			database.NullableDecimal(project.EstimatedHours),
			database.NullableDecimal(project.ActualHours),
			database.NullableInt(project.Difficulty),
			database.NullableString(project.Notes),
			project.ProjectID,
		)
		if err != nil {
			return err
		}

		modified, err = affectedOne(tag, "project", project.ProjectID)
		return err
	})
	if err != nil {
		return false, err
	}

	return modified, nil
}

// DeleteProject removes a project. Materials, steps and category links go
// with it through ON DELETE CASCADE.
//
// It reports false when no row has that id.
func (r *ProjectRepository) DeleteProject(ctx context.Context, projectID int) (bool, error) {
	var deleted bool

	err := database.WithTx(ctx, r.provider, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteProjectSQL, projectID)
		if err != nil {
			return err
		}

		deleted, err = affectedOne(tag, "project", projectID)
		return err
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func scanProject(row pgx.CollectableRow) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ProjectID, &p.ProjectName, &p.EstimatedHours, &p.ActualHours, &p.Difficulty, &p.Notes)
	return p, err
}

func fetchMaterials(ctx context.Context, tx pgx.Tx, projectID int) ([]model.Material, error) {
	rows, err := tx.Query(ctx, fetchMaterialsSQL, projectID)
	if err != nil {
		return nil, err
	}

	materials, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Material, error) {
		var m model.Material
		err := row.Scan(&m.MaterialID, &m.ProjectID, &m.MaterialName, &m.NumRequired, &m.Cost)
		return m, err
	})
	return nonNil(materials), err
}

func fetchSteps(ctx context.Context, tx pgx.Tx, projectID int) ([]model.Step, error) {
	rows, err := tx.Query(ctx, fetchStepsSQL, projectID)
	if err != nil {
		return nil, err
	}

	steps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Step, error) {
		var s model.Step
		err := row.Scan(&s.StepID, &s.ProjectID, &s.StepText, &s.StepOrder)
		return s, err
	})
	return nonNil(steps), err
}

func fetchCategories(ctx context.Context, tx pgx.Tx, projectID int) ([]model.Category, error) {
	rows, err := tx.Query(ctx, fetchCategoriesSQL, projectID)
	if err != nil {
		return nil, err
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Category])
	return nonNil(categories), err
}
