package service

import (
	"context"

	"github.com/deppfellow/projects/internal/errs"
	"github.com/deppfellow/projects/internal/model"
	"github.com/deppfellow/projects/internal/validation"
)

// ProjectStore is the persistence the project service needs.
// *repository.ProjectRepository implements it.
type ProjectStore interface {
	InsertProject(ctx context.Context, project *model.Project) (*model.Project, error)
	FetchAllProjects(ctx context.Context) ([]model.Project, error)
	FetchProjectByID(ctx context.Context, projectID int) (*model.Project, bool, error)
	ModifyProjectDetails(ctx context.Context, project *model.Project) (bool, error)
	DeleteProject(ctx context.Context, projectID int) (bool, error)
}

// ProjectService turns absent rows into not-found errors and validates
// records before they are written.
type ProjectService struct {
	store ProjectStore
}

// NewProjectService wraps store.
func NewProjectService(store ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

// AddProject validates project and inserts it. Invalid records never reach
// the database.
func (s *ProjectService) AddProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	if err := validation.Validate(project); err != nil {
		return nil, err
	}
	return s.store.InsertProject(ctx, project)
}

func (s *ProjectService) FetchAllProjects(ctx context.Context) ([]model.Project, error) {
	return s.store.FetchAllProjects(ctx)
}

// FetchProjectByID returns the project with its children, or a not-found
// error naming projectID.
func (s *ProjectService) FetchProjectByID(ctx context.Context, projectID int) (*model.Project, error) {
	project, found, err := s.store.FetchProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("project", projectID)
	}
	return project, nil
}

// ModifyProjectDetails validates and updates project. The id must exist.
func (s *ProjectService) ModifyProjectDetails(ctx context.Context, project *model.Project) error {
	if err := validation.Validate(project); err != nil {
		return err
	}

	modified, err := s.store.ModifyProjectDetails(ctx, project)
	if err != nil {
		return err
	}
	if !modified {
		return errs.NewNotFoundError("project", project.ProjectID)
	}
	return nil
}

// DeleteProject deletes the project with projectID. The id must exist.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID int) error {
	deleted, err := s.store.DeleteProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.NewNotFoundError("project", projectID)
	}
	return nil
}
