package service

import (
	"github.com/deppfellow/projects/internal/repository"
)

// Services is the container the console works with.
type Services struct {
	Projects   *ProjectService
	Categories *CategoryService
}

var (
	_ ProjectStore  = (*repository.ProjectRepository)(nil)
	_ CategoryStore = (*repository.CategoryRepository)(nil)
)

// NewServices builds every service on top of repos.
func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Projects:   NewProjectService(repos.Projects),
		Categories: NewCategoryService(repos.Categories),
	}
}
