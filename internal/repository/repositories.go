package repository

import (
	"github.com/deppfellow/projects/internal/database"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Projects   *ProjectRepository
	Categories *CategoryRepository
}

// NewRepositories builds every repository on top of one connection provider.
func NewRepositories(provider database.Connector) *Repositories {
	return &Repositories{
		Projects:   NewProjectRepository(provider),
		Categories: NewCategoryRepository(provider),
	}
}
