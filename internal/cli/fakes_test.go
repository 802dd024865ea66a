package cli

import (
	"context"
	"sort"

	"github.com/deppfellow/projects/internal/model"
)

// memoryStore is an in-memory service.ProjectStore.
type memoryStore struct {
	projects map[int]model.Project
	nextID   int
	err      error
	listed   int
}

func newMemoryStore(seed ...model.Project) *memoryStore {
	s := &memoryStore{projects: map[int]model.Project{}, nextID: 1}
	for _, p := range seed {
		p.ProjectID = s.nextID
		s.nextID++
		s.projects[p.ProjectID] = p
	}
	return s
}

func (s *memoryStore) InsertProject(_ context.Context, p *model.Project) (*model.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	p.ProjectID = s.nextID
	s.nextID++
	s.projects[p.ProjectID] = *p
	return p, nil
}

func (s *memoryStore) FetchAllProjects(context.Context) ([]model.Project, error) {
	s.listed++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectName < out[j].ProjectName })
	return out, nil
}

func (s *memoryStore) FetchProjectByID(_ context.Context, id int) (*model.Project, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (s *memoryStore) ModifyProjectDetails(_ context.Context, p *model.Project) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.projects[p.ProjectID]; !ok {
		return false, nil
	}
	s.projects[p.ProjectID] = *p
	return true, nil
}

func (s *memoryStore) DeleteProject(_ context.Context, id int) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.projects[id]; !ok {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}

type memoryCategories struct {
	categories []model.Category
}

func (s *memoryCategories) InsertCategory(_ context.Context, c *model.Category) (*model.Category, error) {
	c.CategoryID = len(s.categories) + 1
	s.categories = append(s.categories, *c)
	return c, nil
}

func (s *memoryCategories) FetchAllCategories(context.Context) ([]model.Category, error) {
	return s.categories, nil
}
