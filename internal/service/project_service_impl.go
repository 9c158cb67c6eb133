package service

import (
	"context"
	"fmt"

	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
}

func NewProjectService(projects repository.ProjectRepo) ProjectService {
	return &projectService{projects: projects}
}

func (s *projectService) Get(ctx context.Context, id string) (*repository.ProjectRecord, error) {
	return s.projects.Get(ctx, id)
}

func (s *projectService) Current(ctx context.Context) (*repository.ProjectRecord, error) {
	return s.projects.GetCurrent(ctx)
}

func (s *projectService) List(ctx context.Context) ([]repository.ProjectMeta, error) {
	return s.projects.List(ctx)
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

func (s *projectService) SetCurrent(ctx context.Context, id string) error {
	return s.projects.SetCurrent(ctx, id)
}

func (s *projectService) Save(ctx context.Context, rec *repository.ProjectRecord) error {
	if rec.Outline == nil {
		return fmt.Errorf("saving project: outline is nil")
	}
	if errs := rec.Outline.Validate(); len(errs) > 0 {
		return formatValidationErrors(errs)
	}
	return s.projects.Save(ctx, rec)
}

func (s *projectService) ExportManifest(ctx context.Context, id string) (*domain.Manifest, error) {
	rec, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Outline.ToManifest(), nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("project validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
