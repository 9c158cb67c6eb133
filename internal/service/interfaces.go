// Package service composes the generation, import, and persistence layers
// into the use cases the CLI and HTTP surfaces call.
package service

import (
	"context"

	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/repository"
)

// CreateProjectRequest is the user's project brief: free-text worldview and
// plot plus structured character cards.
type CreateProjectRequest struct {
	Title      string
	Worldview  string
	Plot       string
	Characters []domain.CharacterCard
}

type ProjectService interface {
	Get(ctx context.Context, id string) (*repository.ProjectRecord, error)
	Current(ctx context.Context) (*repository.ProjectRecord, error)
	List(ctx context.Context) ([]repository.ProjectMeta, error)
	Delete(ctx context.Context, id string) error
	SetCurrent(ctx context.Context, id string) error

	// Save persists an edited outline wholesale, after re-validating it.
	Save(ctx context.Context, rec *repository.ProjectRecord) error

	// ExportManifest returns the play-time projection of a stored project.
	ExportManifest(ctx context.Context, id string) (*domain.Manifest, error)
}

type GenerationService interface {
	// CreateProject runs the outline round, converts and validates the
	// result, and persists the new project as current.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*repository.ProjectRecord, error)

	// GenerateChapterDialogs runs the dialog round for one chapter of a
	// stored project, appends the lines to that chapter, and persists.
	GenerateChapterDialogs(ctx context.Context, projectID, chapterID string) ([]domain.Dialog, error)
}
