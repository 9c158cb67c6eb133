package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tessavero/fabula/internal/domain"
)

// ErrProjectNotFound is returned when a lookup misses. ErrNoCurrent is
// returned by GetCurrent when no project has been marked current yet.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNoCurrent       = errors.New("no current project")
)

// ProjectRecord is a stored project: the outline aggregate plus its
// persistence identity. The outline itself is written wholesale as one
// JSON blob; there are no partial updates.
type ProjectRecord struct {
	ID        string
	Title     string
	Outline   *domain.ProjectOutline
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectMeta is the listing view: identity without the blob.
type ProjectMeta struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProjectRepo interface {
	// Save upserts the full record. CreatedAt is preserved on update;
	// UpdatedAt is set by the repository.
	Save(ctx context.Context, rec *ProjectRecord) error
	Get(ctx context.Context, id string) (*ProjectRecord, error)
	List(ctx context.Context) ([]ProjectMeta, error)
	Delete(ctx context.Context, id string) error

	// SetCurrent marks id as the active project; Delete clears the mark
	// when the deleted project holds it.
	SetCurrent(ctx context.Context, id string) error
	GetCurrent(ctx context.Context) (*ProjectRecord, error)
}
