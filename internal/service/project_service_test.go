package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessavero/fabula/internal/repository"
	"github.com/tessavero/fabula/internal/testutil"
)

func newProjectService(t *testing.T) (ProjectService, repository.ProjectRepo) {
	t.Helper()
	repo := repository.NewSQLiteProjectRepo(testutil.NewTestDB(t))
	return NewProjectService(repo), repo
}

func seedProject(t *testing.T, repo repository.ProjectRepo) *repository.ProjectRecord {
	t.Helper()
	outline := testutil.BranchingOutline()
	rec := &repository.ProjectRecord{ID: testutil.NewProjectID(), Title: outline.Config.Title, Outline: outline}
	require.NoError(t, repo.Save(context.Background(), rec))
	return rec
}

func TestProjectService_GetAndList(t *testing.T) {
	svc, repo := newProjectService(t)
	ctx := context.Background()

	rec := seedProject(t, repo)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	metas, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}

func TestProjectService_SaveRevalidates(t *testing.T) {
	svc, repo := newProjectService(t)
	ctx := context.Background()

	rec := seedProject(t, repo)

	// Break the graph: point a choice at a chapter that does not exist.
	rec.Outline.Chapters["chapter-1"].Choices[0].TargetChapterID = "chapter-void"

	err := svc.Save(ctx, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapter-void")

	// The stored copy is untouched.
	stored, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "chapter-2-left", stored.Outline.Chapters["chapter-1"].Choices[0].TargetChapterID)
}

func TestProjectService_SaveValidOutline(t *testing.T) {
	svc, repo := newProjectService(t)
	ctx := context.Background()

	rec := seedProject(t, repo)
	rec.Outline.Chapters["chapter-3"].Summary = "edited"

	require.NoError(t, svc.Save(ctx, rec))

	stored, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Outline.Chapters["chapter-3"].Summary)
}

func TestProjectService_CurrentAndDelete(t *testing.T) {
	svc, repo := newProjectService(t)
	ctx := context.Background()

	rec := seedProject(t, repo)
	require.NoError(t, svc.SetCurrent(ctx, rec.ID))

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, current.ID)

	require.NoError(t, svc.Delete(ctx, rec.ID))
	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, repository.ErrNoCurrent)
}

func TestProjectService_ExportManifest(t *testing.T) {
	svc, repo := newProjectService(t)
	ctx := context.Background()

	rec := seedProject(t, repo)

	manifest, err := svc.ExportManifest(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, "chapter-1", manifest.StartChapterID)
	assert.Equal(t, rec.Outline.Config.Worldview, manifest.Worldview)
	assert.Len(t, manifest.Chapters, 4)
}
