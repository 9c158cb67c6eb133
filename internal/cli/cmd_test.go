package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/repository"
	"github.com/tessavero/fabula/internal/service"
	"github.com/tessavero/fabula/internal/testutil"
)

// newTestApp wires real services over an in-memory database, with generation
// left nil (commands under test here never reach the vendor).
func newTestApp(t *testing.T) (*App, repository.ProjectRepo) {
	t.Helper()
	repo := repository.NewSQLiteProjectRepo(testutil.NewTestDB(t))
	app := &App{
		Projects:      service.NewProjectService(repo),
		IsInteractive: func() bool { return false },
	}
	return app, repo
}

func seedRecord(t *testing.T, repo repository.ProjectRepo, id string) *repository.ProjectRecord {
	t.Helper()
	outline := testutil.BranchingOutline()
	rec := &repository.ProjectRecord{ID: id, Title: outline.Config.Title, Outline: outline}
	require.NoError(t, repo.Save(context.Background(), rec))
	return rec
}

func runCommand(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProjectList(t *testing.T) {
	app, repo := newTestApp(t)
	seedRecord(t, repo, "project-alpha")

	out, err := runCommand(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "project-alpha")
}

func TestProjectShow_ResolvesPrefix(t *testing.T) {
	app, repo := newTestApp(t)
	rec := seedRecord(t, repo, "project-alpha")

	out, err := runCommand(t, app, "project", "show", "project-al")
	require.NoError(t, err)
	assert.Contains(t, out, rec.Title)
	assert.Contains(t, out, "chapter-1")
}

func TestProjectShow_AmbiguousPrefix(t *testing.T) {
	app, repo := newTestApp(t)
	seedRecord(t, repo, "project-alpha")
	seedRecord(t, repo, "project-altair")

	_, err := runCommand(t, app, "project", "show", "project-al")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestProjectShow_DefaultsToCurrent(t *testing.T) {
	app, repo := newTestApp(t)
	rec := seedRecord(t, repo, "project-alpha")
	require.NoError(t, repo.SetCurrent(context.Background(), rec.ID))

	out, err := runCommand(t, app, "project", "show")
	require.NoError(t, err)
	assert.Contains(t, out, rec.ID)
}

func TestProjectShow_NoCurrent(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := runCommand(t, app, "project", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project selected")
}

func TestProjectDelete_RequiresForce(t *testing.T) {
	app, repo := newTestApp(t)
	rec := seedRecord(t, repo, "project-alpha")

	_, err := runCommand(t, app, "project", "delete", rec.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = runCommand(t, app, "project", "delete", rec.ID, "--force")
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), rec.ID)
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)
}

func TestProjectUse(t *testing.T) {
	app, repo := newTestApp(t)
	rec := seedRecord(t, repo, "project-alpha")

	_, err := runCommand(t, app, "project", "use", rec.ID)
	require.NoError(t, err)

	current, err := repo.GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rec.ID, current.ID)
}

func TestProjectExport(t *testing.T) {
	app, repo := newTestApp(t)
	rec := seedRecord(t, repo, "project-alpha")

	out, err := runCommand(t, app, "project", "export", rec.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"startChapterId": "chapter-1"`)
	assert.NotContains(t, out, `"plot"`, "export is the manifest, not the authoring config")
}

func TestChapterList(t *testing.T) {
	app, repo := newTestApp(t)
	rec := seedRecord(t, repo, "project-alpha")
	require.NoError(t, repo.SetCurrent(context.Background(), rec.ID))

	out, err := runCommand(t, app, "chapter", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "chapter-2-left")
	assert.Contains(t, out, "The Clearing")
}

func TestChapterShow_UnknownChapter(t *testing.T) {
	app, repo := newTestApp(t)
	rec := seedRecord(t, repo, "project-alpha")
	require.NoError(t, repo.SetCurrent(context.Background(), rec.ID))

	_, err := runCommand(t, app, "chapter", "show", "chapter-404")
	require.Error(t, err)
}

func TestCreate_NonInteractiveNeedsFlags(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := runCommand(t, app, "create", "--title", "T")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worldview")
}

func TestParseCharacterFlag(t *testing.T) {
	card, err := parseCharacterFlag("Mara|keeper's daughter|stubborn|raised on the rock")
	require.NoError(t, err)
	assert.Equal(t, "Mara", card.Name)
	assert.Equal(t, "keeper's daughter", card.Description)
	assert.Equal(t, "stubborn", card.Personality)
	assert.Equal(t, "raised on the rock", card.Background)
	assert.True(t, domain.IsUserCharacterID(card.ID))

	_, err = parseCharacterFlag("|desc")
	require.Error(t, err)

	card, err = parseCharacterFlag("Tomas")
	require.NoError(t, err)
	assert.Equal(t, "Tomas", card.Name)
	assert.Empty(t, card.Description)
}
