package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/intelligence"
	"github.com/tessavero/fabula/internal/llm"
	"github.com/tessavero/fabula/internal/repository"
	"github.com/tessavero/fabula/internal/testutil"
)

type fakeGenerator struct {
	text string
	err  error
	last llm.GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Text: f.text, Model: "glm-4.7"}, nil
}

const outlineText = `{
	"characters": [
		{"id": "char-1", "name": "Renamed By AI", "description": "hijacked", "personality": "", "background": ""},
		{"id": "ai-char-1", "name": "Rival", "description": "a rival", "personality": "sharp", "background": ""}
	],
	"backgrounds": [{"id": "bg-1", "url": "", "description": "a harbor at dusk"}],
	"chapters": [
		{"id": "chapter-1", "title": "Arrival", "summary": "The ship docks.",
		 "keyEvents": ["Docking"], "involvedCharacters": ["char-1"], "backgroundId": "bg-1",
		 "nextChapterId": null,
		 "choices": [
			{"text": "Bribe the guard", "targetChapterId": "chapter-2-bribe"},
			{"text": "Sneak past", "targetChapterId": "chapter-2-sneak"}
		 ]},
		{"id": "chapter-2-bribe", "title": "Coin", "summary": "Money talks.",
		 "keyEvents": [], "involvedCharacters": [], "backgroundId": "bg-1", "nextChapterId": null, "choices": []},
		{"id": "chapter-2-sneak", "title": "Shadow", "summary": "Quiet feet.",
		 "keyEvents": [], "involvedCharacters": [], "backgroundId": "bg-1", "nextChapterId": null, "choices": []}
	]
}`

func createRequest() CreateProjectRequest {
	return CreateProjectRequest{
		Title:     "Harbor Story",
		Worldview: "A smuggler port.",
		Plot:      "Get the cargo ashore.",
		Characters: []domain.CharacterCard{
			{ID: "char-1", Name: "Juno", Description: "a smuggler", Personality: "wry"},
		},
	}
}

func newGenerationService(t *testing.T, gen *fakeGenerator) (GenerationService, repository.ProjectRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteProjectRepo(database)
	svc := NewGenerationService(
		intelligence.NewOutlineService(gen),
		intelligence.NewDialogService(gen),
		repo,
		testutil.NewTestUoW(database),
	)
	return svc, repo
}

func TestCreateProject(t *testing.T) {
	gen := &fakeGenerator{text: outlineText}
	svc, repo := newGenerationService(t, gen)
	ctx := context.Background()

	rec, err := svc.CreateProject(ctx, createRequest())
	require.NoError(t, err)

	assert.Equal(t, "Harbor Story", rec.Title)
	assert.Equal(t, "chapter-1", rec.Outline.StartChapterID)
	assert.Len(t, rec.Outline.Chapters, 3)

	// The user's card survives the AI's rename attempt.
	juno := rec.Outline.Characters["char-1"]
	require.NotNil(t, juno)
	assert.Equal(t, "Juno", juno.Name)
	assert.True(t, juno.IsUserCreated)

	// The new project is persisted and marked current.
	current, err := repo.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, current.ID)

	assert.Contains(t, gen.last.UserPrompt, "Harbor Story")
	assert.Equal(t, llm.TaskOutline, gen.last.Task)
}

func TestCreateProject_VendorFailureLeavesNothingBehind(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrVendorUnavailable}
	svc, repo := newGenerationService(t, gen)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, createRequest())
	require.ErrorIs(t, err, llm.ErrVendorUnavailable)

	metas, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestCreateProject_InvalidOutlineRejected(t *testing.T) {
	gen := &fakeGenerator{text: `{"characters": [], "backgrounds": [], "chapters": []}`}
	svc, _ := newGenerationService(t, gen)

	_, err := svc.CreateProject(context.Background(), createRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrInvalidOutput)
}

func TestCreateProject_PersistFailureRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteProjectRepo(database)
	boom := errors.New("disk full")
	svc := NewGenerationService(
		intelligence.NewOutlineService(&fakeGenerator{text: outlineText}),
		intelligence.NewDialogService(&fakeGenerator{}),
		repo,
		// Save is the first exec, SetCurrent the second.
		&testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: boom},
	)

	_, err := svc.CreateProject(context.Background(), createRequest())
	require.ErrorIs(t, err, boom)

	metas, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, metas, "failed create must not leave a project row")
}

func TestGenerateChapterDialogs(t *testing.T) {
	gen := &fakeGenerator{text: `{"dialogs": [
		{"id": "dialog-10", "roleId": "", "text": "The trees part."},
		{"id": "dialog-11", "roleId": "char-1", "text": "Almost there."}
	]}`}
	svc, repo := newGenerationService(t, gen)
	ctx := context.Background()

	outline := testutil.BranchingOutline()
	id := testutil.NewProjectID()
	require.NoError(t, repo.Save(ctx, &repository.ProjectRecord{ID: id, Title: outline.Config.Title, Outline: outline}))

	dialogs, err := svc.GenerateChapterDialogs(ctx, id, "chapter-2-left")
	require.NoError(t, err)
	require.Len(t, dialogs, 2)

	// Lines are appended after the chapter's existing dialog and persisted.
	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	got := stored.Outline.Chapters["chapter-2-left"].Dialogs
	require.Len(t, got, 3)
	assert.Equal(t, "Almost there.", got[2].Text)

	// The prompt carries the previous chapter in authoring order.
	assert.Equal(t, llm.TaskDialogs, gen.last.Task)
	assert.Contains(t, gen.last.UserPrompt, "A choice is made.")
	assert.Contains(t, gen.last.UserPrompt, "Hero: Which way?")
}

func TestGenerateChapterDialogs_UnknownChapter(t *testing.T) {
	svc, repo := newGenerationService(t, &fakeGenerator{})
	ctx := context.Background()

	id := testutil.NewProjectID()
	require.NoError(t, repo.Save(ctx, &repository.ProjectRecord{ID: id, Title: "t", Outline: testutil.BranchingOutline()}))

	_, err := svc.GenerateChapterDialogs(ctx, id, "chapter-99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapter-99")
}

func TestGenerateChapterDialogs_UnknownProject(t *testing.T) {
	svc, _ := newGenerationService(t, &fakeGenerator{})
	_, err := svc.GenerateChapterDialogs(context.Background(), "nope", "chapter-1")
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)
}

func TestBuildDialogsRequest_BranchTargetsByTitle(t *testing.T) {
	outline := testutil.BranchingOutline()

	req := buildDialogsRequest(outline, outline.Chapters["chapter-1"])

	require.Len(t, req.Choices, 2)
	assert.Equal(t, "Left Path", req.Choices[0].TargetChapterTitle)
	assert.Equal(t, "Right Path", req.Choices[1].TargetChapterTitle)
	assert.Empty(t, req.PreviousDialogs, "start chapter has no history")
	assert.Equal(t, "a crossroads", req.BackgroundDescription)
}

func TestBuildDialogsRequest_LinearNextTitle(t *testing.T) {
	outline := testutil.BranchingOutline()

	req := buildDialogsRequest(outline, outline.Chapters["chapter-2-left"])

	assert.Equal(t, "The Clearing", req.NextChapterTitle)
	assert.Empty(t, req.Choices)
	assert.Equal(t, "A choice is made.", req.PreviousChapterSummary)
}
