package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tessavero/fabula/internal/db"
	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/editor"
	"github.com/tessavero/fabula/internal/importer"
	"github.com/tessavero/fabula/internal/intelligence"
	"github.com/tessavero/fabula/internal/repository"
)

type generationService struct {
	outline  *intelligence.OutlineService
	dialogs  *intelligence.DialogService
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewGenerationService(
	outline *intelligence.OutlineService,
	dialogs *intelligence.DialogService,
	projects repository.ProjectRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) GenerationService {
	return &generationService{
		outline:  outline,
		dialogs:  dialogs,
		projects: projects,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *generationService) CreateProject(ctx context.Context, req CreateProjectRequest) (rec *repository.ProjectRecord, err error) {
	started := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create_project",
			Duration:  time.Since(started),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"title": req.Title},
			StartedAt: started,
		})
	}()

	config := domain.ProjectConfig{
		Title:      req.Title,
		Worldview:  req.Worldview,
		Characters: intelligence.CharactersText(req.Characters),
		Plot:       req.Plot,
	}

	schema, err := s.outline.Generate(ctx, intelligence.OutlineRequest{
		Title:      config.Title,
		Worldview:  config.Worldview,
		Characters: config.Characters,
		Plot:       config.Plot,
	})
	if err != nil {
		return nil, err
	}

	outline, err := importer.ToProjectOutline(schema, config, req.Characters)
	if err != nil {
		return nil, err
	}
	if errs := outline.Validate(); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	rec = &repository.ProjectRecord{
		ID:      "project-" + uuid.NewString()[:8],
		Title:   config.Title,
		Outline: outline,
	}

	// A new project is saved and marked current in one transaction.
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		if err := txProjects.Save(ctx, rec); err != nil {
			return err
		}
		return txProjects.SetCurrent(ctx, rec.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.projects.Get(ctx, rec.ID)
}

func (s *generationService) GenerateChapterDialogs(ctx context.Context, projectID, chapterID string) (dialogs []domain.Dialog, err error) {
	started := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "generate_dialogs",
			Duration:  time.Since(started),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"project": projectID, "chapter": chapterID},
			StartedAt: started,
		})
	}()

	rec, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	chapter, ok := rec.Outline.Chapters[chapterID]
	if !ok {
		return nil, fmt.Errorf("chapter %q not found in project %s", chapterID, projectID)
	}

	req := buildDialogsRequest(rec.Outline, chapter)
	dialogs, err = s.dialogs.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	// The append goes through the editor store so the chapter is re-checked
	// against the graph invariants before it is persisted.
	store := editor.NewStore()
	store.Load(rec.Outline)
	if err := store.AppendDialogs(chapterID, dialogs); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteProjectRepo(tx).Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return dialogs, nil
}

// buildDialogsRequest assembles the screenwriter round's context from the
// stored outline: full cast, the chapter's brief, branch targets rendered by
// title, and the tail of the previous chapter in authoring order.
func buildDialogsRequest(outline *domain.ProjectOutline, chapter *domain.Chapter) intelligence.DialogsRequest {
	req := intelligence.DialogsRequest{
		ProjectTitle:         outline.Config.Title,
		Worldview:            outline.Config.Worldview,
		OverallPlot:          outline.Config.Plot,
		Characters:           characterContexts(outline),
		ChapterID:            chapter.ID,
		ChapterTitle:         chapter.Title,
		ChapterSummary:       chapter.Summary,
		KeyEvents:            chapter.KeyEvents,
		InvolvedCharacterIDs: chapter.InvolvedCharacters,
	}

	if bg, ok := outline.Backgrounds[chapter.BackgroundID]; ok {
		req.BackgroundDescription = bg.Description
	}
	if next, ok := outline.Chapters[chapter.NextChapterID]; ok {
		req.NextChapterTitle = next.Title
	}
	for _, choice := range chapter.Choices {
		title := choice.TargetChapterID
		if target, ok := outline.Chapters[choice.TargetChapterID]; ok {
			title = target.Title
		}
		req.Choices = append(req.Choices, intelligence.ChoiceContext{
			Text:               choice.Text,
			TargetChapterTitle: title,
		})
	}

	if prevID := outline.PreviousChapterID(chapter.ID); prevID != "" {
		prev := outline.Chapters[prevID]
		req.PreviousChapterSummary = prev.Summary
		for _, d := range prev.Dialogs {
			req.PreviousDialogs = append(req.PreviousDialogs, intelligence.DialogContext{
				RoleID:        d.RoleID,
				CharacterName: characterName(outline, d.RoleID),
				Text:          d.Text,
			})
		}
	}
	return req
}

func characterContexts(outline *domain.ProjectOutline) []intelligence.CharacterContext {
	ids := make([]string, 0, len(outline.Characters))
	for id := range outline.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	contexts := make([]intelligence.CharacterContext, 0, len(ids))
	for _, id := range ids {
		c := outline.Characters[id]
		contexts = append(contexts, intelligence.CharacterContext{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Personality: c.Personality,
			Background:  c.Background,
		})
	}
	return contexts
}

func characterName(outline *domain.ProjectOutline, roleID string) string {
	if roleID == "" {
		return ""
	}
	if c, ok := outline.Characters[roleID]; ok {
		return c.Name
	}
	return roleID
}
