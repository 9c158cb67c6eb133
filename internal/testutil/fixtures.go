package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tessavero/fabula/internal/domain"
)

var projectCounter atomic.Int64

// NewProjectID returns a fresh unique project id.
func NewProjectID() string {
	return "project-" + uuid.NewString()[:8]
}

// OutlineOption mutates a fixture outline before it is returned.
type OutlineOption func(*domain.ProjectOutline)

// WithTerminalStart rewires the fixture so the start chapter ends the story
// immediately (no choices, no next).
func WithTerminalStart() OutlineOption {
	return func(p *domain.ProjectOutline) {
		start := p.Chapters[p.StartChapterID]
		start.Choices = nil
		start.NextChapterID = ""
	}
}

// WithWorldview overrides the fixture's worldview text.
func WithWorldview(w string) OutlineOption {
	return func(p *domain.ProjectOutline) {
		p.Config.Worldview = w
	}
}

// BranchingOutline builds a small valid project: a branching start chapter,
// two branch chapters converging on a terminal fourth. Each call uses fresh
// title text so records are distinguishable in listings.
func BranchingOutline(opts ...OutlineOption) *domain.ProjectOutline {
	n := projectCounter.Add(1)
	p := &domain.ProjectOutline{
		Config: domain.ProjectConfig{
			Title:      fmt.Sprintf("Fixture Story %d", n),
			Worldview:  "a test world",
			Characters: "[id] char-1\n[name] Hero",
			Plot:       "hero faces a fork in the road",
		},
		Characters: map[string]*domain.Character{
			"char-1": {ID: "char-1", Name: "Hero", Avatar: domain.PlaceholderAvatar, IsUserCreated: true},
		},
		Backgrounds: map[string]*domain.Background{
			"bg-1": {ID: "bg-1", URL: domain.PlaceholderBackgroundURL, Description: "a crossroads"},
		},
		Chapters: map[string]*domain.Chapter{
			"chapter-1": {
				ID: "chapter-1", Title: "The Fork", Summary: "A choice is made.",
				BackgroundID: "bg-1",
				Dialogs: []domain.Dialog{
					{ID: "dialog-1", RoleID: "", Text: "The road splits."},
					{ID: "dialog-2", RoleID: "char-1", Text: "Which way?"},
				},
				Choices: []domain.Choice{
					{Text: "Go left", TargetChapterID: "chapter-2-left"},
					{Text: "Go right", TargetChapterID: "chapter-2-right"},
				},
			},
			"chapter-2-left": {
				ID: "chapter-2-left", Title: "Left Path", Summary: "Through the woods.",
				BackgroundID:  "bg-1",
				Dialogs:       []domain.Dialog{{ID: "dialog-1", Text: "Trees close in."}},
				NextChapterID: "chapter-3",
			},
			"chapter-2-right": {
				ID: "chapter-2-right", Title: "Right Path", Summary: "Along the river.",
				BackgroundID:  "bg-1",
				Dialogs:       []domain.Dialog{{ID: "dialog-1", Text: "Water runs fast."}},
				NextChapterID: "chapter-3",
			},
			"chapter-3": {
				ID: "chapter-3", Title: "The Clearing", Summary: "Paths converge.",
				BackgroundID: "bg-1",
				Dialogs:      []domain.Dialog{{ID: "dialog-1", Text: "Both roads end here."}},
			},
		},
		StartChapterID: "chapter-1",
		ChapterOrder:   []string{"chapter-1", "chapter-2-left", "chapter-2-right", "chapter-3"},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
