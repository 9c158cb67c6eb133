// Package intelligence builds prompts for the two generation rounds
// (director-mode chapter outlines, screenwriter-mode chapter dialogs) and
// runs them against the LLM gateway.
package intelligence

import (
	"context"
	"fmt"

	"github.com/tessavero/fabula/internal/llm"
)

// Generator is the slice of the LLM layer the services need. Both llm.Client
// and *llm.Gateway satisfy it.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error)
}

// OutlineRequest carries the user's project description into the first
// generation round.
type OutlineRequest struct {
	Title      string `json:"title"`
	Worldview  string `json:"worldview"`
	Characters string `json:"characters"` // user character cards as free text
	Plot       string `json:"plot"`
}

// Validate reports the first missing required field. Run before any network
// call; malformed requests never reach the vendor.
func (r *OutlineRequest) Validate() error {
	switch {
	case r.Title == "":
		return fmt.Errorf("title is required")
	case r.Worldview == "":
		return fmt.Errorf("worldview is required")
	case r.Characters == "":
		return fmt.Errorf("characters is required")
	case r.Plot == "":
		return fmt.Errorf("plot is required")
	}
	return nil
}

// CharacterContext is one character's card as seen by the dialog round.
type CharacterContext struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Personality string `json:"personality,omitempty"`
	Background  string `json:"background,omitempty"`
}

// ChoiceContext is a branch option rendered with its target's title rather
// than its raw id, so the model writes toward named destinations.
type ChoiceContext struct {
	Text               string `json:"text"`
	TargetChapterTitle string `json:"targetChapterTitle"`
}

// DialogContext is one prior dialog line fed back as trailing history.
type DialogContext struct {
	RoleID        string `json:"roleId"`
	CharacterName string `json:"characterName"`
	Text          string `json:"text"`
}

// DialogsRequest carries full project context plus the target chapter's
// context into the second generation round.
type DialogsRequest struct {
	ProjectTitle string             `json:"projectTitle"`
	Worldview    string             `json:"worldview"`
	OverallPlot  string             `json:"overallPlot"`
	Characters   []CharacterContext `json:"characters"`

	ChapterID             string   `json:"chapterId"`
	ChapterTitle          string   `json:"chapterTitle"`
	ChapterSummary        string   `json:"chapterSummary"`
	KeyEvents             []string `json:"keyEvents,omitempty"`
	InvolvedCharacterIDs  []string `json:"involvedCharacterIds,omitempty"`
	BackgroundDescription string   `json:"backgroundDescription,omitempty"`

	NextChapterTitle string          `json:"nextChapterTitle,omitempty"`
	Choices          []ChoiceContext `json:"choices,omitempty"`

	PreviousChapterSummary string          `json:"previousChapterSummary,omitempty"`
	PreviousDialogs        []DialogContext `json:"previousDialogs,omitempty"`
}

// Validate reports the first missing required field.
func (r *DialogsRequest) Validate() error {
	switch {
	case r.ProjectTitle == "":
		return fmt.Errorf("projectTitle is required")
	case r.Worldview == "":
		return fmt.Errorf("worldview is required")
	case r.OverallPlot == "":
		return fmt.Errorf("overallPlot is required")
	case r.ChapterID == "":
		return fmt.Errorf("chapterId is required")
	case r.ChapterTitle == "":
		return fmt.Errorf("chapterTitle is required")
	case r.ChapterSummary == "":
		return fmt.Errorf("chapterSummary is required")
	}
	return nil
}
