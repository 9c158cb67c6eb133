package domain

import "fmt"

// Dialog is one line in a chapter's ordered dialog sequence.
// An empty RoleID means narration. Ordering within a chapter is meaningful
// and fixed at creation; it is the only ordering contract in the system.
type Dialog struct {
	ID     string `json:"id"`
	RoleID string `json:"roleId,omitempty"`
	Text   string `json:"text"`
}

// IsNarration reports whether the line has no speaking character.
func (d Dialog) IsNarration() bool {
	return d.RoleID == ""
}

// Choice is a labeled edge from one chapter to another, presented to the
// player at chapter end.
type Choice struct {
	Text            string `json:"text"`
	TargetChapterID string `json:"targetChapterId"`
}

// CharacterState records a per-chapter character expression.
type CharacterState struct {
	RoleID     string `json:"roleId"`
	Expression string `json:"expression"`
}

// Chapter is a node in the narrative graph: an ordered dialog sequence plus
// at most one outgoing transition shape (linear NextChapterID or branching
// Choices, never both).
type Chapter struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Summary            string           `json:"summary"`
	KeyEvents          []string         `json:"keyEvents,omitempty"`
	InvolvedCharacters []string         `json:"involvedCharacters,omitempty"`
	BackgroundID       string           `json:"backgroundId,omitempty"`
	NextChapterID      string           `json:"nextChapterId,omitempty"`
	Choices            []Choice         `json:"choices,omitempty"`
	Dialogs            []Dialog         `json:"dialogs,omitempty"`
	CharacterStates    []CharacterState `json:"characterState,omitempty"`
}

// IsBranching reports whether the chapter ends in a choice menu.
func (c *Chapter) IsBranching() bool {
	return len(c.Choices) > 0
}

// IsLinear reports whether the chapter auto-advances to a single successor.
func (c *Chapter) IsLinear() bool {
	return c.NextChapterID != "" && len(c.Choices) == 0
}

// IsTerminal reports whether the story ends at this chapter.
func (c *Chapter) IsTerminal() bool {
	return c.NextChapterID == "" && len(c.Choices) == 0
}

// ChoiceTo returns the choice targeting the given chapter, if present.
func (c *Chapter) ChoiceTo(targetID string) (Choice, bool) {
	for _, ch := range c.Choices {
		if ch.TargetChapterID == targetID {
			return ch, true
		}
	}
	return Choice{}, false
}

// ValidateShape checks the chapter-local exclusivity invariant: a chapter
// holds exactly one of {choices, nextChapterId}, or neither (terminal).
func (c *Chapter) ValidateShape() error {
	if c.ID == "" {
		return fmt.Errorf("chapter has empty id")
	}
	if c.NextChapterID != "" && len(c.Choices) > 0 {
		return fmt.Errorf("chapter %q sets both nextChapterId and choices", c.ID)
	}
	for i, ch := range c.Choices {
		if ch.TargetChapterID == "" {
			return fmt.Errorf("chapter %q choice %d has empty targetChapterId", c.ID, i)
		}
	}
	return nil
}
