package intelligence

import (
	"fmt"
	"strings"

	"github.com/tessavero/fabula/internal/domain"
)

// previousDialogWindow bounds how many trailing dialog lines from the prior
// chapter are fed back into the dialog prompt.
const previousDialogWindow = 3

const outlineSystemPrompt = `You are a director of non-linear interactive fiction. Given a project brief, you plan a chapter outline with genuine branching structure.

## Character rules
1. User-defined characters are immutable: keep their id, name, personality, and background exactly as given; never modify or drop them.
2. You may add a small number of supporting characters (1-3) where the plot needs them.
3. Id namespaces: user characters use "char-..." ids; characters you add use "ai-char-..." ids.

## Structure rules
1. The story must branch: include at least 1-2 decision points where the player chooses between chapters.
2. Chapter id conventions: linear chapters "chapter-1", "chapter-2"; branch chapters carry the branch in the id, e.g. "chapter-2-fight", "chapter-2-flee".
3. Mutual exclusion (strict): a chapter with a non-empty "choices" array must have "nextChapterId" null or empty; a linear chapter must have an empty "choices" array and a "nextChapterId" pointing at an existing chapter. Never set both.
4. Every "nextChapterId" and every choice "targetChapterId" must reference a chapter defined in the same response.

## Output format (strict JSON, no markdown fences, no commentary)
{
  "characters": [
    {"id": "char-1", "name": "...", "description": "...", "personality": "...", "background": "..."},
    {"id": "ai-char-1", "name": "...", "description": "...", "personality": "...", "background": "..."}
  ],
  "backgrounds": [
    {"id": "bg-1", "url": "", "description": "..."}
  ],
  "chapters": [
    {
      "id": "chapter-1",
      "title": "...",
      "summary": "...",
      "keyEvents": ["..."],
      "involvedCharacters": ["char-1"],
      "backgroundId": "bg-1",
      "nextChapterId": null,
      "choices": [
        {"text": "...", "targetChapterId": "chapter-2-fight"},
        {"text": "...", "targetChapterId": "chapter-2-flee"}
      ]
    }
  ]
}`

const dialogsSystemPrompt = `You are a screenwriter for interactive fiction. Given a chapter brief, you write that chapter's dialog sequence.

## Writing rules
1. Write 8-15 dialog lines.
2. Open with narration setting the scene; use narration for actions and transitions; close with narration leading into the next scene.
3. Dialog must reflect each character's stated personality; distinct characters get distinct voices.
4. Cover the chapter's key events and, when the chapter branches, steer naturally toward the listed options.

## Output format (strict JSON, no markdown fences, no commentary)
{
  "dialogs": [
    {"id": "dialog-1", "roleId": "char-1", "text": "..."}
  ]
}

An empty or omitted roleId means narration. Every roleId must be one of the character ids in the brief. Dialog ids must be unique.`

// OutlineSystemPrompt returns the director-mode system prompt.
func OutlineSystemPrompt() string { return outlineSystemPrompt }

// DialogsSystemPrompt returns the screenwriter-mode system prompt.
func DialogsSystemPrompt() string { return dialogsSystemPrompt }

// BuildOutlinePrompt renders the user message for the outline round.
// Pure: the same request always yields the same prompt, and the request is
// never mutated.
func BuildOutlinePrompt(req OutlineRequest) string {
	var b strings.Builder
	b.WriteString("# Project brief\n\n")
	fmt.Fprintf(&b, "## Title\n%s\n\n", req.Title)
	fmt.Fprintf(&b, "## Worldview\n%s\n\n", req.Worldview)
	fmt.Fprintf(&b, "## Main characters (user-defined, immutable)\n%s\n\n", req.Characters)
	fmt.Fprintf(&b, "## Overall plot\n%s\n\n", req.Plot)
	b.WriteString("Plan the chapter outline now.")
	return b.String()
}

// BuildDialogsPrompt renders the user message for the dialog round. Only the
// chapter's involved characters are included when the brief names any, and
// at most the last three prior dialog lines are carried over.
func BuildDialogsPrompt(req DialogsRequest) string {
	characters := req.Characters
	if len(req.InvolvedCharacterIDs) > 0 {
		involved := make(map[string]bool, len(req.InvolvedCharacterIDs))
		for _, id := range req.InvolvedCharacterIDs {
			involved[id] = true
		}
		var filtered []CharacterContext
		for _, c := range characters {
			if involved[c.ID] {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			characters = filtered
		}
	}

	var b strings.Builder
	b.WriteString("# Project\n\n")
	fmt.Fprintf(&b, "## Title\n%s\n\n", req.ProjectTitle)
	fmt.Fprintf(&b, "## Worldview\n%s\n\n", req.Worldview)
	fmt.Fprintf(&b, "## Overall plot\n%s\n\n", req.OverallPlot)

	b.WriteString("# Current chapter\n")
	fmt.Fprintf(&b, "- Title: %s\n", req.ChapterTitle)
	fmt.Fprintf(&b, "- Summary: %s\n", req.ChapterSummary)
	if req.BackgroundDescription != "" {
		fmt.Fprintf(&b, "- Scene: %s\n", req.BackgroundDescription)
	}
	if req.NextChapterTitle != "" {
		fmt.Fprintf(&b, "- Leads into: %s\n", req.NextChapterTitle)
	}
	if len(req.KeyEvents) > 0 {
		b.WriteString("\n## Key events\n")
		for i, e := range req.KeyEvents {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e)
		}
	}
	if len(req.Choices) > 0 {
		b.WriteString("\n## Branch options at chapter end\n")
		for _, c := range req.Choices {
			fmt.Fprintf(&b, "- %q leads to %s\n", c.Text, c.TargetChapterTitle)
		}
	}

	b.WriteString("\n# Characters\n")
	for _, c := range characters {
		fmt.Fprintf(&b, "\n### %s (%s)\n", c.Name, c.ID)
		if c.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", c.Description)
		}
		if c.Personality != "" {
			fmt.Fprintf(&b, "Personality: %s\n", c.Personality)
		}
		if c.Background != "" {
			fmt.Fprintf(&b, "Background: %s\n", c.Background)
		}
	}

	if req.PreviousChapterSummary != "" {
		fmt.Fprintf(&b, "\n# Previously\n%s\n", req.PreviousChapterSummary)
	}
	if len(req.PreviousDialogs) > 0 {
		window := req.PreviousDialogs
		if len(window) > previousDialogWindow {
			window = window[len(window)-previousDialogWindow:]
		}
		b.WriteString("\n## Closing lines of the previous chapter\n")
		for _, d := range window {
			if d.RoleID == "" {
				fmt.Fprintf(&b, "[narration] %s\n", d.Text)
			} else {
				fmt.Fprintf(&b, "%s: %s\n", d.CharacterName, d.Text)
			}
		}
	}

	b.WriteString("\nWrite the chapter's dialogs now.")
	return b.String()
}

// CharactersText renders user character cards as the free-text block the
// outline round receives. Deterministic: cards render in slice order.
func CharactersText(cards []domain.CharacterCard) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		var b strings.Builder
		fmt.Fprintf(&b, "[id] %s\n[name] %s", c.ID, c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, "\n[description] %s", c.Description)
		}
		if c.Personality != "" {
			fmt.Fprintf(&b, "\n[personality] %s", c.Personality)
		}
		if c.Background != "" {
			fmt.Fprintf(&b, "\n[background] %s", c.Background)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}
