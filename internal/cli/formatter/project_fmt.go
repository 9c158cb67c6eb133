package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/repository"
)

// FormatProjectList renders stored projects as a table. The current project
// is marked in the first column.
func FormatProjectList(metas []repository.ProjectMeta, currentID string) string {
	if len(metas) == 0 {
		return Dim("No projects yet. Run `fabula create` to start one.") + "\n"
	}

	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		marker := " "
		if m.ID == currentID {
			marker = StyleGreen.Render("●")
		}
		rows = append(rows, []string{
			marker,
			m.ID,
			m.Title,
			m.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	return RenderTable([]string{" ", "ID", "TITLE", "UPDATED"}, rows)
}

// FormatProjectDetail renders a full project: brief, cast, and chapter graph.
func FormatProjectDetail(rec *repository.ProjectRecord) string {
	var b strings.Builder
	outline := rec.Outline

	b.WriteString(Header(rec.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("id:"), rec.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("worldview:"), outline.Config.Worldview)
	fmt.Fprintf(&b, "%s %s\n\n", Dim("plot:"), outline.Config.Plot)

	b.WriteString(Bold("Characters") + "\n")
	for i, id := range sortedCharacterIDs(outline) {
		c := outline.Characters[id]
		origin := Dim("ai")
		if c.IsUserCreated {
			origin = StyleGreen.Render("user")
		}
		fmt.Fprintf(&b, "  %s %s (%s, %s)\n", SpeakerStyle(i).Render("●"), c.Name, c.ID, origin)
	}
	b.WriteString("\n")

	b.WriteString(Bold("Chapters") + "\n")
	b.WriteString(FormatChapterList(outline))
	return b.String()
}

// FormatChapterList renders the chapter graph as a table in authoring order.
func FormatChapterList(outline *domain.ProjectOutline) string {
	rows := make([][]string, 0, len(outline.Chapters))
	for _, id := range outline.OrderedChapterIDs() {
		ch := outline.Chapters[id]
		marker := " "
		if id == outline.StartChapterID {
			marker = StyleGreen.Render("▶")
		}
		rows = append(rows, []string{
			marker,
			ch.ID,
			ch.Title,
			chapterKind(ch),
			fmt.Sprintf("%d", len(ch.Dialogs)),
		})
	}
	return RenderTable([]string{" ", "ID", "TITLE", "ENDS IN", "DIALOGS"}, rows)
}

// FormatChapterDetail renders one chapter: brief, key events, and dialogs.
func FormatChapterDetail(outline *domain.ProjectOutline, ch *domain.Chapter) string {
	var b strings.Builder

	b.WriteString(Header(ch.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("id:"), ch.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("summary:"), ch.Summary)
	if bg, ok := outline.Backgrounds[ch.BackgroundID]; ok {
		fmt.Fprintf(&b, "%s %s\n", Dim("scene:"), bg.Description)
	}

	if len(ch.KeyEvents) > 0 {
		b.WriteString("\n" + Bold("Key events") + "\n")
		for _, e := range ch.KeyEvents {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	switch {
	case ch.IsBranching():
		b.WriteString("\n" + Bold("Choices") + "\n")
		for _, c := range ch.Choices {
			fmt.Fprintf(&b, "  %s %s %s\n", StyleYellow.Render("?"), c.Text, Dim("→ "+c.TargetChapterID))
		}
	case ch.IsLinear():
		fmt.Fprintf(&b, "\n%s %s\n", Dim("next:"), ch.NextChapterID)
	default:
		fmt.Fprintf(&b, "\n%s\n", Dim("the story ends here"))
	}

	if len(ch.Dialogs) > 0 {
		b.WriteString("\n" + Bold("Dialogs") + "\n")
		b.WriteString(FormatDialogs(outline, ch.Dialogs))
	} else {
		b.WriteString("\n" + Dim("No dialogs yet. Run `fabula dialogs "+ch.ID+"` to write them.") + "\n")
	}
	return b.String()
}

// FormatDialogs renders dialog lines with speaker coloring; narration is
// muted and unattributed.
func FormatDialogs(outline *domain.ProjectOutline, dialogs []domain.Dialog) string {
	speakerIndex := make(map[string]int)
	for i, id := range sortedCharacterIDs(outline) {
		speakerIndex[id] = i
	}

	var b strings.Builder
	for _, d := range dialogs {
		if d.IsNarration() {
			fmt.Fprintf(&b, "  %s\n", Narration(d.Text))
			continue
		}
		name := d.RoleID
		if c, ok := outline.Characters[d.RoleID]; ok {
			name = c.Name
		}
		style := SpeakerStyle(speakerIndex[d.RoleID])
		fmt.Fprintf(&b, "  %s %s\n", style.Render(name+":"), d.Text)
	}
	return b.String()
}

func chapterKind(ch *domain.Chapter) string {
	switch {
	case ch.IsBranching():
		return StyleYellow.Render(fmt.Sprintf("%d choices", len(ch.Choices)))
	case ch.IsLinear():
		return "next → " + ch.NextChapterID
	default:
		return Dim("the end")
	}
}

func sortedCharacterIDs(outline *domain.ProjectOutline) []string {
	user := make([]string, 0, len(outline.Characters))
	ai := make([]string, 0, len(outline.Characters))
	for id, c := range outline.Characters {
		if c.IsUserCreated {
			user = append(user, id)
		} else {
			ai = append(ai, id)
		}
	}
	sort.Strings(user)
	sort.Strings(ai)
	return append(user, ai...)
}
