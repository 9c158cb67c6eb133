package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessavero/fabula/internal/cli/formatter"
	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/playback"
)

type playKeyMap struct {
	Advance key.Binding
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Restart key.Binding
	Quit    key.Binding
}

var playKeys = playKeyMap{
	Advance: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "next")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
	Back:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// playModel is the bubbletea model for the play session. All narrative state
// lives in the playback session; the model adds only the choice cursor, the
// scrollback of lines already shown, and an error line for structural faults.
type playModel struct {
	session *playback.Session
	outline *domain.ProjectOutline

	shown        []string // rendered lines already presented this chapter
	chapterID    string
	cursor       int
	structural   error
	quitting     bool
	width        int
	speakerIndex map[string]int
}

func newPlayModel(outline *domain.ProjectOutline) (*playModel, error) {
	session, err := playback.NewSession(outline)
	if err != nil {
		return nil, err
	}
	m := &playModel{
		session:      session,
		outline:      outline,
		width:        80,
		speakerIndex: speakerIndexes(outline),
	}
	m.syncChapter()
	return m, nil
}

// speakerIndexes assigns each character a stable color slot, user-created
// characters first.
func speakerIndexes(outline *domain.ProjectOutline) map[string]int {
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

	index := make(map[string]int, len(outline.Characters))
	for i, id := range append(user, ai...) {
		index[id] = i
	}
	return index
}

func (m *playModel) Init() tea.Cmd { return nil }

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *playModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, playKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, playKeys.Restart):
		if err := m.session.Restart(); err != nil {
			m.structural = err
			return m, nil
		}
		m.structural = nil
		m.shown = nil
		m.syncChapter()
		return m, nil

	case key.Matches(msg, playKeys.Back):
		if m.session.Back() {
			m.structural = nil
			m.rebuildShown()
		}
		return m, nil
	}

	switch m.session.State() {
	case playback.StatePresenting:
		if key.Matches(msg, playKeys.Advance) {
			if err := m.session.Advance(); err != nil {
				m.structural = err
				return m, nil
			}
			m.syncChapter()
		}
	case playback.StateAwaitingChoice:
		choices := m.session.Choices()
		switch {
		case key.Matches(msg, playKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, playKeys.Down):
			if m.cursor < len(choices)-1 {
				m.cursor++
			}
		case key.Matches(msg, playKeys.Select):
			if m.cursor < len(choices) {
				if err := m.session.Choose(choices[m.cursor].TargetChapterID); err != nil {
					m.structural = err
					return m, nil
				}
				m.cursor = 0
				m.shown = nil
				m.syncChapter()
			}
		}
	}
	return m, nil
}

// syncChapter appends the newly current dialog line to the scrollback,
// resetting it on chapter change.
func (m *playModel) syncChapter() {
	ch := m.session.Chapter()
	if ch == nil {
		return
	}
	if ch.ID != m.chapterID {
		m.chapterID = ch.ID
		m.shown = nil
	}
	if d := m.session.Dialog(); d != nil {
		m.shown = append(m.shown, m.renderDialog(d))
	}
}

// rebuildShown replays the scrollback after Back, which may land anywhere in
// a chapter.
func (m *playModel) rebuildShown() {
	m.shown = nil
	m.chapterID = ""
	ch := m.session.Chapter()
	if ch == nil {
		return
	}
	m.chapterID = ch.ID
	d := m.session.Dialog()
	for i := range ch.Dialogs {
		m.shown = append(m.shown, m.renderDialog(&ch.Dialogs[i]))
		if d != nil && ch.Dialogs[i].ID == d.ID {
			break
		}
	}
}

func (m *playModel) renderDialog(d *domain.Dialog) string {
	if d.IsNarration() {
		return formatter.Narration(d.Text)
	}
	name := d.RoleID
	if c, ok := m.outline.Characters[d.RoleID]; ok {
		name = c.Name
	}
	style := formatter.SpeakerStyle(m.speakerIndex[d.RoleID])
	return fmt.Sprintf("%s %s", style.Bold(true).Render(name+":"), d.Text)
}

func (m *playModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	ch := m.session.Chapter()
	if ch != nil {
		b.WriteString(formatter.Header(ch.Title))
		b.WriteString("\n")
		if bg, ok := m.outline.Backgrounds[ch.BackgroundID]; ok && bg.Description != "" {
			b.WriteString(formatter.Dim(bg.Description) + "\n")
		}
		b.WriteString("\n")
	}

	for _, line := range m.shown {
		b.WriteString(wrap(line, m.width) + "\n")
	}

	if m.structural != nil {
		b.WriteString("\n" + formatter.StyleRed.Render("story error: "+m.structural.Error()) + "\n")
	}

	switch m.session.State() {
	case playback.StateAwaitingChoice:
		b.WriteString("\n" + formatter.Bold("What do you do?") + "\n")
		for i, c := range m.session.Choices() {
			cursor := "  "
			line := c.Text
			if i == m.cursor {
				cursor = formatter.StyleHeader.Render("> ")
				line = formatter.StyleHeader.Render(c.Text)
			}
			b.WriteString(cursor + line + "\n")
		}
		b.WriteString("\n" + formatter.Dim("↑/↓ choose · enter select · b back · q quit"))
	case playback.StateEnded:
		b.WriteString("\n" + formatter.StylePurple.Render("— The End —") + "\n")
		b.WriteString(formatter.Dim("r restart · q quit"))
	default:
		b.WriteString("\n" + formatter.Dim("enter next · b back · r restart · q quit"))
	}
	return b.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
