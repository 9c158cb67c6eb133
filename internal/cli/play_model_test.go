package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessavero/fabula/internal/playback"
	"github.com/tessavero/fabula/internal/teatest"
	"github.com/tessavero/fabula/internal/testutil"
)

func newPlayDriver(t *testing.T) (*teatest.Driver, *playModel) {
	t.Helper()
	model, err := newPlayModel(testutil.BranchingOutline())
	require.NoError(t, err)
	d := teatest.New(t, model, teatest.WithSize(100, 40))
	d.DrainInit()
	return d, d.Model.(*playModel)
}

func TestPlayModel_OpensOnFirstLine(t *testing.T) {
	d, m := newPlayDriver(t)

	assert.Equal(t, playback.StatePresenting, m.session.State())
	view := d.Model.View()
	assert.Contains(t, view, "THE FORK")
	assert.Contains(t, view, "The road splits.")
	assert.NotContains(t, view, "Which way?")
}

func TestPlayModel_AdvanceToChoiceMenu(t *testing.T) {
	d, _ := newPlayDriver(t)

	d.PressEnter() // second dialog line
	d.PressEnter() // chapter end -> branch

	m := d.Model.(*playModel)
	assert.Equal(t, playback.StateAwaitingChoice, m.session.State())

	view := d.Model.View()
	assert.Contains(t, view, "What do you do?")
	assert.Contains(t, view, "Go left")
	assert.Contains(t, view, "Go right")
	assert.Contains(t, view, "Which way?")
}

func TestPlayModel_ChooseBranch(t *testing.T) {
	d, _ := newPlayDriver(t)

	d.PressEnter()
	d.PressEnter()
	d.PressDown()
	d.PressEnter()

	m := d.Model.(*playModel)
	assert.Equal(t, "chapter-2-right", m.session.Chapter().ID)
	view := d.Model.View()
	assert.Contains(t, view, "RIGHT PATH")
	assert.Contains(t, view, "Water runs fast.")
	assert.NotContains(t, view, "Go left")
}

func TestPlayModel_PlayThroughToEnd(t *testing.T) {
	d, _ := newPlayDriver(t)

	d.PressEnter()
	d.PressEnter() // branch menu
	d.PressEnter() // choose "Go left"
	d.PressEnter() // end of chapter-2-left -> auto into chapter-3
	d.PressEnter() // end of chapter-3 -> terminal

	m := d.Model.(*playModel)
	assert.Equal(t, playback.StateEnded, m.session.State())
	view := d.Model.View()
	assert.Contains(t, view, "The End")
	assert.Contains(t, view, "r restart")
}

func TestPlayModel_BackFromChoiceMenu(t *testing.T) {
	d, _ := newPlayDriver(t)

	d.PressEnter()
	d.PressEnter()
	require.Equal(t, playback.StateAwaitingChoice, d.Model.(*playModel).session.State())

	d.PressKey('b')

	m := d.Model.(*playModel)
	assert.Equal(t, playback.StatePresenting, m.session.State())
	assert.Contains(t, d.Model.View(), "Which way?")
}

func TestPlayModel_Restart(t *testing.T) {
	d, _ := newPlayDriver(t)

	d.PressEnter()
	d.PressEnter()
	d.PressEnter() // into a branch chapter
	d.PressKey('r')

	m := d.Model.(*playModel)
	assert.Equal(t, "chapter-1", m.session.Chapter().ID)
	view := d.Model.View()
	assert.Contains(t, view, "The road splits.")
	assert.NotContains(t, view, "Trees close in.")
}

func TestPlayModel_Quit(t *testing.T) {
	d, _ := newPlayDriver(t)

	d.SendKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.True(t, d.Quitting)
}
