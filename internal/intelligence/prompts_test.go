package intelligence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessavero/fabula/internal/domain"
)

func outlineRequest() OutlineRequest {
	return OutlineRequest{
		Title:      "The Lighthouse Keeper",
		Worldview:  "A storm-wrapped island at the edge of the charted sea.",
		Characters: "[id] char-1\n[name] Mara",
		Plot:       "Mara discovers the light has been guiding ships onto the rocks.",
	}
}

func dialogsRequest() DialogsRequest {
	return DialogsRequest{
		ProjectTitle: "The Lighthouse Keeper",
		Worldview:    "A storm-wrapped island.",
		OverallPlot:  "The light lures ships to wreck.",
		Characters: []CharacterContext{
			{ID: "char-1", Name: "Mara", Personality: "stubborn"},
			{ID: "ai-char-1", Name: "Tomas", Personality: "evasive"},
		},
		ChapterID:      "chapter-2",
		ChapterTitle:   "The Locked Room",
		ChapterSummary: "Mara forces the door at the top of the tower.",
		KeyEvents:      []string{"The door gives way", "A logbook is found"},
	}
}

func TestBuildOutlinePrompt_ContainsBrief(t *testing.T) {
	got := BuildOutlinePrompt(outlineRequest())

	assert.Contains(t, got, "The Lighthouse Keeper")
	assert.Contains(t, got, "storm-wrapped island")
	assert.Contains(t, got, "[id] char-1")
	assert.Contains(t, got, "onto the rocks")
}

func TestBuildOutlinePrompt_Deterministic(t *testing.T) {
	req := outlineRequest()
	assert.Equal(t, BuildOutlinePrompt(req), BuildOutlinePrompt(req))
}

func TestBuildDialogsPrompt_ContainsChapterContext(t *testing.T) {
	got := BuildDialogsPrompt(dialogsRequest())

	assert.Contains(t, got, "The Locked Room")
	assert.Contains(t, got, "forces the door")
	assert.Contains(t, got, "1. The door gives way")
	assert.Contains(t, got, "2. A logbook is found")
	assert.Contains(t, got, "Mara (char-1)")
	assert.Contains(t, got, "Tomas (ai-char-1)")
}

func TestBuildDialogsPrompt_FiltersToInvolvedCharacters(t *testing.T) {
	req := dialogsRequest()
	req.InvolvedCharacterIDs = []string{"char-1"}

	got := BuildDialogsPrompt(req)

	assert.Contains(t, got, "Mara (char-1)")
	assert.NotContains(t, got, "Tomas")
}

func TestBuildDialogsPrompt_UnknownInvolvedIDsFallBackToAll(t *testing.T) {
	req := dialogsRequest()
	req.InvolvedCharacterIDs = []string{"char-99"}

	got := BuildDialogsPrompt(req)

	assert.Contains(t, got, "Mara (char-1)")
	assert.Contains(t, got, "Tomas (ai-char-1)")
}

func TestBuildDialogsPrompt_BranchOptionsUseTargetTitles(t *testing.T) {
	req := dialogsRequest()
	req.Choices = []ChoiceContext{
		{Text: "Read the logbook", TargetChapterTitle: "Names of the Drowned"},
		{Text: "Burn it", TargetChapterTitle: "Ash on the Water"},
	}

	got := BuildDialogsPrompt(req)

	assert.Contains(t, got, `"Read the logbook" leads to Names of the Drowned`)
	assert.Contains(t, got, `"Burn it" leads to Ash on the Water`)
	assert.NotContains(t, got, "chapter-3")
}

func TestBuildDialogsPrompt_TrailingHistoryWindow(t *testing.T) {
	req := dialogsRequest()
	req.PreviousChapterSummary = "Mara rowed out through the squall."
	req.PreviousDialogs = []DialogContext{
		{RoleID: "char-1", CharacterName: "Mara", Text: "line one"},
		{RoleID: "char-1", CharacterName: "Mara", Text: "line two"},
		{RoleID: "", Text: "The oars bite the water."},
		{RoleID: "char-1", CharacterName: "Mara", Text: "line four"},
		{RoleID: "char-1", CharacterName: "Mara", Text: "line five"},
	}

	got := BuildDialogsPrompt(req)

	assert.Contains(t, got, "rowed out through the squall")
	assert.NotContains(t, got, "line one")
	assert.NotContains(t, got, "line two")
	assert.Contains(t, got, "[narration] The oars bite the water.")
	assert.Contains(t, got, "Mara: line four")
	assert.Contains(t, got, "Mara: line five")
}

func TestBuildDialogsPrompt_DoesNotMutateRequest(t *testing.T) {
	req := dialogsRequest()
	req.InvolvedCharacterIDs = []string{"char-1"}

	BuildDialogsPrompt(req)

	require.Len(t, req.Characters, 2)
}

func TestCharactersText(t *testing.T) {
	got := CharactersText([]domain.CharacterCard{
		{ID: "char-1", Name: "Mara", Description: "the keeper's daughter", Personality: "stubborn"},
		{ID: "char-2", Name: "Tomas", Background: "washed ashore last winter"},
	})

	assert.Contains(t, got, "[id] char-1")
	assert.Contains(t, got, "[name] Mara")
	assert.Contains(t, got, "[description] the keeper's daughter")
	assert.Contains(t, got, "[personality] stubborn")
	assert.Contains(t, got, "[id] char-2")
	assert.Contains(t, got, "[background] washed ashore last winter")

	// Cards are separated by a blank line and render in order.
	first := strings.Index(got, "char-1")
	second := strings.Index(got, "char-2")
	assert.Less(t, first, second)
	assert.Contains(t, got, "\n\n[id] char-2")
}
