package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutline struct {
	Title    string   `json:"title"`
	Chapters []string `json:"chapters"`
}

func TestExtractJSON_CleanObject(t *testing.T) {
	raw := `{"title":"The Fall","chapters":["c1","c2"]}`
	result, err := ExtractJSON[testOutline](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "The Fall", result.Title)
	assert.Equal(t, []string{"c1", "c2"}, result.Chapters)
}

func TestExtractJSON_FencedObject(t *testing.T) {
	raw := "```json\n{\"title\":\"The Fall\",\"chapters\":[]}\n```"
	result, err := ExtractJSON[testOutline](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "The Fall", result.Title)
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	raw := "Sure! Here is your outline:\n{\"title\":\"The Fall\"}\nHope that helps!"
	result, err := ExtractJSON[testOutline](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "The Fall", result.Title)
}

func TestExtractJSON_TopLevelArray(t *testing.T) {
	raw := "Sure! ```json\n[{\"a\":1}]\n```"
	result, err := ExtractJSON[[]map[string]int](raw, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0]["a"])
}

func TestExtractJSON_ArrayBeforeObject(t *testing.T) {
	raw := `[1,2,3] trailing {"ignored":true}`
	result, err := ExtractJSON[[]int](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, result)
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	type nested struct {
		Chapters map[string]map[string]string `json:"chapters"`
	}
	raw := `{"chapters":{"c1":{"title":"Start"}}}`
	result, err := ExtractJSON[nested](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Start", result.Chapters["c1"]["title"])
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	raw := `{"title":"a } inside","chapters":[]}`
	result, err := ExtractJSON[testOutline](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "a } inside", result.Title)
}

func TestExtractJSON_NoBrackets(t *testing.T) {
	raw := "I cannot produce an outline for that."
	_, err := ExtractJSON[testOutline](raw, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_InvalidJSON(t *testing.T) {
	raw := `{"title": broken}`
	_, err := ExtractJSON[testOutline](raw, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_UnbalancedSpan(t *testing.T) {
	raw := `{"title":"never closed"`
	_, err := ExtractJSON[testOutline](raw, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_CommentsStripped(t *testing.T) {
	raw := "{\n  \"title\": \"The Fall\", // working title\n  \"chapters\": []\n}"
	result, err := ExtractJSON[testOutline](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "The Fall", result.Title)
}

func TestExtractJSON_LeadingDecimalNormalized(t *testing.T) {
	type scored struct {
		Score float64 `json:"score"`
	}
	result, err := ExtractJSON[scored](`{"score": .8}`, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.8, result.Score)
}

func TestExtractJSON_ValidationFailure(t *testing.T) {
	validator := func(o testOutline) error {
		if len(o.Chapters) == 0 {
			return fmt.Errorf("no chapters")
		}
		return nil
	}
	_, err := ExtractJSON(`{"title":"x","chapters":[]}`, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestExtractJSON_ValidationSuccess(t *testing.T) {
	validator := func(o testOutline) error {
		if o.Title == "" {
			return fmt.Errorf("empty title")
		}
		return nil
	}
	result, err := ExtractJSON(`{"title":"x","chapters":["c1"]}`, validator)
	require.NoError(t, err)
	assert.Equal(t, "x", result.Title)
}

func TestExtractRawJSON_PassThrough(t *testing.T) {
	raw, err := ExtractRawJSON("prose before {\"a\": [1, 2]} prose after")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,2]}`, string(raw))
}
