package importer

import (
	"fmt"
	"math"
	"strconv"
)

// OutlineSchema is the loosely-typed shape of the AI's outline response.
// Ids are declared as any because models intermittently return numbers
// where strings were requested; everything is coerced at conversion time.
type OutlineSchema struct {
	Characters  []CharacterImport  `json:"characters"`
	Backgrounds []BackgroundImport `json:"backgrounds"`
	Chapters    []ChapterImport    `json:"chapters"`
}

// CharacterImport is an AI-proposed character.
type CharacterImport struct {
	ID          any    `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Description string `json:"description"`
	Personality string `json:"personality"`
	Background  string `json:"background"`
}

// BackgroundImport is an AI-proposed scene asset.
type BackgroundImport struct {
	ID          any    `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ChapterImport is an AI-proposed chapter outline.
type ChapterImport struct {
	ID                 any            `json:"id"`
	Title              string         `json:"title"`
	Summary            string         `json:"summary"`
	KeyEvents          []string       `json:"keyEvents"`
	InvolvedCharacters []any          `json:"involvedCharacters"`
	BackgroundID       any            `json:"backgroundId"`
	NextChapterID      any            `json:"nextChapterId"`
	Choices            []ChoiceImport `json:"choices"`
}

// ChoiceImport is an AI-proposed branch option.
type ChoiceImport struct {
	Text            string `json:"text"`
	TargetChapterID any    `json:"targetChapterId"`
}

// DialogsPayload is the loosely-typed shape of the AI's dialog response.
type DialogsPayload struct {
	Dialogs []DialogImport `json:"dialogs"`
}

// DialogImport is a single AI-written dialog line.
type DialogImport struct {
	ID     any    `json:"id"`
	RoleID any    `json:"roleId"`
	Text   string `json:"text"`
}

// coerceID normalizes an id value of unknown JSON type to a string.
// nil and empty values become ""; integral floats render without a decimal
// point so that a model returning 3 matches a later reference to "3".
func coerceID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceIDs(vals []any) []string {
	ids := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := coerceID(v); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}
