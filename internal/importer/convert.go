package importer

import (
	"fmt"

	"github.com/tessavero/fabula/internal/domain"
)

// ToProjectOutline converts a validated AI outline into the strict project
// aggregate. User characters are seeded first and are authoritative: an
// AI-proposed character whose id collides with a user character is discarded
// in favor of the user's definition. All ids are coerced to strings and
// documented defaults fill missing optional fields. Deterministic: the same
// inputs always produce the same aggregate.
//
// StartChapterID is the first chapter in the AI-returned ordering. A schema
// with zero chapters is rejected here as well as in validation: a project
// whose start chapter cannot exist must never reach playback.
func ToProjectOutline(schema *OutlineSchema, config domain.ProjectConfig, userCharacters []domain.CharacterCard) (*domain.ProjectOutline, error) {
	if len(schema.Chapters) == 0 {
		return nil, fmt.Errorf("outline contains no chapters")
	}

	characters := make(map[string]*domain.Character, len(userCharacters)+len(schema.Characters))
	for _, card := range userCharacters {
		characters[card.ID] = &domain.Character{
			ID:            card.ID,
			Name:          card.Name,
			Avatar:        domain.PlaceholderAvatar,
			Description:   card.Description,
			Personality:   card.Personality,
			Background:    card.Background,
			IsUserCreated: true,
		}
	}
	for _, c := range schema.Characters {
		id := coerceID(c.ID)
		if id == "" {
			continue
		}
		if _, exists := characters[id]; exists {
			// User definition wins.
			continue
		}
		characters[id] = &domain.Character{
			ID:            id,
			Name:          c.Name,
			Avatar:        domain.CoalesceStr(c.Avatar, domain.PlaceholderAvatar),
			Description:   c.Description,
			Personality:   c.Personality,
			Background:    c.Background,
			IsUserCreated: false,
		}
	}

	backgrounds := make(map[string]*domain.Background, len(schema.Backgrounds))
	for _, b := range schema.Backgrounds {
		id := coerceID(b.ID)
		if id == "" {
			continue
		}
		backgrounds[id] = &domain.Background{
			ID:          id,
			URL:         domain.CoalesceStr(b.URL, domain.PlaceholderBackgroundURL),
			Description: b.Description,
		}
	}

	chapters := make(map[string]*domain.Chapter, len(schema.Chapters))
	order := make([]string, 0, len(schema.Chapters))
	for _, ch := range schema.Chapters {
		id := coerceID(ch.ID)
		if id == "" {
			continue
		}
		choices := make([]domain.Choice, 0, len(ch.Choices))
		for _, c := range ch.Choices {
			choices = append(choices, domain.Choice{
				Text:            c.Text,
				TargetChapterID: coerceID(c.TargetChapterID),
			})
		}
		keyEvents := ch.KeyEvents
		if keyEvents == nil {
			keyEvents = []string{}
		}
		chapters[id] = &domain.Chapter{
			ID:                 id,
			Title:              domain.CoalesceStr(ch.Title, fmt.Sprintf("Chapter %s", id)),
			Summary:            ch.Summary,
			KeyEvents:          keyEvents,
			InvolvedCharacters: coerceIDs(ch.InvolvedCharacters),
			BackgroundID:       coerceID(ch.BackgroundID),
			NextChapterID:      coerceID(ch.NextChapterID),
			Choices:            choices,
			Dialogs:            []domain.Dialog{},
		}
		order = append(order, id)
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("outline contains no chapters with usable ids")
	}

	return &domain.ProjectOutline{
		Config:         config,
		Characters:     characters,
		Backgrounds:    backgrounds,
		Chapters:       chapters,
		StartChapterID: order[0],
		ChapterOrder:   order,
	}, nil
}

// ToDialogs converts a validated dialog payload into domain dialogs.
// Lines without an id receive a positional one; empty roleId is narration.
func ToDialogs(payload *DialogsPayload) []domain.Dialog {
	dialogs := make([]domain.Dialog, 0, len(payload.Dialogs))
	for i, d := range payload.Dialogs {
		id := coerceID(d.ID)
		if id == "" {
			id = fmt.Sprintf("dialog-%d", i+1)
		}
		dialogs = append(dialogs, domain.Dialog{
			ID:     id,
			RoleID: coerceID(d.RoleID),
			Text:   d.Text,
		})
	}
	return dialogs
}
