package importer

import "fmt"

// ValidateOutlineSchema checks the AI outline before conversion.
// Returns a slice of all validation errors found.
//
// The graph invariants are enforced here, at the import boundary, rather
// than at traversal time: a chapter may set choices or nextChapterId but
// never both, every reference must resolve to a chapter declared in the
// same response, and at least one chapter must exist (an empty outline is
// an invalid project, not a playable one).
func ValidateOutlineSchema(schema *OutlineSchema) []error {
	var errs []error

	if len(schema.Chapters) == 0 {
		errs = append(errs, fmt.Errorf("outline contains no chapters"))
		return errs
	}

	chapterIDs := make(map[string]bool, len(schema.Chapters))
	for i, ch := range schema.Chapters {
		id := coerceID(ch.ID)
		prefix := fmt.Sprintf("chapters[%d]", i)

		if id == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
			continue
		}
		if chapterIDs[id] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, id))
			continue
		}
		chapterIDs[id] = true
	}

	for i, ch := range schema.Chapters {
		id := coerceID(ch.ID)
		prefix := fmt.Sprintf("chapters[%d]", i)
		if id != "" {
			prefix = fmt.Sprintf("chapter %q", id)
		}

		next := coerceID(ch.NextChapterID)
		if next != "" && len(ch.Choices) > 0 {
			errs = append(errs, fmt.Errorf("%s: sets both nextChapterId and choices", prefix))
		}
		if next != "" && !chapterIDs[next] {
			errs = append(errs, fmt.Errorf("%s: nextChapterId %q does not exist", prefix, next))
		}
		for j, choice := range ch.Choices {
			target := coerceID(choice.TargetChapterID)
			if target == "" {
				errs = append(errs, fmt.Errorf("%s: choice %d has empty targetChapterId", prefix, j))
				continue
			}
			if !chapterIDs[target] {
				errs = append(errs, fmt.Errorf("%s: choice %d targets missing chapter %q", prefix, j, target))
			}
		}
	}

	charIDs := make(map[string]bool, len(schema.Characters))
	for i, c := range schema.Characters {
		id := coerceID(c.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("characters[%d].id is required", i))
			continue
		}
		if charIDs[id] {
			errs = append(errs, fmt.Errorf("characters[%d].id: duplicate id %q", i, id))
		}
		charIDs[id] = true
	}

	return errs
}

// ValidateDialogsPayload checks an AI dialog batch before it is appended to
// a chapter. knownRoleIDs is the project's character id set; an empty roleId
// is narration and always legal.
func ValidateDialogsPayload(payload *DialogsPayload, knownRoleIDs map[string]bool) []error {
	var errs []error

	if len(payload.Dialogs) == 0 {
		errs = append(errs, fmt.Errorf("response contains no dialogs"))
		return errs
	}

	seen := make(map[string]bool, len(payload.Dialogs))
	for i, d := range payload.Dialogs {
		prefix := fmt.Sprintf("dialogs[%d]", i)

		if d.Text == "" {
			errs = append(errs, fmt.Errorf("%s.text is required", prefix))
		}
		id := coerceID(d.ID)
		if id != "" {
			if seen[id] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, id))
			}
			seen[id] = true
		}
		if roleID := coerceID(d.RoleID); roleID != "" && !knownRoleIDs[roleID] {
			errs = append(errs, fmt.Errorf("%s.roleId: unknown character %q", prefix, roleID))
		}
	}

	return errs
}
