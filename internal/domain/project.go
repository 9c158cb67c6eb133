package domain

import (
	"fmt"
	"sort"
)

// ProjectConfig holds the user's free-text description of the story,
// exactly as entered at creation time.
type ProjectConfig struct {
	Title      string `json:"title"`
	Worldview  string `json:"worldview"`
	Characters string `json:"characters"`
	Plot       string `json:"plot"`
}

// ProjectOutline is the root aggregate: the full narrative graph plus its
// cast and scenery. It is the unit of persistence (serialized as one JSON
// blob) and the unit of mutation in the editor.
type ProjectOutline struct {
	Config         ProjectConfig          `json:"config"`
	Characters     map[string]*Character  `json:"characters"`
	Backgrounds    map[string]*Background `json:"backgrounds"`
	Chapters       map[string]*Chapter    `json:"chapters"`
	StartChapterID string                 `json:"startChapterId"`

	// ChapterOrder preserves the authoring order of chapters (the AI's
	// returned ordering, then editor insertions). Maps are unordered;
	// listings and previous-chapter lookups need this.
	ChapterOrder []string `json:"chapterOrder,omitempty"`
}

// OrderedChapterIDs returns chapter ids in authoring order. Ids missing from
// ChapterOrder (older blobs) are appended in sorted order.
func (p *ProjectOutline) OrderedChapterIDs() []string {
	seen := make(map[string]bool, len(p.ChapterOrder))
	var ids []string
	for _, id := range p.ChapterOrder {
		if _, ok := p.Chapters[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range p.Chapters {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// PreviousChapterID returns the chapter immediately before id in authoring
// order, or "" when id is first or unknown.
func (p *ProjectOutline) PreviousChapterID(id string) string {
	ids := p.OrderedChapterIDs()
	for i, cid := range ids {
		if cid == id && i > 0 {
			return ids[i-1]
		}
	}
	return ""
}

// Validate checks the structural invariants the playback engine depends on.
// It returns every violation found, not just the first. An empty result
// means the project is safe to play.
//
// Rules:
//   - the chapter map is non-empty and StartChapterID keys into it;
//   - every chapter satisfies the exclusivity invariant (ValidateShape);
//   - every nextChapterId and choice target resolves to an existing chapter.
func (p *ProjectOutline) Validate() []error {
	var errs []error

	if len(p.Chapters) == 0 {
		errs = append(errs, fmt.Errorf("project has no chapters"))
		return errs
	}
	if p.StartChapterID == "" {
		errs = append(errs, fmt.Errorf("startChapterId is empty"))
	} else if _, ok := p.Chapters[p.StartChapterID]; !ok {
		errs = append(errs, fmt.Errorf("startChapterId %q does not reference an existing chapter", p.StartChapterID))
	}

	for _, id := range p.OrderedChapterIDs() {
		ch := p.Chapters[id]
		if ch.ID != id {
			errs = append(errs, fmt.Errorf("chapter map key %q does not match chapter id %q", id, ch.ID))
		}
		if err := ch.ValidateShape(); err != nil {
			errs = append(errs, err)
		}
		if ch.NextChapterID != "" {
			if _, ok := p.Chapters[ch.NextChapterID]; !ok {
				errs = append(errs, fmt.Errorf("chapter %q: nextChapterId %q does not exist", id, ch.NextChapterID))
			}
		}
		for i, choice := range ch.Choices {
			if choice.TargetChapterID == "" {
				continue // reported by ValidateShape
			}
			if _, ok := p.Chapters[choice.TargetChapterID]; !ok {
				errs = append(errs, fmt.Errorf("chapter %q: choice %d targets missing chapter %q", id, i, choice.TargetChapterID))
			}
		}
	}

	return errs
}

// Manifest is the play-time export shape: the graph and cast without the
// authoring config.
type Manifest struct {
	Worldview      string                 `json:"worldview"`
	Chapters       map[string]*Chapter    `json:"chapters"`
	Characters     map[string]*Character  `json:"characters"`
	Backgrounds    map[string]*Background `json:"backgrounds"`
	StartChapterID string                 `json:"startChapterId"`
}

// ToManifest projects the aggregate into its play-time export shape.
func (p *ProjectOutline) ToManifest() *Manifest {
	return &Manifest{
		Worldview:      p.Config.Worldview,
		Chapters:       p.Chapters,
		Characters:     p.Characters,
		Backgrounds:    p.Backgrounds,
		StartChapterID: p.StartChapterID,
	}
}
