// Package editor holds the in-memory mutable project state behind a graph
// editing surface. Every mutation goes through a named operation, and the
// visual edge list is recomputed from the chapter fields after each one:
// the chapter map is the single source of truth, edges are a projection.
package editor

import (
	"fmt"

	"github.com/tessavero/fabula/internal/domain"
)

// Store wraps one ProjectOutline for editing. It is not safe for concurrent
// use; the editor is driven by a single actor.
type Store struct {
	project *domain.ProjectOutline
	edges   []Edge
}

// NewStore creates an empty store. Load must be called before mutations.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the store's project and rebuilds the edge projection.
func (s *Store) Load(project *domain.ProjectOutline) {
	s.project = project
	s.rebuildEdges()
}

// Project returns the underlying aggregate.
func (s *Store) Project() *domain.ProjectOutline { return s.project }

// Edges returns the current edge projection.
func (s *Store) Edges() []Edge { return s.edges }

// Nodes returns the chapters in authoring order.
func (s *Store) Nodes() []*domain.Chapter {
	if s.project == nil {
		return nil
	}
	ids := s.project.OrderedChapterIDs()
	nodes := make([]*domain.Chapter, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, s.project.Chapters[id])
	}
	return nodes
}

// AddChapter inserts a new chapter node. The chapter must satisfy the
// exclusivity invariant and must not collide with an existing id.
func (s *Store) AddChapter(ch *domain.Chapter) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := ch.ValidateShape(); err != nil {
		return err
	}
	if _, exists := s.project.Chapters[ch.ID]; exists {
		return fmt.Errorf("chapter %q already exists", ch.ID)
	}
	if err := s.checkReferences(ch); err != nil {
		return err
	}
	if ch.Dialogs == nil {
		ch.Dialogs = []domain.Dialog{}
	}
	s.project.Chapters[ch.ID] = ch
	s.project.ChapterOrder = append(s.project.ChapterOrder, ch.ID)
	s.rebuildEdges()
	return nil
}

// UpdateChapter applies mutate to a copy of the chapter and commits it only
// if the result still satisfies the invariants.
func (s *Store) UpdateChapter(id string, mutate func(*domain.Chapter)) error {
	if err := s.ready(); err != nil {
		return err
	}
	ch, ok := s.project.Chapters[id]
	if !ok {
		return fmt.Errorf("chapter %q does not exist", id)
	}

	updated := *ch
	mutate(&updated)
	updated.ID = id // identity is fixed

	if err := updated.ValidateShape(); err != nil {
		return err
	}
	if err := s.checkReferences(&updated); err != nil {
		return err
	}
	s.project.Chapters[id] = &updated
	s.rebuildEdges()
	return nil
}

// DeleteChapter removes a node and clears every reference to it from the
// remaining chapters so no dangling edges survive. Deleting the start
// chapter reassigns the start to the first remaining chapter; deleting the
// last chapter is refused (an empty project is invalid).
func (s *Store) DeleteChapter(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, ok := s.project.Chapters[id]; !ok {
		return fmt.Errorf("chapter %q does not exist", id)
	}
	if len(s.project.Chapters) == 1 {
		return fmt.Errorf("cannot delete the last chapter")
	}

	delete(s.project.Chapters, id)
	order := s.project.ChapterOrder[:0]
	for _, cid := range s.project.ChapterOrder {
		if cid != id {
			order = append(order, cid)
		}
	}
	s.project.ChapterOrder = order

	for _, ch := range s.project.Chapters {
		if ch.NextChapterID == id {
			ch.NextChapterID = ""
		}
		kept := ch.Choices[:0]
		for _, choice := range ch.Choices {
			if choice.TargetChapterID != id {
				kept = append(kept, choice)
			}
		}
		ch.Choices = kept
	}

	if s.project.StartChapterID == id {
		s.project.StartChapterID = s.project.OrderedChapterIDs()[0]
	}
	s.rebuildEdges()
	return nil
}

// SetNext makes the chapter linear, pointing at toID. Any choices are
// cleared: the two transition shapes are mutually exclusive.
func (s *Store) SetNext(fromID, toID string) error {
	return s.UpdateChapter(fromID, func(ch *domain.Chapter) {
		ch.NextChapterID = toID
		ch.Choices = nil
	})
}

// ClearNext makes the chapter terminal (unless choices are added after).
func (s *Store) ClearNext(fromID string) error {
	return s.UpdateChapter(fromID, func(ch *domain.Chapter) {
		ch.NextChapterID = ""
	})
}

// AddChoice appends a labeled branch. A linear next link is cleared.
func (s *Store) AddChoice(fromID, text, targetID string) error {
	return s.UpdateChapter(fromID, func(ch *domain.Chapter) {
		ch.NextChapterID = ""
		ch.Choices = append(ch.Choices, domain.Choice{Text: text, TargetChapterID: targetID})
	})
}

// RemoveChoice drops every choice from fromID targeting targetID.
func (s *Store) RemoveChoice(fromID, targetID string) error {
	return s.UpdateChapter(fromID, func(ch *domain.Chapter) {
		kept := make([]domain.Choice, 0, len(ch.Choices))
		for _, c := range ch.Choices {
			if c.TargetChapterID != targetID {
				kept = append(kept, c)
			}
		}
		ch.Choices = kept
	})
}

// AppendDialogs adds generated dialog lines to the end of a chapter's
// sequence. Ordering is fixed at append time.
func (s *Store) AppendDialogs(chapterID string, dialogs []domain.Dialog) error {
	return s.UpdateChapter(chapterID, func(ch *domain.Chapter) {
		ch.Dialogs = append(ch.Dialogs, dialogs...)
	})
}

func (s *Store) ready() error {
	if s.project == nil {
		return fmt.Errorf("no project loaded")
	}
	return nil
}

// checkReferences verifies that the chapter's outgoing references resolve.
// A reference to the chapter itself is allowed only through choices.
func (s *Store) checkReferences(ch *domain.Chapter) error {
	if ch.NextChapterID != "" {
		if _, ok := s.project.Chapters[ch.NextChapterID]; !ok && ch.NextChapterID != ch.ID {
			return fmt.Errorf("chapter %q: nextChapterId %q does not exist", ch.ID, ch.NextChapterID)
		}
		if ch.NextChapterID == ch.ID {
			return fmt.Errorf("chapter %q: nextChapterId may not self-reference", ch.ID)
		}
	}
	for i, choice := range ch.Choices {
		if _, ok := s.project.Chapters[choice.TargetChapterID]; !ok && choice.TargetChapterID != ch.ID {
			return fmt.Errorf("chapter %q: choice %d targets missing chapter %q", ch.ID, i, choice.TargetChapterID)
		}
	}
	return nil
}
