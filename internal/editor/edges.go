package editor

import "fmt"

// Edge is the visual projection of one chapter transition. Choices produce
// labeled edges; a linear next link produces a single unlabeled edge.
type Edge struct {
	ID     string
	Source string
	Target string
	Label  string
}

// rebuildEdges recomputes the projection from the chapter fields. It is run
// after every mutation; edges are never edited independently.
func (s *Store) rebuildEdges() {
	if s.project == nil {
		s.edges = nil
		return
	}

	edges := make([]Edge, 0, len(s.project.Chapters))
	for _, id := range s.project.OrderedChapterIDs() {
		ch := s.project.Chapters[id]
		switch {
		case ch.IsBranching():
			for i, choice := range ch.Choices {
				edges = append(edges, Edge{
					ID:     fmt.Sprintf("%s-%s-%d", ch.ID, choice.TargetChapterID, i),
					Source: ch.ID,
					Target: choice.TargetChapterID,
					Label:  choice.Text,
				})
			}
		case ch.IsLinear():
			edges = append(edges, Edge{
				ID:     fmt.Sprintf("%s-%s", ch.ID, ch.NextChapterID),
				Source: ch.ID,
				Target: ch.NextChapterID,
			})
		}
	}
	s.edges = edges
}
