// Package playback walks a narrative graph from its start chapter, advancing
// through each chapter's ordered dialog lines and, at chapter end, either
// auto-advancing (linear), presenting choices (branching), or ending the
// story (terminal).
package playback

import (
	"errors"
	"fmt"

	"github.com/tessavero/fabula/internal/domain"
)

// State is the observable mode of a playback session.
type State string

const (
	// StatePresenting means a dialog line is on screen and Advance is legal.
	StatePresenting State = "presenting"
	// StateAwaitingChoice means the chapter ended on a branch; Choose is legal.
	StateAwaitingChoice State = "awaiting_choice"
	// StateEnded is terminal; only Restart is legal.
	StateEnded State = "ended"
)

var (
	// ErrStructural indicates the graph violated an invariant mid-playback.
	// The engine refuses to enter such a chapter rather than guess.
	ErrStructural = errors.New("structural error in narrative graph")

	// ErrIllegalTransition indicates an operation that is not legal in the
	// session's current state.
	ErrIllegalTransition = errors.New("illegal playback transition")
)

// Frame is one visited (chapter, dialog index) pair in the history stack.
type Frame struct {
	ChapterID   string
	DialogIndex int
}

// Session is the playback state machine over one project. It reads the
// project but never mutates it.
type Session struct {
	project *domain.ProjectOutline

	state       State
	chapterID   string
	dialogIndex int
	history     []Frame
}

// NewSession validates the project and starts Presenting at the start
// chapter's first dialog. Structurally invalid projects are refused.
func NewSession(project *domain.ProjectOutline) (*Session, error) {
	if errs := project.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrStructural, errs[0])
	}
	s := &Session{project: project}
	if err := s.enterChapter(project.StartChapterID); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns the session's current mode.
func (s *Session) State() State { return s.state }

// Chapter returns the chapter currently being presented.
func (s *Session) Chapter() *domain.Chapter {
	return s.project.Chapters[s.chapterID]
}

// Dialog returns the dialog line at the current index, or nil when the
// current chapter has no dialogs.
func (s *Session) Dialog() *domain.Dialog {
	ch := s.Chapter()
	if ch == nil || s.dialogIndex >= len(ch.Dialogs) {
		return nil
	}
	return &ch.Dialogs[s.dialogIndex]
}

// Choices returns the branch options when the session awaits a choice.
func (s *Session) Choices() []domain.Choice {
	if s.state != StateAwaitingChoice {
		return nil
	}
	return s.Chapter().Choices
}

// History returns the append-only stack of visited frames.
func (s *Session) History() []Frame { return s.history }

// Advance moves to the next dialog of the current chapter, or resolves the
// chapter end when the last dialog has been shown: choices transition to
// AwaitingChoice, a next chapter is entered at its first dialog, and a
// terminal chapter ends the story.
func (s *Session) Advance() error {
	if s.state != StatePresenting {
		return fmt.Errorf("%w: advance in state %s", ErrIllegalTransition, s.state)
	}

	ch := s.Chapter()
	if s.dialogIndex+1 < len(ch.Dialogs) {
		s.pushFrame()
		s.dialogIndex++
		return nil
	}
	return s.resolveChapterEnd()
}

// Choose follows a branch out of the current chapter. The target must be one
// of the chapter's declared choices.
func (s *Session) Choose(targetChapterID string) error {
	if s.state != StateAwaitingChoice {
		return fmt.Errorf("%w: choose in state %s", ErrIllegalTransition, s.state)
	}
	if _, ok := s.Chapter().ChoiceTo(targetChapterID); !ok {
		return fmt.Errorf("%w: chapter %q offers no choice targeting %q", ErrIllegalTransition, s.chapterID, targetChapterID)
	}
	s.pushFrame()
	return s.enterChapter(targetChapterID)
}

// Back rewinds to the most recent frame on the history stack. Legal in any
// state; returns false when there is nothing to rewind to.
func (s *Session) Back() bool {
	if len(s.history) == 0 {
		return false
	}
	frame := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.chapterID = frame.ChapterID
	s.dialogIndex = frame.DialogIndex
	s.state = StatePresenting
	return true
}

// Restart clears history and re-enters the start chapter.
func (s *Session) Restart() error {
	s.history = nil
	return s.enterChapter(s.project.StartChapterID)
}

// enterChapter positions the session at (chapterID, 0). A chapter with no
// dialogs is immediately at its end and resolves its transition on entry;
// linear zero-dialog chapters chain, with a cycle guard so a loop of empty
// chapters surfaces as a structural error instead of spinning forever.
func (s *Session) enterChapter(chapterID string) error {
	for hops := 0; ; hops++ {
		if hops > len(s.project.Chapters) {
			return fmt.Errorf("%w: cycle of empty chapters starting at %q", ErrStructural, chapterID)
		}

		ch, ok := s.project.Chapters[chapterID]
		if !ok {
			return fmt.Errorf("%w: chapter %q does not exist", ErrStructural, chapterID)
		}
		if err := ch.ValidateShape(); err != nil {
			return fmt.Errorf("%w: %v", ErrStructural, err)
		}

		s.chapterID = chapterID
		s.dialogIndex = 0

		if len(ch.Dialogs) > 0 {
			s.state = StatePresenting
			return nil
		}

		// Empty chapter: resolve its end immediately.
		switch {
		case ch.IsBranching():
			s.state = StateAwaitingChoice
			return nil
		case ch.IsLinear():
			next := ch.NextChapterID
			if _, ok := s.project.Chapters[next]; !ok {
				return fmt.Errorf("%w: chapter %q: nextChapterId %q does not exist", ErrStructural, chapterID, next)
			}
			s.pushFrame()
			chapterID = next
		default:
			s.state = StateEnded
			return nil
		}
	}
}

func (s *Session) resolveChapterEnd() error {
	ch := s.Chapter()
	switch {
	case ch.IsBranching():
		s.state = StateAwaitingChoice
		return nil
	case ch.IsLinear():
		next := ch.NextChapterID
		if _, ok := s.project.Chapters[next]; !ok {
			return fmt.Errorf("%w: chapter %q: nextChapterId %q does not exist", ErrStructural, s.chapterID, next)
		}
		s.pushFrame()
		return s.enterChapter(next)
	default:
		s.state = StateEnded
		return nil
	}
}

func (s *Session) pushFrame() {
	s.history = append(s.history, Frame{ChapterID: s.chapterID, DialogIndex: s.dialogIndex})
}
