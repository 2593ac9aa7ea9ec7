package review

import (
	"context"
	"fmt"

	"invoice-backend/internal/extraction"
)

// State is the review lifecycle position.
type State string

const (
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
	StateEditing   State = "editing"
	StateSaved     State = "saved"
)

// Draft is the user-editable copy of an extraction result.
type Draft = extraction.Result

// Saver persists a draft. Implementations return a conflict or storage error
// the session passes back untouched.
type Saver interface {
	SaveDraft(ctx context.Context, draft Draft) error
}

// Session holds at most one result and its draft. It is not safe for
// concurrent use; Store serializes access per user.
type Session struct {
	state  State
	result extraction.Result
	draft  Draft
}

func NewSession() *Session {
	return &Session{state: StateEmpty}
}

func (s *Session) State() State { return s.state }

// Result returns the extraction result as received.
func (s *Session) Result() extraction.Result { return s.result }

// Draft returns the current draft.
func (s *Session) Draft() Draft { return s.draft }

// Populate starts a fresh cycle from result, discarding any previous pair.
func (s *Session) Populate(result extraction.Result) {
	if result == nil {
		result = extraction.Result{}
	}
	s.result = result
	s.draft = result.Clone()
	s.state = StatePopulated
}

func (s *Session) BeginEdit() error {
	if s.state != StatePopulated {
		return s.invalid("edit")
	}
	s.state = StateEditing
	return nil
}

// SetField changes one draft key. The original result is never touched.
func (s *Session) SetField(key string, value any) error {
	if s.state != StateEditing {
		return s.invalid("set field")
	}
	s.draft[key] = value
	return nil
}

// Cancel discards draft edits and returns to Populated.
func (s *Session) Cancel() error {
	if s.state != StateEditing {
		return s.invalid("cancel")
	}
	s.draft = s.result.Clone()
	s.state = StatePopulated
	return nil
}

// Save hands the draft to saver. On failure the state is unchanged.
func (s *Session) Save(ctx context.Context, saver Saver) error {
	if s.state != StatePopulated && s.state != StateEditing {
		return s.invalid("save")
	}
	if err := saver.SaveDraft(ctx, s.draft); err != nil {
		return err
	}
	s.state = StateSaved
	return nil
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, s.state)
}
